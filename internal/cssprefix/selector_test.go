package icp

import (
	"errors"
	"regexp"
	"strings"
	"testing"
)

func TestDefaultTransform(t *testing.T) {
	tests := []struct {
		name     string
		selector string
		want     string
	}{
		{"Html", "html", "html"},
		{"Body", "body", "body"},
		{"AlreadyPrefixed", ".comments-section .widget", ".comments-section .widget"},
		{"AlreadyPrefixedCompound", ".comments-section.active", ".comments-section.active"},
		{"Class", ".widget", ".comments-section .widget"},
		{"ClassDescendant", ".foo .bar", ".comments-section .foo .bar"},
		{"Element", "div", ".comments-section div"},
		{"Attribute", "[data-x]", ".comments-section [data-x]"},
		{"Pseudo", "a:hover", ".comments-section a:hover"},
		{"ID", "#main", ".comments-section #main"},
		{"HtmlWithClassIsNotRoot", "html.dark", ".comments-section html.dark"},
		{"BodyDescendant", "body p", ".comments-section body p"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			naive := testPrefix + " " + tt.selector
			if got := DefaultTransform(testPrefix, tt.selector, naive); got != tt.want {
				t.Errorf("DefaultTransform(%q) = %q, want %q", tt.selector, got, tt.want)
			}
			if got := TransformSelector(testPrefix, tt.selector); got != tt.want {
				t.Errorf("TransformSelector(%q) = %q, want %q", tt.selector, got, tt.want)
			}
		})
	}
}

func TestDefaultTransformReturnsSuppliedNaiveForm(t *testing.T) {
	// the fourth case hands back whatever the caller computed
	if got := DefaultTransform(testPrefix, "div", "custom div"); got != "custom div" {
		t.Errorf("DefaultTransform() = %q, want %q", got, "custom div")
	}
	// the class case never uses it
	if got := DefaultTransform(testPrefix, ".x", "custom .x"); got != ".comments-section .x" {
		t.Errorf("DefaultTransform() = %q, want %q", got, ".comments-section .x")
	}
}

func TestTransformSelectorIsIdempotent(t *testing.T) {
	selectors := []string{
		"html", "body", ".widget", ".comments-section .widget",
		"div", "[data-x]", "a:hover", "ul > li", "*",
	}
	for _, s := range selectors {
		once := TransformSelector(testPrefix, s)
		twice := TransformSelector(testPrefix, once)
		if once != twice {
			t.Errorf("TransformSelector not idempotent for %q: once %q, twice %q", s, once, twice)
		}
	}
}

func TestConfigTransformSelector(t *testing.T) {
	t.Run("Exclude", func(t *testing.T) {
		c := newTestConfig(t, func(c *Config) {
			c.Exclude = []string{":root", ".modal  .backdrop"}
		})
		if got := c.TransformSelector(":root"); got != ":root" {
			t.Errorf("TransformSelector(:root) = %q, want unchanged", got)
		}
		if got := c.TransformSelector(".modal .backdrop"); got != ".modal .backdrop" {
			t.Errorf("TransformSelector() = %q, want unchanged", got)
		}
		if got := c.TransformSelector(".modal"); got != ".comments-section .modal" {
			t.Errorf("TransformSelector(.modal) = %q", got)
		}
	})

	t.Run("ExcludePatterns", func(t *testing.T) {
		c := newTestConfig(t, func(c *Config) {
			c.ExcludePatterns = []*regexp.Regexp{regexp.MustCompile(`^\.ext-`)}
		})
		if got := c.TransformSelector(".ext-button"); got != ".ext-button" {
			t.Errorf("TransformSelector(.ext-button) = %q, want unchanged", got)
		}
		if got := c.TransformSelector(".button"); got != ".comments-section .button" {
			t.Errorf("TransformSelector(.button) = %q", got)
		}
	})

	t.Run("SkipGlobalSelectors", func(t *testing.T) {
		c := newTestConfig(t, func(c *Config) { c.SkipGlobalSelectors = true })
		if got := c.TransformSelector(":global(.toast)"); got != ":global(.toast)" {
			t.Errorf("TransformSelector() = %q, want unchanged", got)
		}

		c = newTestConfig(t, nil)
		if got := c.TransformSelector(":global(.toast)"); got != ".comments-section :global(.toast)" {
			t.Errorf("TransformSelector() = %q, want prefixed", got)
		}
	})

	t.Run("CustomTransform", func(t *testing.T) {
		var gotNaive string
		c := newTestConfig(t, func(c *Config) {
			c.Transform = func(prefix, selector, prefixedSelector string) string {
				gotNaive = prefixedSelector
				if strings.HasPrefix(selector, ".") {
					return prefix + selector
				}
				return DefaultTransform(prefix, selector, prefixedSelector)
			}
		})
		if got := c.TransformSelector(".widget"); got != ".comments-section.widget" {
			t.Errorf("TransformSelector() = %q", got)
		}
		if gotNaive != ".comments-section .widget" {
			t.Errorf("prefixedSelector = %q, want %q", gotNaive, ".comments-section .widget")
		}
	})
}

func TestInitValidation(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr error
	}{
		{"MissingPrefix", &Config{}, ErrMissingPrefix},
		{"BlankPrefix", &Config{Prefix: "   "}, ErrMissingPrefix},
		{"NotAClass", &Config{Prefix: "#scope"}, ErrPrefixNotClass},
		{"DotOnly", &Config{Prefix: "."}, ErrPrefixNotClass},
		{"BadGlob", &Config{Prefix: ".x", IgnoreFiles: []string{"[a-"}}, ErrInvalidGlob},
		{"Valid", &Config{Prefix: " .x "}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Init()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Init() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Init() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestInitTrimsPrefixAndIsOnce(t *testing.T) {
	c := &Config{Prefix: " .x "}
	if err := c.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if c.Prefix != ".x" {
		t.Errorf("Prefix = %q, want %q", c.Prefix, ".x")
	}
	if c.Logger == nil {
		t.Error("Logger not defaulted")
	}

	c.Prefix = ""
	if err := c.Init(); err != nil {
		t.Errorf("second Init() error = %v, want cached nil", err)
	}
}
