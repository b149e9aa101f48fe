package icp

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/goleak"
)

func readRefFile(t *testing.T) string {
	t.Helper()

	ref, err := os.ReadFile(filepath.Join(testRootDir, "dist/cssprefix/internal", normalCSSFileRefFile))
	if err != nil {
		t.Fatalf("Failed to read ref file: %v", err)
	}
	return string(ref)
}

func TestBuild(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	env := setupTestEnv(t)
	defer teardownTestEnv(t)

	env.createTestFile(t, "styles/critical/hero.css", "html { margin: 0 }\n.hero { color: red }")
	env.createTestFile(t, "styles/normal/b.css", ".second { color: blue }")
	env.createTestFile(t, "styles/normal/a.css", ".first { color: green }")
	env.createTestFile(t, "styles/normal/notes.txt", ".ignored { color: black }")

	if err := env.config.Build(); err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	t.Run("Critical", func(t *testing.T) {
		content, err := os.ReadFile(filepath.Join(testRootDir, "dist/cssprefix/internal", criticalCSSFile))
		if err != nil {
			t.Fatalf("Failed to read critical CSS: %v", err)
		}
		css := string(content)
		if !strings.Contains(css, ".comments-section .hero") {
			t.Errorf("critical CSS not prefixed: %s", css)
		}
		if strings.Contains(css, ".comments-section html") {
			t.Errorf("critical CSS prefixed html: %s", css)
		}
		if strings.Contains(css, "\n") {
			t.Errorf("critical CSS not minified in production: %q", css)
		}
	})

	t.Run("Normal", func(t *testing.T) {
		ref := readRefFile(t)
		if !strings.HasPrefix(ref, "normal_") || !strings.HasSuffix(ref, ".css") {
			t.Fatalf("unexpected ref file content %q", ref)
		}

		content, err := os.ReadFile(filepath.Join(testRootDir, "dist/cssprefix/static", ref))
		if err != nil {
			t.Fatalf("Failed to read normal CSS: %v", err)
		}
		css := string(content)

		first := strings.Index(css, ".comments-section .first")
		second := strings.Index(css, ".comments-section .second")
		if first == -1 || second == -1 {
			t.Fatalf("normal CSS not prefixed: %s", css)
		}
		if first > second {
			t.Errorf("files not concatenated in name order: %s", css)
		}
		if strings.Contains(css, "ignored") {
			t.Errorf("non-CSS file was included: %s", css)
		}
	})
}

func TestBuildRemovesOldNormalFiles(t *testing.T) {
	env := setupTestEnv(t)
	defer teardownTestEnv(t)

	env.createTestFile(t, "styles/normal/a.css", ".a { color: red }")
	if err := env.config.Build(); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	firstRef := readRefFile(t)

	env.createTestFile(t, "styles/normal/a.css", ".a { color: blue }")
	if err := env.config.Build(); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	secondRef := readRefFile(t)

	if firstRef == secondRef {
		t.Errorf("hashed filename did not change with content: %s", firstRef)
	}

	matches, err := filepath.Glob(filepath.Join(testRootDir, "dist/cssprefix/static", "normal_*.css"))
	if err != nil {
		t.Fatalf("Glob() error = %v", err)
	}
	if len(matches) != 1 || filepath.Base(matches[0]) != secondRef {
		t.Errorf("want only %s in static dir, got %v", secondRef, matches)
	}
}

func TestBuildDevModeSkipsMinify(t *testing.T) {
	env := setupTestEnv(t)
	defer teardownTestEnv(t)

	setModeToDev()

	env.createTestFile(t, "styles/critical/a.css", ".a { color: red }\n.b { color: blue }")
	if err := env.config.Build(); err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	content, err := os.ReadFile(filepath.Join(testRootDir, "dist/cssprefix/internal", criticalCSSFile))
	if err != nil {
		t.Fatalf("Failed to read critical CSS: %v", err)
	}
	css := string(content)
	for _, s := range []string{".comments-section .a{", ".comments-section .b{", "color:red;", "}\n"} {
		if !strings.Contains(css, s) {
			t.Errorf("critical CSS %q missing %q", css, s)
		}
	}
}

func TestBuildMissingStylesDirs(t *testing.T) {
	env := setupTestEnv(t)
	defer teardownTestEnv(t)

	if err := os.RemoveAll(filepath.Join(testRootDir, "styles")); err != nil {
		t.Fatalf("Failed to remove styles dir: %v", err)
	}

	if err := env.config.Build(); err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(testRootDir, "dist/cssprefix/internal", criticalCSSFile)); !os.IsNotExist(err) {
		t.Errorf("critical CSS written without sources")
	}
}

func TestBuildParseError(t *testing.T) {
	env := setupTestEnv(t)
	defer teardownTestEnv(t)

	env.createTestFile(t, "styles/critical/bad.css", "}}} a {}")
	env.createTestFile(t, "styles/normal/ok.css", ".ok { color: red }")

	err := env.config.Build()

	var be buildError
	if !errors.As(err, &be) || be.task != criticalSubDir {
		t.Fatalf("Build() error = %v, want buildError for %s", err, criticalSubDir)
	}
	var pe *ParseError
	if !errors.As(err, &pe) || pe.Source != "critical/bad.css" {
		t.Errorf("Build() error = %v, want *ParseError for critical/bad.css", err)
	}

	// the normal task is independent and still succeeds
	if ref := readRefFile(t); !strings.HasPrefix(ref, "normal_") {
		t.Errorf("unexpected ref file content %q", ref)
	}
}

func TestBuildInvalidConfig(t *testing.T) {
	c := &Config{RootDir: testRootDir}
	if err := c.Build(); !errors.Is(err, ErrMissingPrefix) {
		t.Errorf("Build() error = %v, want %v", err, ErrMissingPrefix)
	}
}

func TestGetHashedFilenameFromBytes(t *testing.T) {
	a := getHashedFilenameFromBytes([]byte("a"), "normal.css")
	b := getHashedFilenameFromBytes([]byte("b"), "normal.css")

	if a == b {
		t.Errorf("different content produced same name %s", a)
	}
	if !strings.HasPrefix(a, "normal_") || !strings.HasSuffix(a, ".css") || len(a) != len("normal_")+12+len(".css") {
		t.Errorf("unexpected hashed filename %s", a)
	}
	if a != getHashedFilenameFromBytes([]byte("a"), "normal.css") {
		t.Error("hashing is not deterministic")
	}
}
