package icp

import (
	"errors"
	"html/template"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

const (
	CriticalCSSElementID = "__scoped-critical-css"
	StyleSheetElementID  = "__scoped-normal-css"
)

const (
	criticalCSSCacheKey = "criticalCSS"
	styleSheetCacheKey  = "styleSheetURL"
)

func (c *Config) GetCriticalCSSStyleElement() template.HTML {
	css := c.GetCriticalCSS()
	if css == "" {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(`<style id="`)
	sb.WriteString(CriticalCSSElementID)
	sb.WriteString(`">`)
	sb.WriteString(css)
	sb.WriteString("</style>")
	return template.HTML(sb.String())
}

func (c *Config) GetStyleSheetLinkElement() template.HTML {
	url := c.GetStyleSheetURL()
	if url == "" {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(`<link rel="stylesheet" href="`)
	sb.WriteString(url)
	sb.WriteString(`" id="`)
	sb.WriteString(StyleSheetElementID)
	sb.WriteString(`" />`)
	return template.HTML(sb.String())
}

// GetStyleSheetURL returns e.g. "/static/normal_abc123def456.css", or "" if
// no normal stylesheet has been built.
func (c *Config) GetStyleSheetURL() string {
	if hit, isCached := c.runtimeCache.Load(styleSheetCacheKey); isCached && !GetIsDev() {
		return hit
	}

	content, err := c.readDistFile(path.Join(internalDir, normalCSSFileRefFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			c.runtimeCache.Store(styleSheetCacheKey, "")
		} else {
			c.Logger.Errorf("error reading normal CSS URL: %v", err)
		}
		return ""
	}

	url := "/" + staticDir + "/" + strings.TrimSpace(string(content))
	c.runtimeCache.Store(styleSheetCacheKey, url)
	return url
}

func (c *Config) GetCriticalCSS() string {
	if hit, isCached := c.runtimeCache.Load(criticalCSSCacheKey); isCached && !GetIsDev() {
		return hit
	}

	content, err := c.readDistFile(path.Join(internalDir, criticalCSSFile))
	if err != nil {
		// a missing file just means there are no critical styles
		if errors.Is(err, fs.ErrNotExist) {
			c.runtimeCache.Store(criticalCSSCacheKey, "")
		} else {
			c.Logger.Errorf("error reading critical CSS: %v", err)
		}
		return ""
	}

	criticalCSS := string(content)
	c.runtimeCache.Store(criticalCSSCacheKey, criticalCSS)
	return criticalCSS
}

// name is slash-separated and relative to dist/cssprefix.
func (c *Config) readDistFile(name string) ([]byte, error) {
	if c.DistFS != nil && !GetIsDev() {
		return fs.ReadFile(c.DistFS, path.Join(distCSSPrefixDir, name))
	}
	return os.ReadFile(filepath.Join(c.getDistRoot(), filepath.FromSlash(name)))
}
