package icp

import (
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

type potentialMatch struct {
	pattern string
	path    string
}

func (c *Config) getIsMatch(pm potentialMatch) bool {
	if hit, isCached := c.matchResults.Load(pm); isCached {
		return hit
	}

	normalizedPath := filepath.ToSlash(pm.path)

	matches, err := doublestar.Match(filepath.ToSlash(pm.pattern), normalizedPath)
	if err != nil {
		c.Logger.Errorf("error: failed to match file: %v", err)
		return false
	}

	actualValue, _ := c.matchResults.LoadOrStore(pm, matches)
	return actualValue
}

func (c *Config) getIsIgnored(path string, ignoredPatterns []string) bool {
	for _, pattern := range ignoredPatterns {
		if c.getIsMatch(potentialMatch{pattern: pattern, path: path}) {
			return true
		}
	}
	return false
}

// relPath is relative to the styles directory.
func (c *Config) getShouldPrefixFile(relPath string) bool {
	if c.getIsIgnored(relPath, c.IgnoreFiles) {
		return false
	}
	if len(c.IncludeFiles) == 0 {
		return true
	}
	return c.getIsIgnored(relPath, c.IncludeFiles)
}
