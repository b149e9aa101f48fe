package icp

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

const (
	stylesDir            = "styles"
	distDir              = "dist"
	distCSSPrefixDir     = "cssprefix"
	internalDir          = "internal"
	staticDir            = "static"
	criticalSubDir       = "critical"
	normalSubDir         = "normal"
	criticalCSSFile      = "critical.css"
	normalCSSFile        = "normal.css"
	normalCSSFileRefFile = "normal_css_file_ref.txt"
	globalSelectorPrefix = ":global"
	maxConcurrentFiles   = 100
)

var (
	ErrMissingPrefix  = errors.New("prefix is required")
	ErrPrefixNotClass = errors.New(`prefix must be a class selector starting with "."`)
	ErrInvalidGlob    = errors.New("invalid glob pattern")
)

// Init validates the config and fills in defaults. It is safe to call more
// than once; only the first call does any work.
func (c *Config) Init() error {
	c.initOnce.Do(func() {
		c.initErr = c.init()
	})
	return c.initErr
}

func (c *Config) init() error {
	if c.Logger == nil {
		c.Logger = zap.NewNop().Sugar()
	}

	c.Prefix = strings.TrimSpace(c.Prefix)
	if c.Prefix == "" {
		return ErrMissingPrefix
	}
	if !strings.HasPrefix(c.Prefix, ".") || len(c.Prefix) == 1 {
		return fmt.Errorf("%w: got %q", ErrPrefixNotClass, c.Prefix)
	}

	for _, p := range append(append([]string{}, c.IncludeFiles...), c.IgnoreFiles...) {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("%w: %q", ErrInvalidGlob, p)
		}
	}

	c.transform = c.Transform
	if c.transform == nil {
		c.transform = DefaultTransform
	}

	c.excludeSet = make(map[string]struct{}, len(c.Exclude))
	for _, s := range c.Exclude {
		c.excludeSet[collapseWhitespace(s)] = struct{}{}
	}

	c.cleanRootDir = filepath.Clean(c.RootDir)
	c.fileSemaphore = semaphore.NewWeighted(maxConcurrentFiles)

	return nil
}

func (c *Config) getCleanRootDir() string {
	return c.cleanRootDir
}

func (c *Config) getStylesRoot() string {
	return filepath.Join(c.cleanRootDir, stylesDir)
}

func (c *Config) getDistRoot() string {
	return filepath.Join(c.cleanRootDir, distDir, distCSSPrefixDir)
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
