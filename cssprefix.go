package cssprefix

import (
	"html/template"

	icp "github.com/sjc5/cssprefix/internal/cssprefix"
)

type Config = icp.Config
type DevConfig = icp.DevConfig
type TransformFunc = icp.TransformFunc
type Logger = icp.Logger
type ParseError = icp.ParseError

type Prefixer struct {
	Config *icp.Config
}

// New validates config and returns a Prefixer. If config.Logger is nil, a
// colored console logger is installed.
func New(config *icp.Config) (*Prefixer, error) {
	if config.Logger == nil {
		config.Logger = icp.NewColorLogger("cssprefix")
	}
	if err := config.Init(); err != nil {
		return nil, err
	}
	return &Prefixer{Config: config}, nil
}

// Selector rewrites a single selector.
func (p Prefixer) Selector(selector string) string {
	return p.Config.TransformSelector(selector)
}

// Stylesheet scopes every selector in a stylesheet.
func (p Prefixer) Stylesheet(css []byte) (string, error) {
	return p.Config.PrefixStylesheet(css)
}

// File is like Stylesheet, but honors Config.IncludeFiles and
// Config.IgnoreFiles. relPath is relative to the styles directory.
func (p Prefixer) File(relPath string, css []byte) (string, error) {
	return p.Config.PrefixFile(relPath, css)
}

// Build writes the scoped critical and normal styles to the dist directory.
func (p Prefixer) Build() error {
	return p.Config.Build()
}

// MustStartDev builds, watches the styles and serves refresh events. It
// blocks for the life of the process and panics if any step fails.
func (p Prefixer) MustStartDev(devConfig *icp.DevConfig) {
	if devConfig != nil {
		p.Config.DevConfig = devConfig
	}
	p.Config.MustStartDev()
}

// GetCriticalCSS returns the built critical CSS, or "" if there is none.
func (p Prefixer) GetCriticalCSS() template.CSS {
	return template.CSS(p.Config.GetCriticalCSS())
}

// GetCriticalCSSStyleElement wraps the critical CSS in an inline style element.
func (p Prefixer) GetCriticalCSSStyleElement() template.HTML {
	return p.Config.GetCriticalCSSStyleElement()
}

// GetStyleSheetURL returns the hashed normal stylesheet URL, e.g. "/static/normal_abc123def456.css".
func (p Prefixer) GetStyleSheetURL() string {
	return p.Config.GetStyleSheetURL()
}

// GetStyleSheetLinkElement returns a link element for the normal stylesheet.
func (p Prefixer) GetStyleSheetLinkElement() template.HTML {
	return p.Config.GetStyleSheetLinkElement()
}

// GetRefreshScript returns the dev-mode refresh script, or "" in production.
func (p Prefixer) GetRefreshScript() template.HTML {
	return icp.GetRefreshScript()
}

// GetCriticalCSSElementID is the id of the critical style element.
func (p Prefixer) GetCriticalCSSElementID() string {
	return icp.CriticalCSSElementID
}

// GetStyleSheetElementID is the id of the normal stylesheet link element.
func (p Prefixer) GetStyleSheetElementID() string {
	return icp.StyleSheetElementID
}

// Transform is the default scoping rule. It has the TransformFunc signature
// and can be wrapped by a custom Config.Transform.
var Transform TransformFunc = icp.DefaultTransform

// TransformSelector applies Transform, computing the naive
// prefix + " " + selector form itself.
var TransformSelector = icp.TransformSelector

var GetIsDev = icp.GetIsDev

var (
	ErrMissingPrefix  = icp.ErrMissingPrefix
	ErrPrefixNotClass = icp.ErrPrefixNotClass
	ErrInvalidGlob    = icp.ErrInvalidGlob
)
