package icp

import (
	"io/fs"
	"regexp"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/sjc5/kit/pkg/typed"
	"golang.org/x/sync/semaphore"
)

// Logger is satisfied by *zap.SugaredLogger.
type Logger interface {
	Debugf(template string, args ...interface{})
	Infof(template string, args ...interface{})
	Warnf(template string, args ...interface{})
	Errorf(template string, args ...interface{})
}

type Config struct {
	// Prefix is the namespace class every selector is scoped under,
	// e.g. ".comments-section". It must start with ".".
	Prefix string

	// Transform overrides the scoping rule. If nil, DefaultTransform is used.
	Transform TransformFunc

	// Exclude lists selectors (exact match, after whitespace is collapsed)
	// that are never rewritten.
	Exclude []string

	// ExcludePatterns are matched against each selector. A match leaves the
	// selector untouched.
	ExcludePatterns []*regexp.Regexp

	// If true, selectors starting with ":global" are left untouched.
	SkipGlobalSelectors bool

	// Glob patterns (doublestar syntax) relative to the styles directory.
	// If IncludeFiles is non-empty, only matching files are prefixed.
	// Files matching IgnoreFiles are copied through as-is.
	IncludeFiles []string
	IgnoreFiles  []string

	/*
		RootDir is the parent directory of the "styles" and "dist" directories.
		Set it relative to where you run your build and dev commands from. We
		run filepath.Clean on it, so leaving it blank means ".".
	*/
	RootDir string

	/*
		If not nil, DistFS is used by the runtime getters in production. It
		should be rooted at the "dist" directory (i.e., it contains
		"cssprefix/..."). If nil, the dist directory on disk is used.
	*/
	DistFS fs.FS

	DevConfig *DevConfig

	Logger Logger

	initOnce      sync.Once
	initErr       error
	cleanRootDir  string
	transform     TransformFunc
	excludeSet    map[string]struct{}
	fileSemaphore *semaphore.Weighted
	matchResults  typed.SyncMap[potentialMatch, bool]
	runtimeCache  typed.SyncMap[string, string]
	dev           dev
}

type DevConfig struct {
	// Extra directories (relative to RootDir) to watch. A CSS change in any
	// of them rebuilds both critical and normal styles.
	WatchedDirs []string

	// Glob patterns (relative to RootDir) for files and directories the
	// watcher should ignore.
	IgnorePatterns []string

	// Port for the refresh server. If 0, a free port is found.
	RefreshServerPort int
}

type dev struct {
	watcher        *fsnotify.Watcher
	manager        *clientManager
	ignorePatterns []string
}
