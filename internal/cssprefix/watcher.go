package icp

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

var naiveIgnorePatterns = []string{"**/.git", "**/node_modules", distDir}

func (c *Config) setupWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("error creating watcher: %w", err)
	}
	c.dev.watcher = watcher

	c.dev.ignorePatterns = nil
	for _, p := range naiveIgnorePatterns {
		c.dev.ignorePatterns = append(c.dev.ignorePatterns, filepath.Join(c.getCleanRootDir(), p))
	}
	if c.DevConfig != nil {
		for _, p := range c.DevConfig.IgnorePatterns {
			c.dev.ignorePatterns = append(c.dev.ignorePatterns, filepath.Join(c.getCleanRootDir(), p))
		}
	}

	for _, dir := range c.getWatchRoots() {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			c.Logger.Warnf("watched directory %s does not exist, skipping", dir)
			continue
		}
		if err := c.addDirs(dir); err != nil {
			watcher.Close()
			return fmt.Errorf("error adding directories to watcher: %w", err)
		}
	}

	return nil
}

func (c *Config) getWatchRoots() []string {
	roots := []string{c.getStylesRoot()}
	if c.DevConfig != nil {
		for _, d := range c.DevConfig.WatchedDirs {
			roots = append(roots, filepath.Join(c.getCleanRootDir(), d))
		}
	}
	return roots
}

func (c *Config) addDirs(path string) error {
	return filepath.WalkDir(path, func(walkedPath string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("error walking path: %w", err)
		}
		if d.IsDir() {
			if c.getIsIgnored(walkedPath, c.dev.ignorePatterns) {
				return filepath.SkipDir
			}
			if err := c.dev.watcher.Add(walkedPath); err != nil {
				return fmt.Errorf("error adding directory to watcher: %w", err)
			}
		}
		return nil
	})
}

func (c *Config) handleWatcherEmissions() {
	debouncer := newDebouncer(30*time.Millisecond, c.processBatchedEvents)

	for {
		select {
		case evt, ok := <-c.dev.watcher.Events:
			if !ok {
				return
			}
			debouncer.addEvent(evt)
		case err, ok := <-c.dev.watcher.Errors:
			if !ok {
				return
			}
			c.Logger.Errorf("watcher error: %v", err)
		}
	}
}

func (c *Config) processBatchedEvents(events []fsnotify.Event) {
	subDirsToRebuild := make(map[string]bool)

	for _, evt := range events {
		fileInfo, _ := os.Stat(evt.Name) // no need to check error, removed files still count
		if fileInfo != nil && fileInfo.IsDir() {
			if evt.Has(fsnotify.Create) || evt.Has(fsnotify.Rename) {
				if err := c.addDirs(evt.Name); err != nil {
					c.Logger.Errorf("error: failed to add directory to watcher: %v", err)
				}
			}
			continue
		}

		if filepath.Ext(evt.Name) != ".css" {
			continue
		}
		if c.getIsIgnored(evt.Name, c.dev.ignorePatterns) {
			continue
		}
		if evt.Op == fsnotify.Chmod {
			continue
		}

		switch subDir := c.getEvtSubDir(evt.Name); subDir {
		case criticalSubDir, normalSubDir:
			subDirsToRebuild[subDir] = true
		default:
			// shared files outside styles/{critical,normal} may be used by either
			subDirsToRebuild[criticalSubDir] = true
			subDirsToRebuild[normalSubDir] = true
		}
	}

	for _, subDir := range []string{criticalSubDir, normalSubDir} {
		if !subDirsToRebuild[subDir] {
			continue
		}
		a := time.Now()
		if err := c.processCSS(subDir); err != nil {
			c.Logger.Errorf("error rebuilding %s CSS: %v", subDir, err)
			continue
		}
		c.Logger.Infof("rebuilt %s CSS in %v", subDir, time.Since(a))
		c.broadcastChange(subDir)
	}
}

// getEvtSubDir returns "critical" or "normal" for files under the matching
// styles subdir, and "" for anything else.
func (c *Config) getEvtSubDir(name string) string {
	rel, err := filepath.Rel(c.getStylesRoot(), name)
	if err != nil || strings.HasPrefix(rel, "..") {
		return ""
	}
	first, _, _ := strings.Cut(filepath.ToSlash(rel), "/")
	if first == criticalSubDir || first == normalSubDir {
		return first
	}
	return ""
}
