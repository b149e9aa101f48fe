package icp

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

type buildError struct {
	task string
	err  error
}

func (e buildError) Error() string {
	return fmt.Sprintf("error during build task %s: %v", e.task, e.err)
}

func (e buildError) Unwrap() error {
	return e.err
}

// Build prefixes, concatenates and writes the critical and normal styles to
// the dist directory.
func (c *Config) Build() error {
	if err := c.Init(); err != nil {
		return err
	}

	if err := c.setupDistDir(); err != nil {
		return fmt.Errorf("error making requisite directories: %w", err)
	}

	var mu sync.Mutex
	var errs error
	var wg sync.WaitGroup

	for _, subDir := range []string{criticalSubDir, normalSubDir} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := c.processCSS(subDir); err != nil {
				mu.Lock()
				errs = multierr.Append(errs, buildError{task: subDir, err: err})
				mu.Unlock()
			}
		}()
	}

	wg.Wait()

	return errs
}

// processCSS prefixes and concatenates the CSS files of one styles subdir,
// then saves the result to disk.
func (c *Config) processCSS(subDir string) error {
	dirPath := filepath.Join(c.getStylesRoot(), subDir)
	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		return nil
	}
	files, err := os.ReadDir(dirPath)
	if err != nil {
		return fmt.Errorf("error reading directory: %w", err)
	}

	var fileNames []string

	// Collect and sort .css files
	for _, file := range files {
		if !file.IsDir() && strings.HasSuffix(file.Name(), ".css") {
			fileNames = append(fileNames, file.Name())
		}
	}
	sort.Strings(fileNames)

	processedCSS := make([]string, len(fileNames))

	g, ctx := errgroup.WithContext(context.Background())
	for i, fileName := range fileNames {
		g.Go(func() error {
			if err := c.fileSemaphore.Acquire(ctx, 1); err != nil {
				return fmt.Errorf("error acquiring semaphore: %w", err)
			}
			defer c.fileSemaphore.Release(1)

			content, err := os.ReadFile(filepath.Join(dirPath, fileName))
			if err != nil {
				return fmt.Errorf("error reading file %s: %w", fileName, err)
			}

			prefixed, err := c.PrefixFile(path.Join(subDir, fileName), content)
			if err != nil {
				return err
			}
			processedCSS[i] = prefixed
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	concatenatedCSS := strings.Join(processedCSS, "\n")

	if !GetIsDev() {
		m := minify.New()
		m.AddFunc("text/css", css.Minify)
		concatenatedCSS, err = m.String("text/css", concatenatedCSS)
		if err != nil {
			return fmt.Errorf("error minifying CSS: %w", err)
		}
	}

	if subDir == criticalSubDir {
		outputFile := filepath.Join(c.getDistRoot(), internalDir, criticalCSSFile)
		return os.WriteFile(outputFile, []byte(concatenatedCSS), 0644)
	}

	outputPath := filepath.Join(c.getDistRoot(), staticDir)

	// first, delete the old normal.css file(s)
	oldNormalFiles, err := filepath.Glob(filepath.Join(outputPath, "normal_*.css"))
	if err != nil {
		return fmt.Errorf("error finding old normal CSS files: %w", err)
	}
	for _, oldNormalFile := range oldNormalFiles {
		if err := os.Remove(oldNormalFile); err != nil {
			return fmt.Errorf("error removing old normal CSS file: %w", err)
		}
	}

	outputFileName := getHashedFilenameFromBytes([]byte(concatenatedCSS), normalCSSFile)

	if err := os.WriteFile(filepath.Join(outputPath, outputFileName), []byte(concatenatedCSS), 0644); err != nil {
		return fmt.Errorf("error writing to file: %w", err)
	}

	// the ref file is written last so it never points at a missing file
	refFile := filepath.Join(c.getDistRoot(), internalDir, normalCSSFileRefFile)
	return os.WriteFile(refFile, []byte(outputFileName), 0644)
}
