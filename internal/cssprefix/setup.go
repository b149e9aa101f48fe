package icp

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) setupDistDir() error {
	// make a dist/cssprefix/internal directory
	path := filepath.Join(c.getDistRoot(), internalDir)
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("error making internal directory: %w", err)
	}

	// and a dist/cssprefix/static directory
	path = filepath.Join(c.getDistRoot(), staticDir)
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("error making static directory: %w", err)
	}

	return nil
}

func getHashedFilenameFromBytes(content []byte, originalFileName string) string {
	hash := sha256.New()
	hash.Write(content)
	hashedSuffix := fmt.Sprintf("%x", hash.Sum(nil))[:12] // Short hash
	ext := filepath.Ext(originalFileName)
	return fmt.Sprintf("%s_%s%s", strings.TrimSuffix(originalFileName, ext), hashedSuffix, ext)
}
