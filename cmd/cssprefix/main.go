package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sjc5/cssprefix"
)

const (
	cmdName           = "cssprefix"
	defaultConfigPath = "cssprefix.yaml"
)

type fileConfig struct {
	Prefix              string   `yaml:"prefix"`
	RootDir             string   `yaml:"root_dir"`
	Exclude             []string `yaml:"exclude"`
	ExcludePatterns     []string `yaml:"exclude_patterns"`
	SkipGlobalSelectors bool     `yaml:"skip_global_selectors"`
	IncludeFiles        []string `yaml:"include_files"`
	IgnoreFiles         []string `yaml:"ignore_files"`
	Dev                 struct {
		WatchedDirs       []string `yaml:"watched_dirs"`
		IgnorePatterns    []string `yaml:"ignore_patterns"`
		RefreshServerPort int      `yaml:"refresh_server_port"`
	} `yaml:"dev"`
}

type options struct {
	configPath string
	prefix     string
	rootDir    string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           cmdName,
		Short:         "Scope CSS selectors under a namespace class",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", defaultConfigPath, "path to YAML config file")
	root.PersistentFlags().StringVarP(&opts.prefix, "prefix", "p", "", `namespace class, e.g. ".comments-section" (overrides config)`)
	root.PersistentFlags().StringVar(&opts.rootDir, "root", "", "directory containing styles/ and dist/ (overrides config)")

	root.AddCommand(
		newSelectorCmd(opts),
		newFileCmd(opts),
		newBuildCmd(opts),
		newDevCmd(opts),
	)

	return root
}

func newSelectorCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "selector SELECTOR...",
		Short: "Print the rewritten form of each selector",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPrefixer(cmd, opts)
			if err != nil {
				return err
			}
			for _, s := range args {
				fmt.Fprintln(cmd.OutOrStdout(), p.Selector(s))
			}
			return nil
		},
	}
}

func newFileCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "file PATH",
		Short: `Print a scoped copy of a stylesheet ("-" reads stdin)`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPrefixer(cmd, opts)
			if err != nil {
				return err
			}

			var src []byte
			if args[0] == "-" {
				src, err = io.ReadAll(cmd.InOrStdin())
			} else {
				src, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("error reading stylesheet: %w", err)
			}

			out, err := p.Stylesheet(src)
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), out)
			return err
		},
	}
}

func newBuildCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Scope and write styles/{critical,normal} to dist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPrefixer(cmd, opts)
			if err != nil {
				return err
			}
			return p.Build()
		},
	}
}

func newDevCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "dev",
		Short: "Build, watch styles and serve refresh events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPrefixer(cmd, opts)
			if err != nil {
				return err
			}
			p.MustStartDev(nil)
			return nil
		},
	}
}

func newPrefixer(cmd *cobra.Command, opts *options) (*cssprefix.Prefixer, error) {
	configPathSet := cmd.Flags().Changed("config")
	fc, err := loadFileConfig(opts.configPath, configPathSet)
	if err != nil {
		return nil, err
	}
	if opts.prefix != "" {
		fc.Prefix = opts.prefix
	}
	if opts.rootDir != "" {
		fc.RootDir = opts.rootDir
	}
	config, err := fc.toConfig()
	if err != nil {
		return nil, err
	}
	return cssprefix.New(config)
}

// loadFileConfig reads path. A missing file is only an error if required.
func loadFileConfig(path string, required bool) (*fileConfig, error) {
	fc := &fileConfig{}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return fc, nil
		}
		return nil, fmt.Errorf("error reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, fc); err != nil {
		return nil, fmt.Errorf("error parsing config %s: %w", path, err)
	}
	return fc, nil
}

func (fc *fileConfig) toConfig() (*cssprefix.Config, error) {
	config := &cssprefix.Config{
		Prefix:              fc.Prefix,
		RootDir:             fc.RootDir,
		Exclude:             fc.Exclude,
		SkipGlobalSelectors: fc.SkipGlobalSelectors,
		IncludeFiles:        fc.IncludeFiles,
		IgnoreFiles:         fc.IgnoreFiles,
		DevConfig: &cssprefix.DevConfig{
			WatchedDirs:       fc.Dev.WatchedDirs,
			IgnorePatterns:    fc.Dev.IgnorePatterns,
			RefreshServerPort: fc.Dev.RefreshServerPort,
		},
	}
	for _, p := range fc.ExcludePatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("error compiling exclude pattern %q: %w", p, err)
		}
		config.ExcludePatterns = append(config.ExcludePatterns, re)
	}
	return config, nil
}
