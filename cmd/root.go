// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Invoke AI

// Package cmd provides the root command for the invokepaths CLI.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"slices"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/invoke-ai/invokepaths"
	"github.com/invoke-ai/invokepaths/config"
	configv0 "github.com/invoke-ai/invokepaths/config/v0"
	"github.com/invoke-ai/invokepaths/connectivity"
	"github.com/invoke-ai/invokepaths/initfile"
)

// ConfigEnvVar points at a settings file to use instead of <root>/invokeai.yaml
const ConfigEnvVar = "INVOKEAI_CONFIG"

// startupFlags are consumed before the init file is read, so it may not set them
var startupFlags = []string{"root", "config", "ignore-init"}

// NewRootCmd creates the root command for the invokepaths CLI.
//
// It configures the process-wide registry (config.Default).
func NewRootCmd() *cobra.Command {
	return newRootCmd(config.Default(), afero.NewOsFs())
}

func newRootCmd(reg *config.Registry, fsys afero.Fs) *cobra.Command {
	var (
		rootDir       string
		configPath    string
		level         string
		ver           bool
		output        = invokepaths.DefaultFormat // VarP does not allow you to set a default value
		alwaysUseCPU  bool
		noPatchmatch  bool
		noXformers    bool
		fullPrecision bool
		probe         bool
		probeURL      string
		ignoreInit    bool
	)

	// closure initializer, applies every source in order of increasing precedence:
	// environment < --root < settings file < init file < flags
	setup := func(cmd *cobra.Command) error {
		logger := log.FromContext(cmd.Context())

		l, err := log.ParseLevel(level)
		if err != nil {
			return err
		}
		logger.SetLevel(l)

		flags := cmd.Flags()
		env := reg.Env()

		if flags.Changed("root") {
			reg.SetRoot(config.ResolvePath(env, rootDir))
			logger.Debug("resolved root", "root", reg.Root(), "source", "--root")
		} else {
			_, source := config.ResolveRoot(env)
			logger.Debug("resolved root", "root", reg.Root(), "source", source)
		}

		cfg, err := loadSettings(fsys, flags, configPath, env, reg.SettingsFile())
		if err != nil {
			return err
		}
		reg.Update(cfg.Apply)

		if !ignoreInit {
			path := reg.InitFile()
			args, err := initfile.Load(fsys, path)
			if err != nil {
				return err
			}
			if len(args) > 0 {
				logger.Debug("applying init file", "path", path, "switches", args)
			}
			if err := applyInitArgs(flags, args); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			// the init file may have changed the level
			if l, err = log.ParseLevel(level); err != nil {
				return err
			}
			logger.SetLevel(l)
		}

		reg.Update(func(s *config.Settings) {
			if flags.Changed("always-use-cpu") {
				s.AlwaysUseCPU = alwaysUseCPU
			}
			if flags.Changed("no-patchmatch") {
				s.TryPatchmatch = !noPatchmatch
			}
			if flags.Changed("no-xformers") {
				s.DisableXformers = noXformers
			}
			if flags.Changed("full-precision") {
				s.FullPrecision = fullPrecision
			}
		})

		if probe {
			available := connectivity.Probe(cmd.Context(), connectivity.WithURL(probeURL))
			if !available {
				logger.Warn("internet connection not available, remote downloads are disabled", "url", probeURL)
			}
			reg.Update(func(s *config.Settings) {
				s.InternetAvailable = available
			})
		}

		return nil
	}

	root := &cobra.Command{
		Use:   "invokepaths",
		Short: "Show where InvokeAI keeps its models, configs and caches",
		Example: `
invokepaths

invokepaths --root ~/invokeai -o yaml

invokepaths path models-dir

HF_HOME=/srv/hf invokepaths cache-dir diffusers
`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return setup(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if ver {
				v, err := version()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), v)
				return nil
			}

			return invokepaths.Render(cmd.OutOrStdout(), invokepaths.NewLayout(reg), output)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&rootDir, "root", "", fmt.Sprintf("Root directory (default $%s, the parent of $%s or ~/%s)", config.RootEnvVar, config.VirtualEnvVar, config.DefaultRootName))
	_ = root.MarkPersistentFlagDirname("root")
	pf.StringVar(&configPath, "config", "", fmt.Sprintf("Path to the settings file (default $%s or <root>/%s)", ConfigEnvVar, config.SettingsFileName))
	_ = root.MarkPersistentFlagFilename("config", "yaml", "yml")
	pf.StringVarP(&level, "log-level", "l", "info", "Set log level")
	_ = root.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{log.DebugLevel.String(), log.InfoLevel.String(), log.WarnLevel.String(), log.ErrorLevel.String(), log.FatalLevel.String()}, cobra.ShellCompDirectiveNoFileComp
	})
	pf.VarP(&output, "output", "o", fmt.Sprintf(`Set output format ("%s")`, strings.Join(invokepaths.AvailableFormats(), `", "`)))
	_ = root.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return invokepaths.AvailableFormats(), cobra.ShellCompDirectiveNoFileComp
	})
	pf.BoolVar(&alwaysUseCPU, "always-use-cpu", false, "Use the CPU even if a GPU is available")
	pf.BoolVar(&noPatchmatch, "no-patchmatch", false, "Do not try to load the patchmatch inpainting helper")
	pf.BoolVar(&noXformers, "no-xformers", false, "Disable xformers memory efficient attention")
	pf.BoolVar(&fullPrecision, "full-precision", false, "Force full (float32) precision")
	pf.BoolVar(&probe, "probe-internet", false, "Check whether remote model downloads are possible")
	pf.StringVar(&probeURL, "probe-url", connectivity.DefaultURL, "Endpoint used by --probe-internet")
	_ = pf.MarkHidden("probe-url")
	pf.BoolVar(&ignoreInit, "ignore-init", false, "Do not read switches from the init file")
	root.Flags().BoolVarP(&ver, "version", "V", false, "Print version number and exit")

	root.AddCommand(newPathCmd(reg), newCacheDirCmd(reg))

	return root
}

func newPathCmd(reg *config.Registry) *cobra.Command {
	return &cobra.Command{
		Use:   "path NAME",
		Short: "Print a single resolved path",
		Args:  cobra.ExactArgs(1),
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return invokepaths.Layout{}.PathNames(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			layout := invokepaths.NewLayout(reg)
			p, ok := layout.Path(args[0])
			if !ok {
				return fmt.Errorf("unknown path %q, available: %s", args[0], strings.Join(layout.PathNames(), ", "))
			}
			fmt.Fprintln(cmd.OutOrStdout(), p)
			return nil
		},
	}
}

func newCacheDirCmd(reg *config.Registry) *cobra.Command {
	return &cobra.Command{
		Use:   "cache-dir [SUBDIR]",
		Short: "Print the model cache directory, optionally namespaced by SUBDIR",
		Example: `
invokepaths cache-dir hub
invokepaths cache-dir diffusers
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), reg.CacheDir(args...))
			return nil
		},
	}
}

// loadSettings picks the settings file: --config < $INVOKEAI_CONFIG < <root>/invokeai.yaml
//
// Only the implicit default may be missing.
func loadSettings(fsys afero.Fs, flags *pflag.FlagSet, configPath string, env config.Environment, defaultPath string) (*configv0.Config, error) {
	var explicit string
	switch {
	case flags.Changed("config"):
		explicit = configPath
	case env.Getenv(ConfigEnvVar) != "":
		explicit = env.Getenv(ConfigEnvVar)
	default:
		return configv0.Load(fsys, defaultPath)
	}

	explicit = config.ResolvePath(env, explicit)
	f, err := fsys.Open(explicit)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	cfg, err := configv0.LoadConfig(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file %q: %w", explicit, err)
	}
	return cfg, nil
}

// applyInitArgs parses switches from the init file into flags without
// overriding anything already set on the command line
func applyInitArgs(flags *pflag.FlagSet, args []string) error {
	if len(args) == 0 {
		return nil
	}

	cli := map[string]string{}
	flags.Visit(func(f *pflag.Flag) {
		cli[f.Name] = f.Value.String()
	})

	fromFile := pflag.NewFlagSet("init", pflag.ContinueOnError)
	fromFile.SetOutput(io.Discard)
	fromFile.AddFlagSet(flags)
	if err := fromFile.Parse(args); err != nil {
		return err
	}
	if fromFile.NArg() > 0 {
		return fmt.Errorf("unexpected argument %q", fromFile.Arg(0))
	}

	var errs error
	fromFile.Visit(func(f *pflag.Flag) {
		if slices.Contains(startupFlags, f.Name) {
			errs = errors.Join(errs, fmt.Errorf("--%s cannot be set from the init file", f.Name))
		}
	})
	if errs != nil {
		return errs
	}

	for name, value := range cli {
		if err := flags.Set(name, value); err != nil {
			return err
		}
	}
	return nil
}

func version() (string, error) {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return "", fmt.Errorf("version information not available")
	}
	if bi.Main.Path == "github.com/invoke-ai/invokepaths" {
		return bi.Main.Version, nil
	}
	for _, dep := range bi.Deps {
		if dep.Path == "github.com/invoke-ai/invokepaths" {
			return dep.Version, nil
		}
	}
	return bi.Main.Version, nil
}

// Main executes the root command for the invokepaths CLI.
//
// It returns 0 on success, 1 on failure and logs any errors.
func Main() int {
	cli := NewRootCmd()

	ctx := context.Background()

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGTERM)
	defer cancel()

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: false,
	})

	logger.SetStyles(DefaultStyles())

	ctx = log.WithContext(ctx, logger)
	if err := cli.ExecuteContext(ctx); err != nil {
		logger.Error(err)
		return 1
	}
	return 0
}
