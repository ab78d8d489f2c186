// Package cli provides the command-line interface for themekit.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
	cc "github.com/ivanpirog/coloredcobra"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mymoto/themekit/internal/brand"
	"github.com/mymoto/themekit/internal/config"
	"github.com/mymoto/themekit/internal/logging"
	"github.com/mymoto/themekit/internal/version"
)

var (
	// Global flags
	globalVerbose bool
	globalQuiet   bool
	globalConfig  string

	// appFs backs config, stores, images and exports. Tests swap it for a memory filesystem.
	appFs afero.Fs = afero.NewOsFs()

	// Resolved in PersistentPreRunE.
	appConfig *config.Config
	appLogger hclog.Logger = logging.Discard()
)

// NewRootCmd builds the themekit command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "themekit",
		Short: "Brand colour ramps and contrast checks",
		Long: `themekit turns a brand's primary colour into a 12-step lightness ramp,
checks colour pairs against WCAG contrast thresholds and keeps a set of
brands with their typography, exporting them as CSS, Tailwind, JSON or PNG.`,
		Version:           version.Short(),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&globalVerbose, "verbose", "v", false, "enable verbose output")
	flags.BoolVarP(&globalQuiet, "quiet", "q", false, "suppress non-error output")
	flags.StringVar(&globalConfig, "config", "", "config file (default: <user config dir>/themekit/themekit.toml)")
	flags.String("store", "auto", "brand store backend (auto, postgres, file, memory)")
	flags.String("database-url", "", "PostgreSQL connection string for the hosted brand store")
	flags.String("data-dir", "", "directory of the local brand store")
	flags.String("log-level", "info", "log level (trace, debug, info, warn, error, off)")
	flags.Bool("log-json", false, "write logs as JSON")

	rootCmd.SetVersionTemplate(version.String() + "\n")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newRampCmd())
	rootCmd.AddCommand(newCurvesCmd())
	rootCmd.AddCommand(newContrastCmd())
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newConvertCmd())
	rootCmd.AddCommand(newBrandCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newTemplatesCmd())

	return rootCmd
}

// Execute runs the root command and exits non-zero on failure.
// This is called by main.main().
func Execute() {
	rootCmd := NewRootCmd()
	if colourEnabled(os.Stdout) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
		os.Exit(1)
	}
}

// setup loads configuration and builds the logger before any command runs.
func setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(config.LoadOptions{
		Fs:       appFs,
		File:     globalConfig,
		EnvFiles: []string{".env", ".env.local"},
		Flags:    cmd.Flags(),
	})
	if err != nil {
		return err
	}
	appConfig = cfg

	appLogger = logging.New(logging.Options{
		Level:   cfg.Log.Level,
		Verbose: globalVerbose,
		Quiet:   globalQuiet,
		JSON:    cfg.Log.JSON,
		Output:  cmd.ErrOrStderr(),
	})
	if cfg.File != "" {
		appLogger.Debug("loaded config", "file", cfg.File)
	}
	return nil
}

// withService opens the configured brand store, loads the brand service and
// closes the store when fn returns.
func withService(ctx context.Context, fn func(*brand.Service) error) (err error) {
	store, err := brand.Open(ctx, appConfig.StoreOptions(appFs), appLogger.Named("store"))
	if err != nil {
		return fmt.Errorf("failed to open brand store: %w", err)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close brand store: %w", cerr)
		}
	}()

	svc := brand.NewService(store, appLogger.Named("brands"))
	if err := svc.Load(ctx); err != nil {
		return err
	}
	return fn(svc)
}

// colourEnabled reports whether ANSI previews may be written to w.
func colourEnabled(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print detailed version information including build date, commit hash, and Go version.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
