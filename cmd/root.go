// Package cmd implements the gasolina CLI commands.
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/lbermudezd2020/appgasolinabueno/internal/cli"
	"github.com/lbermudezd2020/appgasolinabueno/internal/config"
	"github.com/lbermudezd2020/appgasolinabueno/internal/pipeline"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagFile    string
	flagSheet   string
	flagMode    string
	flagNoCache bool
	flagQuiet   bool
	flagVerbose bool
)

// Effective configuration and logger, set before any command runs.
var (
	appCfg = config.DefaultConfig()
	logger = zap.NewNop()
)

// Command annotations read by prepare.
const (
	annotationLogger  = "gasolina/logger"  // "nop" or "json"; default is console
	annotationLenient = "gasolina/lenient" // an invalid config is a warning
)

var rootCmd = &cobra.Command{
	Use:   "gasolina",
	Short: "Mexican gasoline prices by state, fuel type and month",
	Long: "Look up and estimate gasoline prices from a spreadsheet of monthly prices by\n" +
		"state and fuel type. Without a subcommand the interactive dashboard opens.",
	Annotations:       map[string]string{annotationLogger: "nop", annotationLenient: "true"},
	SilenceUsage:      true,
	PersistentPreRunE: prepare,
	RunE:              runTUI,
}

// Execute is the main entry point called from main.go.
func Execute() {
	defer func() { _ = logger.Sync() }()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagFile, "file", "f", pipeline.DefaultFile, "Price spreadsheet (.xlsx or .csv)")
	rootCmd.PersistentFlags().StringVar(&flagSheet, "sheet", "", "Worksheet to read (default: the first)")
	rootCmd.PersistentFlags().StringVar(&flagMode, "mode", "", "Dashboard mode: lookup or estimate")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "Skip the SQLite cache, reparse the source")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Debug logging")
}

// prepare resolves the effective configuration (flags over env over file
// over defaults) and builds the logger.
func prepare(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	applyFlags(cmd, &cfg)

	if err := cfg.Validate(); err != nil {
		if cmd.Annotations[annotationLenient] == "" {
			return fmt.Errorf("invalid configuration (%s): %w", config.ConfigPath(), err)
		}
		fmt.Fprintf(os.Stderr, "  Warning: %v\n", err)
	}
	appCfg = cfg

	logger, err = newLogger(cfg, cmd.Annotations[annotationLogger])
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	return nil
}

// applyFlags copies explicitly set persistent flags over cfg.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("file") {
		cfg.Data.File = flagFile
	}
	if flags.Changed("sheet") {
		cfg.Data.Sheet = flagSheet
	}
	if flags.Changed("mode") {
		cfg.Data.Mode = flagMode
	}
	if flagNoCache {
		cfg.Data.UseCache = false
	}
	if flagVerbose {
		cfg.Logging.Level = "debug"
	}
}

// loadShared loads the configured source, printing progress unless --quiet.
func loadShared() (*pipeline.Shared, *pipeline.LoadResult, error) {
	src := pipeline.SourceFor(appCfg)
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Loading %s...", src.Path)
	}

	shared := pipeline.NewShared(src, logger)
	res, err := shared.Result()
	if err != nil {
		if !flagQuiet {
			fmt.Fprintln(os.Stderr)
		}
		return nil, nil, err
	}

	if !flagQuiet {
		from := ""
		if res.FromCache {
			from = " from cache"
		}
		fmt.Fprintf(os.Stderr, "\r  Loaded %s rows%s in %s    \n",
			cli.FormatNumber(int64(res.Table.Len())), from, res.Elapsed.Round(time.Millisecond))
	}
	return shared, res, nil
}
