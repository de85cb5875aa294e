package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/lbermudezd2020/appgasolinabueno/internal/cli"
	"github.com/lbermudezd2020/appgasolinabueno/internal/config"
	"github.com/lbermudezd2020/appgasolinabueno/internal/pipeline"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:         "config",
	Short:       "Show the effective configuration",
	Annotations: map[string]string{annotationLenient: "true"},
	RunE:        runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg := appCfg

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	if env := overriddenEnv(); len(env) > 0 {
		fmt.Printf("  Environment: %s\n", strings.Join(env, ", "))
	}
	if err := cfg.Validate(); err != nil {
		fmt.Println(cli.RenderWarning(err.Error()))
	}
	fmt.Println()

	sheet := cfg.Data.Sheet
	if sheet == "" {
		sheet = "(first)"
	}
	cache := strconv.FormatBool(cfg.Data.UseCache)
	if cfg.Data.UseCache {
		cache += "  " + pipeline.CachePath()
	}

	section := func(name string, pairs [][2]string) {
		fmt.Printf("  [%s]\n", name)
		fmt.Print(cli.RenderKV(pairs))
		fmt.Println()
	}
	section("data", [][2]string{
		{"file", cfg.Data.File},
		{"sheet", sheet},
		{"mode", cfg.Data.Mode},
		{"use_cache", cache},
	})
	section("server", [][2]string{
		{"addr", cfg.Server.Addr},
		{"rate_per_second", strconv.FormatFloat(cfg.Server.RatePerSecond, 'g', -1, 64)},
		{"burst", strconv.Itoa(cfg.Server.Burst)},
	})
	section("appearance", [][2]string{{"theme", cfg.Appearance.Theme}})
	section("logging", [][2]string{{"level", cfg.Logging.Level}})

	fmt.Println("  Run `gasolina setup` to reconfigure.")
	return nil
}

// overriddenEnv lists the GASOLINA_* variables set in the environment.
func overriddenEnv() []string {
	var names []string
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, config.EnvPrefix+"_") {
			names = append(names, name)
		}
	}
	return names
}
