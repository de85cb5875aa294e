package cmd

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/lbermudezd2020/appgasolinabueno/internal/config"
	"github.com/lbermudezd2020/appgasolinabueno/internal/model"
	"github.com/lbermudezd2020/appgasolinabueno/internal/pipeline"

	"github.com/spf13/cobra"
)

func TestFilterDetachArg(t *testing.T) {
	got := filterDetachArg([]string{"serve", "--detach", "--addr", ":9000", "--detach=true", "-f", "x.csv"})
	want := []string{"serve", "--addr", ":9000", "-f", "x.csv"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("filterDetachArg = %v, want %v", got, want)
	}
}

func TestPIDFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "serve.pid")
	if err := writePID(path, 4242); err != nil {
		t.Fatal(err)
	}
	pid, err := readPID(path)
	if err != nil || pid != 4242 {
		t.Fatalf("readPID = %d, %v", pid, err)
	}

	if err := os.WriteFile(path, []byte("nope\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := readPID(path); err == nil {
		t.Error("garbage pid file should fail")
	}
}

func TestRuntimeStateRoundTrip(t *testing.T) {
	path := statePath(filepath.Join(t.TempDir(), "serve.pid"))
	want := serverRuntimeState{PID: 7, Addr: "127.0.0.1:9090", Source: "precios.xlsx", Mode: model.ModeLookup}
	if err := writeState(path, want); err != nil {
		t.Fatal(err)
	}
	got, err := readState(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.PID != want.PID || got.Addr != want.Addr || got.Mode != want.Mode || got.Source != want.Source {
		t.Errorf("state = %+v, want %+v", got, want)
	}
}

func TestEnsureServerNotRunning_RemovesStalePID(t *testing.T) {
	pidFile := filepath.Join(t.TempDir(), "serve.pid")
	if err := ensureServerNotRunning(pidFile); err != nil {
		t.Fatalf("missing pid file: %v", err)
	}

	if err := writePID(pidFile, os.Getpid()); err != nil {
		t.Fatal(err)
	}
	if err := ensureServerNotRunning(pidFile); err == nil {
		t.Error("own pid is alive; expected already running")
	}
}

func TestResolveQuery(t *testing.T) {
	opts := pipeline.Options{
		States:    []string{"CDMX", "Jalisco"},
		FuelTypes: []string{"diesel", "magna"},
		MinYear:   2020,
		MaxYear:   2023,
	}

	c := &cobra.Command{Use: "price"}
	addQueryFlags(c, true, true)
	if err := c.ParseFlags([]string{"--state", "Jalisco", "--month", "5"}); err != nil {
		t.Fatal(err)
	}

	got := resolveQuery(c, opts)
	want := model.Query{State: "Jalisco", FuelType: "diesel", Year: 2023, Month: 5}
	if got != want {
		t.Errorf("resolveQuery = %+v, want %+v", got, want)
	}
}

func TestApplyFlags(t *testing.T) {
	t.Cleanup(func() { flagNoCache, flagVerbose = false, false })

	c := &cobra.Command{Use: "x"}
	c.Flags().StringVarP(&flagFile, "file", "f", pipeline.DefaultFile, "")
	c.Flags().StringVar(&flagMode, "mode", "", "")
	c.Flags().StringVar(&flagSheet, "sheet", "", "")
	c.Flags().BoolVar(&flagNoCache, "no-cache", false, "")
	if err := c.ParseFlags([]string{"-f", "otro.csv", "--no-cache"}); err != nil {
		t.Fatal(err)
	}

	cfg := config.DefaultConfig()
	cfg.Data.Mode = "lookup"
	applyFlags(c, &cfg)

	if cfg.Data.File != "otro.csv" {
		t.Errorf("file = %q", cfg.Data.File)
	}
	if cfg.Data.Mode != "lookup" {
		t.Errorf("unset --mode overrode the file value: %q", cfg.Data.Mode)
	}
	if cfg.Data.UseCache {
		t.Error("--no-cache should disable the cache")
	}
}

func TestNewLogger(t *testing.T) {
	cfg := config.DefaultConfig()
	for _, kind := range []string{"", "json", "nop"} {
		l, err := newLogger(cfg, kind)
		if err != nil || l == nil {
			t.Fatalf("newLogger(%q) = %v, %v", kind, l, err)
		}
	}
}
