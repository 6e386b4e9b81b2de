package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
)

func TestBuildDefaults(t *testing.T) {
	cfg, err := Build(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	if err == nil {
		t.Fatal("explicit missing config file must error")
	}

	cfg, err = Build("", nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MerchantsPath != "config/merchants.yaml" || cfg.Workers != 4 {
		t.Fatalf("cfg = %+v", cfg)
	}
	if !cfg.ToleranceDecimal().Equal(decimal.RequireFromString("0.01")) {
		t.Fatalf("tolerance = %s", cfg.ToleranceDecimal())
	}
}

func TestBuildConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "tolerance: 0.5\nlog_dir: /var/log/billfold\nworkers: 8\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Build(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Workers != 8 || cfg.LogDir != "/var/log/billfold" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if !cfg.ToleranceDecimal().Equal(decimal.RequireFromString("0.5")) {
		t.Fatalf("tolerance = %s", cfg.ToleranceDecimal())
	}
}

func TestBuildFlagOverride(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("report_dir", "", "")
	if err := flags.Parse([]string{"--report_dir", "/tmp/out"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := Build("", flags)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ReportDir != "/tmp/out" {
		t.Fatalf("report_dir = %q", cfg.ReportDir)
	}
}

func TestNegativeToleranceFallsBack(t *testing.T) {
	cfg := &Config{Tolerance: -1}
	if !cfg.ToleranceDecimal().Equal(decimal.RequireFromString("0.01")) {
		t.Fatalf("tolerance = %s", cfg.ToleranceDecimal())
	}
}
