// Package config layers settings from defaults, an optional YAML file,
// BILLFOLD_* environment variables and command-line flags, in that order
// of increasing precedence.
package config

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

type Config struct {
	DatabaseDSN   string  `mapstructure:"database_dsn"`
	MerchantsPath string  `mapstructure:"merchants_path"`
	RulesPath     string  `mapstructure:"rules_path"`
	PasswordsPath string  `mapstructure:"passwords_path"`
	HintsPath     string  `mapstructure:"hints_path"`
	LogDir        string  `mapstructure:"log_dir"`
	ReportDir     string  `mapstructure:"report_dir"`
	Tolerance     float64 `mapstructure:"tolerance"`
	Workers       int     `mapstructure:"workers"`
}

// ToleranceDecimal returns the reconciliation tolerance as an exact
// decimal, guarding against a misconfigured negative value.
func (c *Config) ToleranceDecimal() decimal.Decimal {
	d := decimal.NewFromFloat(c.Tolerance)
	if d.IsNegative() {
		return decimal.RequireFromString("0.01")
	}
	return d
}

// Build loads configuration. cfgFile may be empty, in which case
// config.yaml in the working directory is used when present. A .env file
// is folded into the environment first so BILLFOLD_DATABASE_DSN and
// friends can live there.
func Build(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	_ = gotenv.Load()

	v := viper.New()
	v.SetDefault("database_dsn", "")
	v.SetDefault("merchants_path", "config/merchants.yaml")
	v.SetDefault("rules_path", "config/rules.yaml")
	v.SetDefault("passwords_path", "config/passwords.json")
	v.SetDefault("hints_path", "config/subject_hints.yaml")
	v.SetDefault("log_dir", "logs")
	v.SetDefault("report_dir", "reports")
	v.SetDefault("tolerance", 0.01)
	v.SetDefault("workers", 4)

	v.SetEnvPrefix("billfold")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
