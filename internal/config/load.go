package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"nl2sql/internal/storage"
)

const (
	// EnvPrefix prefixes every environment override. A double underscore
	// separates nesting levels: NL2SQL_CONNECTION__HOST -> connection.host.
	EnvPrefix = "NL2SQL_"

	// DefaultEnvFile is read when present and no env file was named.
	DefaultEnvFile = ".env"

	DefaultDataDir = "data"
	DefaultKind    = "mysql"
	DefaultHost    = "localhost"
	DefaultUser    = "root"
)

// flagKeys maps CLI flag names to config keys. Flags not listed here are
// not configuration and are ignored by Load.
var flagKeys = map[string]string{
	"data-dir":        "data_dir",
	"backend":         "connection.kind",
	"host":            "connection.host",
	"port":            "connection.port",
	"user":            "connection.user",
	"domain-workers":  "runtime.domain_workers",
	"table-workers":   "runtime.table_workers",
	"batch-size":      "runtime.batch_size",
	"metrics-backend": "metrics.backend",
	"pushgateway-url": "metrics.pushgateway_url",
	"statsd-addr":     "metrics.statsd_addr",
}

// Options names the inputs of Load. All fields are optional.
type Options struct {
	// File is a YAML config file.
	File string
	// EnvFile is a dotenv file loaded into the process environment before
	// the environment layer is read. Empty means DefaultEnvFile if present.
	EnvFile string
	// Flags are applied last; only flags the user changed are used.
	Flags *pflag.FlagSet
}

// Defaults returns the lowest configuration layer.
func Defaults() map[string]any {
	return map[string]any{
		"data_dir":               DefaultDataDir,
		"connection.kind":        DefaultKind,
		"connection.host":        DefaultHost,
		"connection.user":        DefaultUser,
		"runtime.domain_workers": 0,
		"runtime.table_workers":  1,
		"runtime.batch_size":     storage.DefaultBatchSize,
		"metrics.backend":        "none",
	}
}

// Load builds a Config. Precedence (highest to lowest): flags > environment
// (including the env file) > config file > defaults. If no layer declares any
// domain the built-in registry is used.
func Load(opt Options) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	// 2. Config file
	if opt.File != "" {
		if err := k.Load(file.Provider(opt.File), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", opt.File, err)
		}
	}

	// 3. Env file, then environment
	if err := loadEnvFile(opt.EnvFile); err != nil {
		return nil, err
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	// 4. Flags
	if opt.Flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(opt.Flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(opt.Flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if len(cfg.Domains) == 0 {
		cfg.Domains = Builtin()
	}
	return &cfg, nil
}

// envKey turns NL2SQL_RUNTIME__BATCH_SIZE into runtime.batch_size.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// loadEnvFile loads name into the process environment without overriding
// variables that are already set. A missing default file is not an error; a
// missing named file is.
func loadEnvFile(name string) error {
	if name == "" {
		if _, err := os.Stat(DefaultEnvFile); errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		name = DefaultEnvFile
	}
	if err := godotenv.Load(name); err != nil {
		return fmt.Errorf("load env file %s: %w", name, err)
	}
	return nil
}
