package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes every environment variable read by Load. Nested keys
// are separated by a double underscore: KNOLDECK_LOG__LEVEL=debug.
const EnvPrefix = "KNOLDECK_"

// Config is the application configuration.
type Config struct {
	DB        string          `koanf:"db" validate:"required"`
	ReposDir  string          `koanf:"repos_dir" validate:"required"`
	Log       LogConfig       `koanf:"log"`
	Server    ServerConfig    `koanf:"server"`
	Scheduler SchedulerConfig `koanf:"scheduler"`
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=text json"`
	File   string `koanf:"file"`
}

type ServerConfig struct {
	Addr string `koanf:"addr" validate:"required,hostname_port"`
}

// SchedulerConfig overrides the memory model defaults.
type SchedulerConfig struct {
	DesiredRetention float64 `koanf:"desired_retention" validate:"gt=0,lt=1"`
	MaximumInterval  int64   `koanf:"maximum_interval" validate:"min=1"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		DB:       "knoldeck.db",
		ReposDir: "repos",
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr: "localhost:8080",
		},
		Scheduler: SchedulerConfig{
			DesiredRetention: 0.9,
			MaximumInterval:  36500,
		},
	}
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"db":          "db",
	"repos-dir":   "repos_dir",
	"log-level":   "log.level",
	"log-format":  "log.format",
	"log-file":    "log.file",
	"server-addr": "server.addr",
}

// RegisterFlags registers the configuration flags with the defaults as
// their default values.
func RegisterFlags(flags *pflag.FlagSet) {
	d := Default()
	flags.String("db", d.DB, "Path to the SQLite collection (:memory: for an ephemeral one)")
	flags.String("repos-dir", d.ReposDir, "Directory git sources are checked out into")
	flags.String("log-level", d.Log.Level, "Log level: debug, info, warn or error")
	flags.String("log-format", d.Log.Format, "Log format: text or json")
	flags.String("log-file", d.Log.File, "Also write logs to this file")
	flags.String("server-addr", d.Server.Addr, "Address the HTTP API listens on")
}

// Load layers the defaults, the YAML file at path (optional; a missing file
// is ignored unless explicit is set), KNOLDECK_* environment variables and
// flags, later layers winning. The result is validated.
func Load(path string, explicit bool, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			if explicit || !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
			}
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey turns KNOLDECK_LOG__LEVEL into log.level.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// DefaultPath is the config file read when --config is not given.
func DefaultPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "knoldeck", "config.yaml")
	}
	return "knoldeck.yaml"
}
