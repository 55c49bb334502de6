package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	envPrefix         = "SHOP"
	configFileEnvName = "SHOP_CONFIG_FILE"
)

type HTTP struct {
	Addr            string        `mapstructure:"addr" validate:"required"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

type Catalog struct {
	BaseURL        string        `mapstructure:"base_url" validate:"required,url"`
	ProductLimit   int           `mapstructure:"product_limit" validate:"gt=0"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"gte=0"`
}

type Session struct {
	Secret      string        `mapstructure:"secret" validate:"omitempty,min=16"`
	TTL         time.Duration `mapstructure:"ttl" validate:"gt=0"`
	MaxSessions int           `mapstructure:"max_sessions" validate:"gt=0"`
}

type Cache struct {
	Size int `mapstructure:"size" validate:"gt=0"`
}

type Log struct {
	Level       string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Development bool   `mapstructure:"development"`
}

type Config struct {
	HTTP    HTTP    `mapstructure:"http"`
	Catalog Catalog `mapstructure:"catalog"`
	Session Session `mapstructure:"session"`
	Cache   Cache   `mapstructure:"cache"`
	Log     Log     `mapstructure:"log"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.shutdown_timeout", 5*time.Second)
	v.SetDefault("catalog.base_url", "https://dummyjson.com")
	v.SetDefault("catalog.product_limit", 100)
	v.SetDefault("catalog.request_timeout", 10*time.Second)
	v.SetDefault("session.secret", "")
	v.SetDefault("session.ttl", 24*time.Hour)
	v.SetDefault("session.max_sessions", 1024)
	v.SetDefault("cache.size", 256)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

// Load reads configuration from defaults, an optional YAML file, a .env file
// and SHOP_* environment variables, in increasing order of precedence.
func Load(args []string) (Config, error) {
	// A missing .env is the normal case outside development.
	_ = godotenv.Load()

	flags := pflag.NewFlagSet("catalog-shop", pflag.ContinueOnError)
	configFile := flags.String("config", "", "config file (yaml)")
	flags.String("addr", "", "HTTP listen address")
	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if addr := flags.Lookup("addr"); addr.Changed {
		v.Set("http.addr", addr.Value.String())
	}

	path := *configFile
	if env, ok := os.LookupEnv(configFileEnvName); ok && path == "" {
		path = env
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(fields, ", "))
		}
		return err
	}
	return nil
}
