package config

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/komsit37/yqdash/pkg/yqdash/logger"
	"github.com/komsit37/yqdash/pkg/yqdash/session"
	"github.com/komsit37/yqdash/pkg/yqdash/types"
)

// EnvPrefix prefixes every environment override, e.g. YQDASH_SERVER_PORT.
const EnvPrefix = "YQDASH"

type Config struct {
	Symbols     string `mapstructure:"symbols"`
	SymbolsFile string `mapstructure:"symbols_file"`
	List        string `mapstructure:"list"`
	Formatted   bool   `mapstructure:"formatted"`
	Async       bool   `mapstructure:"async"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`

	Output      string `mapstructure:"output" default:"json" validate:"oneof=json table code"`
	Pretty      bool   `mapstructure:"pretty"`
	Color       bool   `mapstructure:"color"`
	MaxColWidth int    `mapstructure:"max_col_width" default:"40" validate:"gte=0"`

	Yahoo  YahooConfig         `mapstructure:"yahoo"`
	Server ServerConfig        `mapstructure:"server"`
	Redis  session.RedisConfig `mapstructure:"redis"`
	Log    logger.Config       `mapstructure:"log"`
}

type YahooConfig struct {
	BaseURL        string        `mapstructure:"base_url" default:"https://query2.finance.yahoo.com" validate:"url"`
	UserAgent      string        `mapstructure:"user_agent"`
	Timeout        time.Duration `mapstructure:"timeout" default:"30s"`
	MaxConcurrency int           `mapstructure:"max_concurrency" default:"8" validate:"gte=1"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host" default:"0.0.0.0"`
	Port            int           `mapstructure:"port" default:"8080" validate:"gte=1,lte=65535"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" default:"30s"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" default:"60s"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" default:"10s"`
	CORS            bool          `mapstructure:"cors" default:"true"`
	CookieName      string        `mapstructure:"cookie_name" default:"yqdash_session" validate:"required"`
	SessionIdle     time.Duration `mapstructure:"session_idle" default:"30m"`
	SweepInterval   time.Duration `mapstructure:"sweep_interval" default:"1m" validate:"gt=0"`
	Store           string        `mapstructure:"store" default:"memory" validate:"oneof=memory redis"`
	MemoTTL         time.Duration `mapstructure:"memo_ttl" default:"10m"`
	MemoSize        int           `mapstructure:"memo_size" default:"256" validate:"gte=0"`
}

// Options returns the data handle options the config selects.
func (c *Config) Options() types.Options {
	return types.Options{
		Formatted:    c.Formatted,
		Asynchronous: c.Async,
		Username:     c.Username,
		Password:     c.Password,
	}
}

// Load fills a Config from defaults, the optional config file, environment
// variables and whatever flags were bound to v, then validates it.
func Load(v *viper.Viper, file string) (*Config, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvs(v, reflect.TypeOf(Config{}), "")

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// bindEnvs registers every mapstructure key so Unmarshal sees env values for
// keys absent from the config file.
func bindEnvs(v *viper.Viper, t reflect.Type, prefix string) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("mapstructure")
		if tag == "" || tag == "-" {
			continue
		}
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}
		if f.Type.Kind() == reflect.Struct {
			bindEnvs(v, f.Type, key)
			continue
		}
		_ = v.BindEnv(key)
	}
}
