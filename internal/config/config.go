package config

import (
	"errors"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Callback CallbackConfig `mapstructure:"callback"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type AppConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
	Port    int    `mapstructure:"port"`
	Env     string `mapstructure:"env"`
}

// CallbackConfig describes where LinkedIn authorization results are forwarded.
type CallbackConfig struct {
	DeepLinkScheme string `mapstructure:"deep_link_scheme"` // knot
	DeepLinkHost   string `mapstructure:"deep_link_host"`   // linkedin-callback
	WebHost        string `mapstructure:"web_host"`         // Flutter web dev server host
	WebDefaultPort string `mapstructure:"web_default_port"` // used when Referer carries no port
	WebPath        string `mapstructure:"web_path"`         // hash route of the import screen
	RedirectStatus int    `mapstructure:"redirect_status"`
	PageDelay      int    `mapstructure:"page_delay"` // meta refresh fallback, seconds
}

type CORSConfig struct {
	AllowOrigins string `mapstructure:"allow_origins"`
	AllowMethods string `mapstructure:"allow_methods"`
	// Empty reflects the request's Access-Control-Request-Headers.
	AllowHeaders string `mapstructure:"allow_headers"`
}

type LoggingConfig struct {
	Level         string `mapstructure:"level"`
	Format        string `mapstructure:"format"`
	RedactSecrets bool   `mapstructure:"redact_secrets"`
}

// InitFlags declares the command line flags understood by NewConfig.
// Parsing is left to main.
func InitFlags() {
	pflag.Int("port", 0, "HTTP listen port (overrides PORT and app.port)")
	pflag.String("env", "", "Runtime environment (development|production)")
	pflag.String("config", "", "Path to a config file")
	pflag.Bool("version", false, "Show version information")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "Knot API")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.port", 8000)
	v.SetDefault("app.env", EnvProduction)

	v.SetDefault("callback.deep_link_scheme", "knot")
	v.SetDefault("callback.deep_link_host", "linkedin-callback")
	v.SetDefault("callback.web_host", "localhost")
	v.SetDefault("callback.web_default_port", "52444")
	v.SetDefault("callback.web_path", "/#/import/linkedin")
	v.SetDefault("callback.redirect_status", 302)
	v.SetDefault("callback.page_delay", 2)

	v.SetDefault("cors.allow_origins", "*")
	v.SetDefault("cors.allow_methods", "GET,POST,HEAD,PUT,DELETE,PATCH,OPTIONS")
	v.SetDefault("cors.allow_headers", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "")
	v.SetDefault("logging.redact_secrets", false)
}

func NewConfig() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// Enable environment variable override
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	// PORT is what hosting platforms and tunnels set
	if err := v.BindEnv("app.port", "PORT", "APP_PORT"); err != nil {
		return nil, err
	}

	if flag := pflag.Lookup("port"); flag != nil && flag.Changed {
		if err := v.BindPFlag("app.port", flag); err != nil {
			return nil, err
		}
	}
	if flag := pflag.Lookup("env"); flag != nil && flag.Changed {
		if err := v.BindPFlag("app.env", flag); err != nil {
			return nil, err
		}
	}

	configFile := ""
	if flag := pflag.Lookup("config"); flag != nil {
		configFile = flag.Value.String()
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		// The file is optional when searching; an explicit path must exist.
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.Callback.RedirectStatus < 300 || cfg.Callback.RedirectStatus > 399 {
		cfg.Callback.RedirectStatus = 302
	}

	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.App.Env == EnvDevelopment
}

func (c *Config) IsProduction() bool {
	return c.App.Env == EnvProduction
}
