package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Tracking TrackingConfig `mapstructure:"tracking"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Contact  ContactConfig  `mapstructure:"contact"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port         string `mapstructure:"port"`
	Mode         string `mapstructure:"mode"` // gin mode: debug, release or test
	TemplatesDir string `mapstructure:"templates_dir"`
	ImagesDir    string `mapstructure:"images_dir"`
	StaticDir    string `mapstructure:"static_dir"`
	ChartSize    int    `mapstructure:"chart_size"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type TrackingConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	RetentionMonths int  `mapstructure:"retention_months"`
}

type AdminConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type ContactConfig struct {
	SMTPHost       string `mapstructure:"smtp_host"`
	SMTPPort       string `mapstructure:"smtp_port"`
	SMTPUser       string `mapstructure:"smtp_user"`
	SMTPPass       string `mapstructure:"smtp_pass"`
	ToEmail        string `mapstructure:"to_email"`
	TelegramToken  string `mapstructure:"telegram_token"`
	TelegramChatID int64  `mapstructure:"telegram_chat_id"`
	RatePerMinute  int    `mapstructure:"rate_per_minute"`
	Burst          int    `mapstructure:"burst"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console or json
	Output string `mapstructure:"output"` // stderr, stdout or a file path
}

// Environment names kept from the first version of the site.
var legacyEnv = map[string]string{
	"server.port":       "PORT",
	"admin.username":    "ADMIN_USERNAME",
	"admin.password":    "ADMIN_PASSWORD",
	"contact.smtp_host": "SMTP_HOST",
	"contact.smtp_port": "SMTP_PORT",
	"contact.smtp_user": "SMTP_USER",
	"contact.smtp_pass": "SMTP_PASS",
	"contact.to_email":  "TO_EMAIL",
}

// Flags that override config keys when set on the command line.
var flagKeys = map[string]string{
	"port":      "server.port",
	"mode":      "server.mode",
	"templates": "server.templates_dir",
	"images":    "server.images_dir",
	"db":        "database.path",
	"log-level": "log.level",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.templates_dir", "templates")
	v.SetDefault("server.images_dir", "images")
	v.SetDefault("server.static_dir", "static")
	v.SetDefault("server.chart_size", 200)

	v.SetDefault("database.path", "portfolio.db")

	v.SetDefault("tracking.enabled", true)
	v.SetDefault("tracking.retention_months", 12)

	v.SetDefault("admin.username", "admin")

	v.SetDefault("contact.smtp_host", "smtp.gmail.com")
	v.SetDefault("contact.smtp_port", "587")
	v.SetDefault("contact.rate_per_minute", 3)
	v.SetDefault("contact.burst", 2)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stderr")
}

// LoadConfig resolves configuration from, lowest precedence first:
// defaults, config.yaml (or the file named by --config), environment, flags.
func LoadConfig(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	cfgFile := ""
	if flags != nil {
		if f := flags.Lookup("config"); f != nil {
			cfgFile = f.Value.String()
		}
	}
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix("PORTFOLIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		if err := v.BindEnv(key, "PORTFOLIO_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Contact.ToEmail == "" {
		cfg.Contact.ToEmail = cfg.Contact.SMTPUser
	}
	return &cfg, nil
}
