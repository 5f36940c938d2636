package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env                 string
	Port                string
	DatabaseURL         string
	RedisURL            string
	FrontendURLEndsWith string
	DevPassword         string
	AllowCrossSiteDev   bool
	SendinblueAPIKey    string // SENDINBLUE_API_KEY for invite emails (Brevo)
	MailFrom            string
	InviteBaseURL       string // invite links are InviteBaseURL + "/invite?token=..."
	LogLevel            string
	PresenceTTL         time.Duration
	TypingTTL           time.Duration
	DefaultMaxMembers   int
	HealthAdminKey      string
}

const (
	defaultPort          = "8080"
	defaultInviteBaseURL = "https://codm.social"
	defaultMailFrom      = "noreply@codm.social"
)

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("PORT", defaultPort)
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("PRESENCE_TTL", "60s")
	v.SetDefault("TYPING_TTL", "5s")
	v.SetDefault("DEFAULT_MAX_MEMBERS", 50)
	v.SetDefault("MAIL_FROM", defaultMailFrom)

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	maxMembers := v.GetInt("DEFAULT_MAX_MEMBERS")
	if maxMembers <= 0 {
		maxMembers = 50
	}
	return &Config{
		Env:                 v.GetString("APP_ENV"),
		Port:                v.GetString("PORT"),
		DatabaseURL:         v.GetString("DATABASE_URL"),
		RedisURL:            v.GetString("REDIS_URL"),
		FrontendURLEndsWith: v.GetString("FRONTEND_URL_ENDS_WITH"),
		DevPassword:         v.GetString("DEV_PASSWORD"),
		AllowCrossSiteDev:   strings.EqualFold(v.GetString("ALLOW_CROSS_SITE_DEV"), "true"),
		SendinblueAPIKey:    v.GetString("SENDINBLUE_API_KEY"),
		MailFrom:            v.GetString("MAIL_FROM"),
		InviteBaseURL:       inviteBaseURL(v.GetString("INVITE_BASE_URL")),
		LogLevel:            v.GetString("LOG_LEVEL"),
		PresenceTTL:         positive(v.GetDuration("PRESENCE_TTL"), 60*time.Second),
		TypingTTL:           positive(v.GetDuration("TYPING_TTL"), 5*time.Second),
		DefaultMaxMembers:   maxMembers,
		HealthAdminKey:      v.GetString("HEALTH_ADMIN_KEY"),
	}
}

// IsProduction reports APP_ENV == production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func inviteBaseURL(s string) string {
	s = strings.TrimRight(strings.TrimSpace(s), "/")
	if s == "" {
		return defaultInviteBaseURL
	}
	return s
}

func positive(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}
