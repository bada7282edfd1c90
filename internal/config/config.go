package config

import (
	"fmt"
	"net"
	neturl "net/url"
	"os"
	"strconv"
	"strings"

	"github.com/portfolio-space/core/internal/pkg/mail"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"
	defaultPort       = 8000
	defaultEnv        = "development"
	defaultDBHost     = "127.0.0.1"
	defaultDBPort     = 3306
	defaultDBUser     = "root"
	defaultDBPassword = "password"
	defaultDBName     = "folio"
	defaultDBCharset  = "utf8mb4"
	defaultRedisHost  = "localhost"
	defaultRedisPort  = 6379
	defaultSiteURL    = "http://localhost:3000"
)

// AppConfig holds runtime configuration loaded from YAML.
type AppConfig struct {
	Port           int            `yaml:"port"`
	Env            string         `yaml:"env"` // "development" | "production"
	SiteName       string         `yaml:"site_name"`
	SiteURL        string         `yaml:"site_url"`
	OwnerName      string         `yaml:"owner_name"`
	OwnerEmail     string         `yaml:"owner_email"`
	AllowedOrigins []string       `yaml:"allowed_origins"`
	JWTSecret      string         `yaml:"jwt_secret"`
	Database       DatabaseConfig `yaml:"database"`
	Redis          RedisConfig    `yaml:"redis"`
	Mail           mail.Config    `yaml:"mail"`
	Chatbot        ChatbotConfig  `yaml:"chatbot"`
	Notify         NotifyConfig   `yaml:"notify"`
}

type DatabaseConfig struct {
	DSN      string `yaml:"dsn"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	Charset  string `yaml:"charset"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// ChatbotConfig configures the AI assistant proxy.
type ChatbotConfig struct {
	Enable       bool   `yaml:"enable"`
	Provider     string `yaml:"provider"` // openai | anthropic | openai-compatible
	APIKey       string `yaml:"api_key"`
	Model        string `yaml:"model"`
	Endpoint     string `yaml:"endpoint"`
	SystemPrompt string `yaml:"system_prompt"`
	RateLimit    int    `yaml:"rate_limit"`  // requests per window, per IP
	RateWindow   int    `yaml:"rate_window"` // window length in seconds
	MaxTokens    int    `yaml:"max_tokens"`
}

// NotifyConfig tunes subscriber notification behavior.
type NotifyConfig struct {
	// RenotifyOnRepublish controls whether unpublishing and publishing a post
	// again triggers another notification round. Subscribers already recorded
	// in the log are skipped either way.
	RenotifyOnRepublish *bool `yaml:"renotify_on_republish"`
}

func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	if path == "" {
		path = DefaultConfigPath
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(content, cfg); err != nil {
		return nil, fmt.Errorf("parse config file %q: %w", path, err)
	}
	cfg.normalize()

	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d in %q, expected 1-65535", cfg.Port, path)
	}
	return cfg, nil
}

// Default returns the configuration used before any file or env overrides.
func Default() *AppConfig {
	return &AppConfig{
		Port:     defaultPort,
		Env:      defaultEnv,
		SiteName: "Portfolio",
		SiteURL:  defaultSiteURL,
		Database: DatabaseConfig{
			Host:     defaultDBHost,
			Port:     defaultDBPort,
			User:     defaultDBUser,
			Password: defaultDBPassword,
			Name:     defaultDBName,
			Charset:  defaultDBCharset,
		},
		Redis: RedisConfig{
			Host: defaultRedisHost,
			Port: defaultRedisPort,
		},
		Chatbot: ChatbotConfig{
			Provider:   "openai",
			Model:      "gpt-4o-mini",
			RateLimit:  20,
			RateWindow: 60,
			MaxTokens:  1024,
		},
	}
}

func (c *AppConfig) normalize() {
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	if c.Env == "" {
		c.Env = defaultEnv
	}
	c.SiteURL = strings.TrimRight(strings.TrimSpace(c.SiteURL), "/")
	if c.SiteURL == "" {
		c.SiteURL = defaultSiteURL
	}

	origins := make([]string, 0, len(c.AllowedOrigins))
	for _, origin := range c.AllowedOrigins {
		if v := strings.TrimSpace(origin); v != "" {
			origins = append(origins, v)
		}
	}
	c.AllowedOrigins = origins

	if v := os.Getenv("FOLIO_JWT_SECRET"); v != "" {
		c.JWTSecret = v
	}
	if v := os.Getenv("FOLIO_DSN"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("FOLIO_REDIS_URL"); v != "" {
		c.Redis.URL = v
	}
	if v := os.Getenv("FOLIO_CHATBOT_API_KEY"); v != "" {
		c.Chatbot.APIKey = v
	}

	if c.Chatbot.RateLimit <= 0 {
		c.Chatbot.RateLimit = 20
	}
	if c.Chatbot.RateWindow <= 0 {
		c.Chatbot.RateWindow = 60
	}
	if c.Chatbot.MaxTokens <= 0 {
		c.Chatbot.MaxTokens = 1024
	}
}

func (c *AppConfig) IsDev() bool {
	return strings.EqualFold(c.Env, defaultEnv)
}

// RenotifyOnRepublish defaults to true when unset.
func (c *AppConfig) RenotifyOnRepublish() bool {
	if c.Notify.RenotifyOnRepublish == nil {
		return true
	}
	return *c.Notify.RenotifyOnRepublish
}

// DSNValue builds the MySQL DSN from parts unless an explicit DSN is set.
func (c DatabaseConfig) DSNValue() string {
	if v := strings.TrimSpace(c.DSN); v != "" {
		return v
	}

	host := c.Host
	if host == "" {
		host = defaultDBHost
	}
	port := c.Port
	if port == 0 {
		port = defaultDBPort
	}
	charset := c.Charset
	if charset == "" {
		charset = defaultDBCharset
	}

	params := neturl.Values{}
	params.Set("charset", charset)
	params.Set("parseTime", "true")
	params.Set("loc", "Local")

	return fmt.Sprintf("%s:%s@tcp(%s)/%s?%s",
		c.User, c.Password, net.JoinHostPort(host, strconv.Itoa(port)), c.Name, params.Encode())
}

// URLValue builds the redis connection URL unless an explicit URL is set.
func (c RedisConfig) URLValue() string {
	if v := strings.TrimSpace(c.URL); v != "" {
		if strings.HasPrefix(v, "redis://") || strings.HasPrefix(v, "rediss://") {
			return v
		}
		return "redis://" + v
	}

	host := c.Host
	if host == "" {
		host = defaultRedisHost
	}
	port := c.Port
	if port == 0 {
		port = defaultRedisPort
	}

	u := &neturl.URL{
		Scheme: "redis",
		Host:   net.JoinHostPort(host, strconv.Itoa(port)),
		Path:   "/" + strconv.Itoa(c.DB),
	}
	if c.Password != "" {
		u.User = neturl.UserPassword("", c.Password)
	}
	return u.String()
}
