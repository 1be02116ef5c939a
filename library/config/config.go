package config

import (
	"os"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/Astemirdum/library-circulation/library/internal/mirror"
	"github.com/Astemirdum/library-circulation/pkg/auth"
	cb "github.com/Astemirdum/library-circulation/pkg/circuit_breaker"
	"github.com/Astemirdum/library-circulation/pkg/kafka"
	"github.com/Astemirdum/library-circulation/pkg/logger"
	"github.com/Astemirdum/library-circulation/pkg/postgres"
)

// FileEnv names the optional YAML config file. Environment variables override its values.
const FileEnv = "LIBRARY_CONFIG_FILE"

type HTTPServer struct {
	Host         string        `yaml:"host" envconfig:"LIBRARY_HTTP_HOST"`
	Port         string        `yaml:"port" envconfig:"LIBRARY_HTTP_PORT"`
	ReadTimeout  time.Duration `yaml:"readTimeout" envconfig:"HTTP_READ"`
	WriteTimeout time.Duration `yaml:"writeTimeout" envconfig:"HTTP_WRITE"`
}

type Search struct {
	Mode    mirror.Mode          `yaml:"mode" envconfig:"SEARCH_MODE"`
	Algolia mirror.AlgoliaConfig `yaml:"algolia"`
	Breaker cb.Config            `yaml:"breaker"`
}

type Config struct {
	Server   HTTPServer   `yaml:"server"`
	Database postgres.DB  `yaml:"db"`
	Kafka    kafka.Config `yaml:"kafka"`
	Auth     auth.Config  `yaml:"auth"`
	Search   Search       `yaml:"search"`
	Log      logger.Log   `yaml:"log"`
}

func defaults() Config {
	return Config{
		Server: HTTPServer{
			Host:         "0.0.0.0",
			Port:         "8060",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Database: postgres.DB{
			Host:     "localhost",
			Port:     "5432",
			Username: "postgres",
			NameDB:   "library",
			SSLMode:  "disable",
			MaxConns: 10,
			MinConns: 1,
		},
		Kafka: kafka.Config{
			Addrs:         []string{"localhost:9092"},
			BookTopic:     kafka.BookTopic,
			ConsumerGroup: kafka.SearchConsumerGroup,
		},
		Auth:   auth.Config{TokenTTL: 12 * time.Hour},
		Search: Search{Mode: mirror.ModeOff},
		Log:    logger.Log{LogLevel: zapcore.InfoLevel},
	}
}

var (
	once   sync.Once
	cfg    *Config
	cfgErr error
)

// NewConfig builds the config once: defaults, then options, then the YAML file, then the environment.
func NewConfig(ops ...Option) (*Config, error) {
	once.Do(func() {
		cfg, cfgErr = load(ops...)
	})
	return cfg, cfgErr
}

func load(ops ...Option) (*Config, error) {
	config := defaults()
	for _, op := range ops {
		op(&config)
	}
	if err := readFile(os.Getenv(FileEnv), &config); err != nil {
		return nil, err
	}
	if err := envconfig.Process("", &config); err != nil {
		return nil, errors.Wrap(err, "envconfig")
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func readFile(path string, config *Config) error {
	if path == "" {
		return nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read config file")
	}
	return errors.Wrap(yaml.Unmarshal(b, config), "parse config file")
}

func (c *Config) validate() error {
	switch c.Search.Mode {
	case mirror.ModeOff, mirror.ModeDirect, mirror.ModeKafka:
	default:
		return errors.Errorf("unknown search mode %q", c.Search.Mode)
	}
	if c.Search.Mode == mirror.ModeDirect && !c.Search.Algolia.Enabled() {
		return errors.New("search mode direct needs ALGOLIA_APP_ID, ALGOLIA_ADMIN_KEY and ALGOLIA_INDEX")
	}
	return nil
}

// String renders the config without secrets.
func (c Config) String() string {
	c.Database.Password = mask(c.Database.Password)
	c.Auth.Secret = mask(c.Auth.Secret)
	c.Search.Algolia.AdminKey = mask(c.Search.Algolia.AdminKey)
	js, _ := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(c, "", "  ")
	return string(js)
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "***"
}
