package config

import (
	"flag"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env         string          `yaml:"env" env:"ENV" env-default:"local"`
	DatabaseUrl string          `yaml:"database_url" env:"DATABASE_URL" env-required:"true"`
	Server      ServerConfig    `yaml:"rest"`
	JWT         JWTSecret       `yaml:"jwt" env-required:"true"`
	App         AppConfig       `yaml:"app"`
	SMTP        SMTPConfig      `yaml:"smtp"`
	Scheduler   SchedulerConfig `yaml:"scheduler"`
}

type ServerConfig struct {
	Port           string   `yaml:"port" env-default:"8080"`
	AllowedOrigins []string `yaml:"allowed_origins" env-default:"http://localhost:3000"`
}

type JWTSecret struct {
	Secret string `yaml:"secret" env:"JWT_SECRET" env-required:"true"`
}

// AppConfig carries the public base URL distribution links are built on.
type AppConfig struct {
	BaseURL string `yaml:"base_url" env-default:"http://localhost:8080"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port" env-default:"587"`
	Username string `yaml:"username"`
	Password string `yaml:"password" env:"SMTP_PASSWORD"`
	From     string `yaml:"from"`
}

type SchedulerConfig struct {
	IntervalSeconds int `yaml:"interval_seconds" env-default:"60"`
}

func MustLoad() *Config {
	path := fetchConfigPath()
	if path == "" {
		panic("config file not found in path")
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		panic("config file not found in path")
	}

	var config Config
	if err := cleanenv.ReadConfig(path, &config); err != nil {
		panic(err)
	}
	return &config
}

func fetchConfigPath() string {
	var res string
	flag.StringVar(&res, "config", "./config/local.yaml", "config path")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}
	return res
}
