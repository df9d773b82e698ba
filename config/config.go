package config

import (
	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"
	"os"
)

type (
	WatchLikeMeConfig struct {
		Server   ServerConfig   `yaml:"server"`
		Database DatabaseConfig `yaml:"database"`
		Auth     AuthConfig     `yaml:"auth"`
		YouTube  YouTubeConfig  `yaml:"youtube"`
	}

	ServerConfig struct {
		Host string `yaml:"host"`
		Port uint   `yaml:"port"`
		// PublicOrigin is where the frontend lives. OAuth logins redirect
		// back here once the session cookies are set.
		PublicOrigin string `yaml:"publicOrigin"`
	}

	AuthConfig struct {
		EnableGoogle      bool   `yaml:"enableGoogle"`
		GoogleClientId    string `yaml:"googleClientId"`
		GoogleRedirectURL string `yaml:"googleRedirectUrl"`
		SessionHours      uint   `yaml:"sessionHours"`
		LoginRateLimit    uint   `yaml:"loginRateLimit"`
	}

	DatabaseConfig struct {
		Host      string `yaml:"host"`
		User      string `yaml:"user"`
		Database  string `yaml:"database"`
		Port      uint   `yaml:"port"`
		LocalFile string `yaml:"localFile"`
	}

	YouTubeConfig struct {
		BaseURL string `yaml:"baseUrl"`
	}
)

func Load(fileName string) *WatchLikeMeConfig {
	config := defaultConfig()

	if configData, err := os.ReadFile(fileName); err != nil {
		log.Warn("Failed to load configuration file.", "path", fileName)
		data, err := yaml.Marshal(&config)
		err = os.WriteFile(fileName, data, 0755)
		if err != nil {
			log.Error("Failed to write default configuration file.", "path", fileName)
		}
	} else if err := yaml.Unmarshal(configData, &config); err != nil {
		log.Error("Failed to parse configuration file.", "error", err.Error())
	}

	return config
}

func defaultConfig() *WatchLikeMeConfig {
	return &WatchLikeMeConfig{
		Server: ServerConfig{
			Host:         "127.0.0.1",
			Port:         4000,
			PublicOrigin: "http://localhost:3000",
		},
		Database: DatabaseConfig{
			Host:      "127.0.0.1",
			User:      "watchlikeme",
			Database:  "watchlikeme",
			Port:      5432,
			LocalFile: "./watchlikeme.db",
		},
		Auth: AuthConfig{
			EnableGoogle:      false,
			GoogleClientId:    "",
			GoogleRedirectURL: "http://localhost:4000/auth/google/callback",
			SessionHours:      720,
			LoginRateLimit:    10,
		},
		YouTube: YouTubeConfig{
			BaseURL: "https://www.googleapis.com/youtube/v3",
		},
	}
}
