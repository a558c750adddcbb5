package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel int `yaml:"log_level"`

	Server    ServerConfig    `yaml:"server"`
	Generator GeneratorConfig `yaml:"generator"`
	Projects  ProjectsConfig  `yaml:"projects"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type GeneratorConfig struct {
	DefaultGenre string  `yaml:"default_genre"`
	DefaultKey   string  `yaml:"default_key"`
	DefaultTempo float64 `yaml:"default_tempo"`
}

type ProjectsConfig struct {
	// Directory where project files are stored
	Dir string `yaml:"dir"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config *Config

	// Unmarshal the YAML data into the struct
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, err
	}

	// Set defaults if not provided
	if config.Server.Port == "" {
		config.Server.Port = "8080"
	}

	if config.Generator.DefaultGenre == "" {
		config.Generator.DefaultGenre = "pop"
	}

	if config.Generator.DefaultKey == "" {
		config.Generator.DefaultKey = "C"
	}

	if config.Generator.DefaultTempo == 0 {
		config.Generator.DefaultTempo = 120
	}

	if config.Projects.Dir == "" {
		config.Projects.Dir = "projects"
	}

	return config, nil
}
