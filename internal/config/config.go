// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

// Package config loads the settings of the bnmc command. Settings are read, in
// order of increasing priority, from the defaults, from an optional YAML file,
// and from the environment (a .env file is loaded first if it exists). Every
// environment variable has the prefix BNMC_, such as BNMC_WORKERS.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the settings of the command.
type Config struct {
	Workers     int    `yaml:"workers" validate:"gte=0,lte=128"`
	Buffer      int    `yaml:"buffer" validate:"gte=0,lte=128"`
	Strategy    string `yaml:"strategy" validate:"oneof=sequential composition levelsync dataflow"`
	LogLevel    string `yaml:"log_level" validate:"oneof=debug info warn error"`
	MetricsAddr string `yaml:"metrics_addr" validate:"omitempty,hostname_port"`
	StorePath   string `yaml:"store_path"`
}

var validate = validator.New()

// Default returns the default settings.
func Default() *Config {
	return &Config{
		Strategy: "sequential",
		LogLevel: "info",
	}
}

// Load returns the settings read from the YAML file at path (ignored if path
// is empty) and from the environment.
func Load(path string) (*Config, error) {
	c := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	envFile := os.Getenv("BNMC_ENV")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}
	if err := c.fromEnv(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) fromEnv() error {
	for _, e := range []struct {
		name string
		n    *int
	}{
		{"BNMC_WORKERS", &c.Workers},
		{"BNMC_BUFFER", &c.Buffer},
	} {
		if s, ok := os.LookupEnv(e.name); ok {
			v, err := strconv.Atoi(s)
			if err != nil {
				return fmt.Errorf("%s: integer expected, found %q", e.name, s)
			}
			*e.n = v
		}
	}
	for _, e := range []struct {
		name string
		s    *string
	}{
		{"BNMC_STRATEGY", &c.Strategy},
		{"BNMC_LOG_LEVEL", &c.LogLevel},
		{"BNMC_METRICS_ADDR", &c.MetricsAddr},
		{"BNMC_STORE_PATH", &c.StorePath},
	} {
		if s, ok := os.LookupEnv(e.name); ok {
			*e.s = s
		}
	}
	return nil
}

// Validate checks that the settings are in range.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
