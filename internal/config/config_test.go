// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// noEnv points BNMC_ENV to a file that does not exist, so that a .env file in
// the working directory does not change the results.
func noEnv(t *testing.T) {
	t.Setenv("BNMC_ENV", filepath.Join(t.TempDir(), "missing.env"))
}

func TestDefault(t *testing.T) {
	noEnv(t)
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestLoadFile(t *testing.T) {
	noEnv(t)
	path := filepath.Join(t.TempDir(), "bnmc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: 4\nstrategy: dataflow\nmetrics_addr: localhost:9090\n"), 0600))
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, c.Workers)
	assert.Equal(t, "dataflow", c.Strategy)
	assert.Equal(t, "localhost:9090", c.MetricsAddr)
	assert.Equal(t, "info", c.LogLevel)
}

func TestEnvironment(t *testing.T) {
	noEnv(t)
	path := filepath.Join(t.TempDir(), "bnmc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: 4\n"), 0600))
	t.Setenv("BNMC_WORKERS", "2")
	t.Setenv("BNMC_STRATEGY", "levelsync")
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Workers)
	assert.Equal(t, "levelsync", c.Strategy)
}

func TestDotEnv(t *testing.T) {
	env := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(env, []byte("BNMC_STORE_PATH=/tmp/bnmc-store\n"), 0600))
	t.Setenv("BNMC_ENV", env)
	t.Setenv("BNMC_STORE_PATH", "")
	os.Unsetenv("BNMC_STORE_PATH")
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/bnmc-store", c.StorePath)
}

func TestInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"strategy", map[string]string{"BNMC_STRATEGY": "random"}},
		{"workers", map[string]string{"BNMC_WORKERS": "-1"}},
		{"workers not a number", map[string]string{"BNMC_WORKERS": "many"}},
		{"log level", map[string]string{"BNMC_LOG_LEVEL": "verbose"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			noEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}
