package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoeShih716/go-bank-ledger/internal/app/core/usecase"
	"github.com/JoeShih716/go-bank-ledger/pkg/logger"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(writeConfig(t, "log:\n  environment: development\n"))
	require.NoError(t, err)

	assert.Equal(t, logger.EnvironmentDevelopment, cfg.Log.Environment)
	assert.Equal(t, StorageMemory, cfg.Storage.Driver)
	assert.Equal(t, ":50051", cfg.GRPC.Addr)
	assert.Equal(t, usecase.DefaultMonitorWorkers, cfg.Monitor.Workers)
	assert.Equal(t, usecase.DefaultMonitorQueueSize, cfg.Monitor.QueueSize)
	assert.Equal(t, 3306, cfg.MySQL.Port)
}

func TestLoadConfigMySQL(t *testing.T) {
	cfg, err := loadConfig(writeConfig(t, `
storage:
  driver: mysql
mysql:
  host: db
  user: bank
  db_name: ledger
  conn_max_lifetime: 5m
grpc:
  addr: ":6000"
monitor:
  workers: 2
  queue_size: 16
`))
	require.NoError(t, err)
	assert.Equal(t, StorageMySQL, cfg.Storage.Driver)
	assert.Equal(t, "db", cfg.MySQL.Host)
	assert.Equal(t, 5*time.Minute, cfg.MySQL.ConnMaxLifetime)
	assert.Equal(t, ":6000", cfg.GRPC.Addr)
	assert.Equal(t, 2, cfg.Monitor.Workers)
	assert.Equal(t, 16, cfg.Monitor.QueueSize)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = loadConfig(writeConfig(t, "storage:\n  driver: redis\n"))
	assert.ErrorContains(t, err, "unknown storage driver")

	_, err = loadConfig(writeConfig(t, "grpc: [\n"))
	assert.Error(t, err)
}
