package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/JoeShih716/go-bank-ledger/internal/app/core/usecase"
	"github.com/JoeShih716/go-bank-ledger/pkg/logger"
	"github.com/JoeShih716/go-bank-ledger/pkg/mysql"
)

// StorageDriver 儲存層實作
type StorageDriver string

const (
	StorageMemory StorageDriver = "memory"
	StorageMySQL  StorageDriver = "mysql"
)

type Config struct {
	Log     logger.Config         `yaml:"log"`
	Storage StorageConfig         `yaml:"storage"`
	MySQL   mysql.Config          `yaml:"mysql"`
	GRPC    GRPCConfig            `yaml:"grpc"`
	Monitor usecase.MonitorConfig `yaml:"monitor"`
}

type StorageConfig struct {
	Driver StorageDriver `yaml:"driver"`
}

type GRPCConfig struct {
	Addr string `yaml:"addr"`
}

// loadConfig 讀取 yaml 並補全預設值
func loadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg.withDefaults()
}

func (c Config) withDefaults() (Config, error) {
	if c.Storage.Driver == "" {
		c.Storage.Driver = StorageMemory
	}
	switch c.Storage.Driver {
	case StorageMemory, StorageMySQL:
	default:
		return Config{}, fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.GRPC.Addr == "" {
		c.GRPC.Addr = ":50051"
	}
	if c.Monitor.Workers <= 0 {
		c.Monitor.Workers = usecase.DefaultMonitorWorkers
	}
	if c.Monitor.QueueSize <= 0 {
		c.Monitor.QueueSize = usecase.DefaultMonitorQueueSize
	}
	c.MySQL = c.MySQL.WithDefaults()
	return c, nil
}
