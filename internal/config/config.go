package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"Server"`
	Storage StorageConfig `mapstructure:"Storage"`
}

type ServerConfig struct {
	Port    string `mapstructure:"Port"`
	BaseURL string `mapstructure:"BaseURL"`
	LogFile string `mapstructure:"LogFile"`
}

// StorageConfig locates everything the app persists: the SQLite file and
// the upload directory both live under DataDir so a backup archive can be
// restored by extracting straight onto it.
type StorageConfig struct {
	DataDir  string `mapstructure:"DataDir"`
	VideoDir string `mapstructure:"VideoDir"`
}

func NewConfig(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)

	v.BindEnv("Server.Port", "HTTP_PORT")
	v.BindEnv("Server.BaseURL", "BASE_URL")
	v.BindEnv("Server.LogFile", "LOG_FILE")
	v.BindEnv("Storage.DataDir", "DATA_DIR")
	v.BindEnv("Storage.VideoDir", "VIDEO_DIR")

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("Warning: using only environment variables: %v\n", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = v.GetString("DATA_DIR")
	}
	if cfg.Server.Port == "" {
		cfg.Server.Port = v.GetString("HTTP_PORT")
	}

	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = "./data"
	}
	if cfg.Storage.VideoDir == "" {
		cfg.Storage.VideoDir = "/tmp/videos"
	}
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}

	return &cfg, nil
}

// DatabasePath is the SQLite file under the data dir. The backup archiver
// stores it at the archive root under this same name.
func (c *StorageConfig) DatabasePath() string {
	return filepath.Join(c.DataDir, "wellatlas.db")
}

// UploadDir holds attachment files addressed by generated filename.
func (c *StorageConfig) UploadDir() string {
	return filepath.Join(c.DataDir, "uploads")
}
