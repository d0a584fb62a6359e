// Package config loads server settings from an optional YAML file with
// compiled-in defaults.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// ServerSettings configures the HTTP listener.
type ServerSettings struct {
	ListenAddr string `mapstructure:"listen_addr"`
}

// DatabaseSettings configures the sqlite-backed store.
type DatabaseSettings struct {
	Path string `mapstructure:"path"`
}

// MapSettings configures the initial map view.
type MapSettings struct {
	CenterLat float64 `mapstructure:"center_lat"`
	CenterLng float64 `mapstructure:"center_lng"`
	Zoom      int     `mapstructure:"zoom"`
}

// LogSettings configures log output. An empty file keeps logs on stderr.
type LogSettings struct {
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// Settings is the full configuration document.
type Settings struct {
	Server   ServerSettings   `mapstructure:"server"`
	Database DatabaseSettings `mapstructure:"database"`
	Map      MapSettings      `mapstructure:"map"`
	Log      LogSettings      `mapstructure:"log"`
}

// Manager reads settings on demand. The filesystem is injectable so tests can
// run against an in-memory fs.
type Manager struct {
	fs   afero.Fs
	path string
}

// NewManager creates a manager reading from path on the given filesystem.
func NewManager(fs afero.Fs, path string) *Manager {
	return &Manager{fs: fs, path: path}
}

// Load reads the settings file, applying defaults for anything unset. A
// missing file yields pure defaults.
func (m *Manager) Load() (*Settings, error) {
	v := viper.New()
	v.SetFs(m.fs)
	v.SetConfigFile(m.path)

	v.SetDefault("server.listen_addr", ":8080")
	v.SetDefault("database.path", "data/pulsemap.db")
	v.SetDefault("map.center_lat", 55.751244)
	v.SetDefault("map.center_lng", 37.618423)
	v.SetDefault("map.zoom", 12)
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 20)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)

	if err := v.ReadInConfig(); err != nil {
		if !os.IsNotExist(err) {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config %q: %w", m.path, err)
			}
		}
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("parse config %q: %w", m.path, err)
	}
	return &settings, nil
}
