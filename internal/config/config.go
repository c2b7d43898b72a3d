package config

import "time"

// StorageConfig selects and parameterizes the storage backend.
type StorageConfig struct {
	Driver        string `mapstructure:"driver" yaml:"driver"` // sqlite or mongo
	SQLitePath    string `mapstructure:"sqlite_path" yaml:"sqlite_path"`
	MongoURI      string `mapstructure:"mongo_uri" yaml:"mongo_uri"`
	MongoDatabase string `mapstructure:"mongo_database" yaml:"mongo_database"`
}

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`

	// Rooms is the fixed set of valid destination rooms.
	Rooms []string `mapstructure:"rooms" yaml:"rooms"`

	// HistoryOrder picks the date-group comparator: "legacy" keeps the
	// historical string-concatenation ordering, "calendar" sorts
	// chronologically.
	HistoryOrder string `mapstructure:"history_order" yaml:"history_order"`

	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":5001",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
		Rooms: []string{
			"general",
			"tech",
			"finance",
			"crypto",
			"gaming",
			"programming",
			"testing",
		},
		HistoryOrder: "legacy",
		Storage: StorageConfig{
			Driver:        "sqlite",
			SQLitePath:    "roomcast.db",
			MongoURI:      "mongodb://localhost:27017",
			MongoDatabase: "roomcast",
		},
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if len(other.Rooms) > 0 {
		c.Rooms = other.Rooms
	}
	if other.HistoryOrder != "" {
		c.HistoryOrder = other.HistoryOrder
	}
	if other.Storage.Driver != "" {
		c.Storage.Driver = other.Storage.Driver
	}
	if other.Storage.SQLitePath != "" {
		c.Storage.SQLitePath = other.Storage.SQLitePath
	}
	if other.Storage.MongoURI != "" {
		c.Storage.MongoURI = other.Storage.MongoURI
	}
	if other.Storage.MongoDatabase != "" {
		c.Storage.MongoDatabase = other.Storage.MongoDatabase
	}
}
