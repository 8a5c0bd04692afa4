package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/ringside/simulator/internal/engine"
)

// FileName is the config file looked up in the config directory.
const FileName = "ringside.cfg.json"

// MemoryConfig holds in-memory/JSON storage backend settings
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// SQLiteConfig holds SQLite storage backend settings
type SQLiteConfig struct {
	// Dir receives the periodic database dumps.
	Dir          string        `json:"dir" mapstructure:"dir"`
	DumpInterval time.Duration `json:"dumpInterval" mapstructure:"dumpInterval"`
}

// StorageConfig selects and configures the replay storage backend.
type StorageConfig struct {
	Type   string       `json:"type" mapstructure:"type"`
	Memory MemoryConfig `json:"memory" mapstructure:"memory"`
	SQLite SQLiteConfig `json:"sqlite" mapstructure:"sqlite"`
}

// OTelConfig holds OpenTelemetry settings
type OTelConfig struct {
	Enabled      bool          `json:"enabled" mapstructure:"enabled"`
	ServiceName  string        `json:"serviceName" mapstructure:"serviceName"`
	BatchTimeout time.Duration `json:"batchTimeout" mapstructure:"batchTimeout"`
	Endpoint     string        `json:"endpoint" mapstructure:"endpoint"`
	Insecure     bool          `json:"insecure" mapstructure:"insecure"`
}

// ServerConfig holds the spectator HTTP server settings.
type ServerConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Address string `json:"address" mapstructure:"address"`
}

// SimConfig holds the runner settings and the full engine table.
type SimConfig struct {
	// Seed feeds the match RNG. Zero picks a seed from the clock.
	Seed         uint64 `json:"seed" mapstructure:"seed"`
	TickRate     int    `json:"tickRate" mapstructure:"tickRate"`
	Realtime     bool   `json:"realtime" mapstructure:"realtime"`
	CaptureEvery uint   `json:"captureEvery" mapstructure:"captureEvery"`
	Matches      int    `json:"matches" mapstructure:"matches"`

	Engine engine.Config `json:"engine" mapstructure:"engine"`
}

// Validate checks the runner settings and the engine tables.
func (c SimConfig) Validate() error {
	if c.TickRate <= 0 {
		return fmt.Errorf("sim.tickRate must be positive, got %d", c.TickRate)
	}
	if c.CaptureEvery == 0 {
		return fmt.Errorf("sim.captureEvery must be at least 1")
	}
	if err := c.Engine.Validate(); err != nil {
		return fmt.Errorf("sim.engine: %w", err)
	}
	if err := c.Engine.Match.Validate(); err != nil {
		return fmt.Errorf("sim.engine.match: %w", err)
	}
	if dt := c.Delta(); dt > c.Engine.MaxDelta {
		return fmt.Errorf("sim.tickRate %d gives dt %.4fs above maxDelta %.4fs", c.TickRate, dt, c.Engine.MaxDelta)
	}
	return nil
}

// Delta returns the fixed tick length in seconds.
func (c SimConfig) Delta() float64 {
	return 1 / float64(c.TickRate)
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	// Set default values
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("defaultTag", "Exhibition")
	viper.SetDefault("logsDir", "./ringside-logs")

	viper.SetDefault("api.serverUrl", "http://localhost:5000")
	viper.SetDefault("api.apiKey", "")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "ringside")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "ringside-metrics")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.memory.outputDir", "./replays")
	viper.SetDefault("storage.memory.compressOutput", true)
	viper.SetDefault("storage.sqlite.dir", "./replays")
	viper.SetDefault("storage.sqlite.dumpInterval", "3m")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "ringside")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)

	viper.SetDefault("server.enabled", false)
	viper.SetDefault("server.address", ":8080")

	viper.SetDefault("sim.seed", 0)
	viper.SetDefault("sim.tickRate", 60)
	viper.SetDefault("sim.realtime", false)
	viper.SetDefault("sim.captureEvery", 6)
	viper.SetDefault("sim.matches", 1)

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	return nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetStorageConfig returns the storage backend configuration.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		Memory: MemoryConfig{
			OutputDir:      viper.GetString("storage.memory.outputDir"),
			CompressOutput: viper.GetBool("storage.memory.compressOutput"),
		},
		SQLite: SQLiteConfig{
			Dir:          viper.GetString("storage.sqlite.dir"),
			DumpInterval: viper.GetDuration("storage.sqlite.dumpInterval"),
		},
	}
}

// GetOTelConfig returns the OpenTelemetry configuration.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}

// GetServerConfig returns the spectator server configuration.
func GetServerConfig() ServerConfig {
	return ServerConfig{
		Enabled: viper.GetBool("server.enabled"),
		Address: viper.GetString("server.address"),
	}
}

// GetSimConfig returns the runner settings with the engine table. Engine
// keys absent from the file keep their built-in defaults.
func GetSimConfig() (SimConfig, error) {
	cfg := SimConfig{
		Seed:         viper.GetUint64("sim.seed"),
		TickRate:     viper.GetInt("sim.tickRate"),
		Realtime:     viper.GetBool("sim.realtime"),
		CaptureEvery: viper.GetUint("sim.captureEvery"),
		Matches:      viper.GetInt("sim.matches"),
		Engine:       engine.DefaultConfig(),
	}
	if viper.IsSet("sim.engine") {
		if err := viper.UnmarshalKey("sim.engine", &cfg.Engine); err != nil {
			return cfg, fmt.Errorf("decode sim.engine: %w", err)
		}
	}
	return cfg, nil
}
