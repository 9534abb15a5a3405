package config

// ServerConfig contains server configuration
type ServerConfig struct {
	Port           int      `yaml:"port" validate:"gt=0,lte=65535"`
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

// FeedConfig locates the realtime feed and the static bundle.
type FeedConfig struct {
	Name         string `yaml:"name" validate:"required"`
	RealtimeURL  string `yaml:"realtimeURL" validate:"required"`
	StaticURL    string `yaml:"staticURL" validate:"omitempty,url"`
	StaticPath   string `yaml:"staticPath"`
	APIKeyEnv    string `yaml:"apiKeyEnv" validate:"required"`
	APIKeyHeader string `yaml:"apiKeyHeader" validate:"required"`
	TimeoutMS    int    `yaml:"timeoutMS" validate:"gte=0"`

	// APIKey is read from the APIKeyEnv environment variable, never from YAML.
	APIKey string `yaml:"-"`
}

// StopConfig selects the default stop by id or by station name.
type StopConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// ArrivalsConfig controls the board.
type ArrivalsConfig struct {
	Count                 int    `yaml:"count" validate:"gt=0,lte=50"`
	Timezone              string `yaml:"timezone" validate:"required"`
	ScheduleCutoffMinutes int    `yaml:"scheduleCutoffMinutes" validate:"gte=0"`
}

// StorageConfig enables the SQLite schedule store when SQLitePath is set.
type StorageConfig struct {
	SQLitePath string `yaml:"sqlitePath"`
}

// LoggingConfig configures zerolog output.
type LoggingConfig struct {
	Level      string `yaml:"level" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Console    bool   `yaml:"console"`
	JSON       bool   `yaml:"json"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"maxSizeMB" validate:"gte=0"`
	MaxBackups int    `yaml:"maxBackups" validate:"gte=0"`
	MaxAgeDays int    `yaml:"maxAgeDays" validate:"gte=0"`
}

// AppConfig is the root configuration structure
type AppConfig struct {
	Server   ServerConfig   `yaml:"server" validate:"required"`
	Feed     FeedConfig     `yaml:"feed" validate:"required"`
	Stop     StopConfig     `yaml:"stop"`
	Arrivals ArrivalsConfig `yaml:"arrivals" validate:"required"`
	Storage  StorageConfig  `yaml:"storage"`
	Logging  LoggingConfig  `yaml:"logging"`
}
