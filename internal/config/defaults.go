package config

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Path:       "~/.config/eventhubx",
			SQLiteFile: "eventhubx.db",
			PrefsFile:  "preferences.json",
		},
		API: APIConfig{
			BaseURL:        "http://localhost:8090",
			TimeoutSeconds: 10,
		},
		Sync: SyncConfig{
			PollDelaySeconds: 5,
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8643,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
		Display: DisplayConfig{
			PageSize: 25,
		},
	}
}
