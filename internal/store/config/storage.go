package config

// Storage backends selectable at startup.
const (
	BackendPostgres = "postgres"
	BackendText     = "text"
	BackendSnapshot = "snapshot"
)

// StorageConfig selects the persistence backend and its file locations.
type StorageConfig struct {
	Backend      string `yaml:"backend" env:"STORE_STORAGE_BACKEND" env-default:"text"`
	DataDir      string `yaml:"data_dir" env:"STORE_STORAGE_DATA_DIR" env-default:"data"`
	SnapshotFile string `yaml:"snapshot_file" env:"STORE_STORAGE_SNAPSHOT_FILE" env-default:"store.gob"`
}

// IsValidBackend reports whether the configured backend name is known.
func (s *StorageConfig) IsValidBackend() bool {
	switch s.Backend {
	case BackendPostgres, BackendText, BackendSnapshot:
		return true
	}
	return false
}
