package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

const (
	appDirName    = "portfolio-tracker"
	DefaultDBName = "portfolio.db"

	envDataDir = "PORTFOLIO_DATA_DIR"
	envDBPath  = "PORTFOLIO_DB_PATH"
)

// UserConfig is the optional JSON file under the user config directory.
type UserConfig struct {
	DBName               string            `json:"db_name"`
	DataDir              string            `json:"data_dir"`
	QuoteCacheTTLSeconds int               `json:"quote_cache_ttl_seconds,omitempty"`
	CryptoIDs            map[string]string `json:"crypto_ids,omitempty"`
}

// QuoteCacheTTL returns the configured quote cache TTL, or zero when unset.
func (c UserConfig) QuoteCacheTTL() time.Duration {
	if c.QuoteCacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.QuoteCacheTTLSeconds) * time.Second
}

var runtimeDataDir string
var runtimePort = 8000

func IsWindows() bool {
	return runtime.GOOS == "windows"
}

// SetRuntimeDataDir overrides every other data dir source (used for -data-dir).
func SetRuntimeDataDir(dir string) {
	runtimeDataDir = dir
}

func SetRuntimePort(port int) {
	if port > 0 {
		runtimePort = port
	}
}

func GetRuntimePort() int {
	return runtimePort
}

func appConfigDir() (string, error) {
	if IsWindows() {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, appDirName), nil
		}
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", appDirName), nil
	}
	return filepath.Join(configDir, appDirName), nil
}

// ConfigPath returns the location of the user config file.
func ConfigPath() (string, error) {
	dir, err := appConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LoadUserConfig reads the user config. A missing or malformed file yields
// defaults.
func LoadUserConfig() UserConfig {
	defaults := UserConfig{DBName: DefaultDBName}
	path, err := ConfigPath()
	if err != nil {
		return defaults
	}
	cfg, err := readUserConfig(path)
	if err != nil {
		return defaults
	}
	return cfg
}

func readUserConfig(path string) (UserConfig, error) {
	cfg := UserConfig{DBName: DefaultDBName}
	file, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return UserConfig{DBName: DefaultDBName}, err
	}
	cfg.DBName = strings.TrimSpace(cfg.DBName)
	if cfg.DBName == "" {
		cfg.DBName = DefaultDBName
	}
	return cfg, nil
}

// SaveUserConfig writes cfg to ConfigPath.
func SaveUserConfig(cfg UserConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// GetDataDir resolves the data directory (runtime flag > env > config file >
// app config dir) and makes sure it exists.
func GetDataDir() (string, error) {
	dir := runtimeDataDir
	if dir == "" {
		dir = os.Getenv(envDataDir)
	}
	if dir == "" {
		dir = LoadUserConfig().DataDir
	}
	if dir == "" {
		var err error
		if dir, err = appConfigDir(); err != nil {
			return "", err
		}
	}
	if dir == "" {
		return "", errors.New("cannot determine data directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// GetDBPath resolves the SQLite file. PORTFOLIO_DB_PATH wins over everything
// except an explicit runtime data dir.
func GetDBPath() (string, error) {
	cfg := LoadUserConfig()
	if runtimeDataDir == "" {
		if envPath := os.Getenv(envDBPath); envPath != "" {
			return envPath, nil
		}
	}
	dataDir, err := GetDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, cfg.DBName), nil
}

// LogDir is where the daily log files live.
func LogDir() (string, error) {
	dataDir, err := GetDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "logs"), nil
}
