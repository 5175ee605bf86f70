package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	AppName               = "tasklist"
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "todo.db"
	DefaultLogName        = "tasklist.log"
	DefaultAPIURL         = "http://127.0.0.1:8000/api"
	DefaultServerAddr     = "127.0.0.1:8000"
)

// Duration is a time.Duration written as a string such as "3s".
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

type Keymap struct {
	Quit    string `toml:"quit"`
	Add     string `toml:"add"`
	Up      string `toml:"up"`
	Down    string `toml:"down"`
	Toggle  string `toml:"toggle"`
	Delete  string `toml:"delete"`
	Edit    string `toml:"edit"`
	Confirm string `toml:"confirm"`
	Cancel  string `toml:"cancel"`
	Reload  string `toml:"reload"`
	Dismiss string `toml:"dismiss"`
}

type ServerConfig struct {
	Addr            string   `toml:"addr"`
	DBPath          string   `toml:"db_path"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
}

type Config struct {
	APIURL          string       `toml:"api_url"`
	RequestTimeout  Duration     `toml:"request_timeout"`
	NotificationTTL Duration     `toml:"notification_ttl"`
	LogFile         string       `toml:"log_file"`
	LogLevel        string       `toml:"log_level"`
	LogFormat       string       `toml:"log_format"`
	Server          ServerConfig `toml:"server"`
	Keys            Keymap       `toml:"keys"`
}

// ResolveConfigPath picks the config file: $TASKLIST_CONFIG, then
// $XDG_CONFIG_HOME/tasklist, then ~/.config/tasklist.
func ResolveConfigPath() string {
	if p := os.Getenv("TASKLIST_CONFIG"); p != "" {
		return p
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName, DefaultConfigFileName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultConfigFileName
	}
	return filepath.Join(home, ".config", AppName, DefaultConfigFileName)
}

// LoadOrCreate reads the config at path, writing defaults there first if
// the file does not exist. Environment overrides are applied last.
func LoadOrCreate(path string) (Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		applyEnv(&cfg)
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	fillDefaults(&cfg)
	applyEnv(&cfg)
	return cfg, nil
}

// ResolvePath makes a relative data path (log file, database) relative to
// the directory holding the config file.
func ResolvePath(configPath, p string) string {
	if p == "" || filepath.IsAbs(p) || strings.HasPrefix(p, "file:") {
		return p
	}
	return filepath.Join(filepath.Dir(configPath), p)
}

func write(path string, cfg Config) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("TASKLIST_API_URL"); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv("TASKLIST_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("TASKLIST_SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("TASKLIST_DB_PATH"); v != "" {
		cfg.Server.DBPath = v
	}
}

// fillDefaults restores values an older or hand-edited file left empty.
func fillDefaults(cfg *Config) {
	def := Default()
	if cfg.APIURL == "" {
		cfg.APIURL = def.APIURL
	}
	if cfg.NotificationTTL.Duration <= 0 {
		cfg.NotificationTTL = def.NotificationTTL
	}
	if cfg.LogFile == "" {
		cfg.LogFile = def.LogFile
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = def.LogLevel
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = def.Server.Addr
	}
	if cfg.Server.DBPath == "" {
		cfg.Server.DBPath = def.Server.DBPath
	}
	if cfg.Server.ShutdownTimeout.Duration <= 0 {
		cfg.Server.ShutdownTimeout = def.Server.ShutdownTimeout
	}
	k, dk := &cfg.Keys, def.Keys
	for _, f := range []struct {
		v   *string
		def string
	}{
		{&k.Quit, dk.Quit}, {&k.Add, dk.Add}, {&k.Up, dk.Up}, {&k.Down, dk.Down},
		{&k.Toggle, dk.Toggle}, {&k.Delete, dk.Delete}, {&k.Edit, dk.Edit},
		{&k.Confirm, dk.Confirm}, {&k.Cancel, dk.Cancel}, {&k.Reload, dk.Reload},
		{&k.Dismiss, dk.Dismiss},
	} {
		if *f.v == "" {
			*f.v = f.def
		}
	}
}

func Default() Config {
	return Config{
		APIURL:          DefaultAPIURL,
		RequestTimeout:  Duration{10 * time.Second},
		NotificationTTL: Duration{3 * time.Second},
		LogFile:         DefaultLogName,
		LogLevel:        "info",
		LogFormat:       "text",
		Server: ServerConfig{
			Addr:            DefaultServerAddr,
			DBPath:          DefaultDBName,
			ShutdownTimeout: Duration{5 * time.Second},
		},
		Keys: Keymap{
			Quit:    "q",
			Add:     "a",
			Up:      "k",
			Down:    "j",
			Toggle:  " ",
			Delete:  "d",
			Edit:    "e",
			Confirm: "enter",
			Cancel:  "esc",
			Reload:  "r",
			Dismiss: "x",
		},
	}
}
