package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Board and timing constants. These are fixed at build time; the config
// file only chooses which speed preset drives the ticker.
const (
	GridWidth  = 20 // cells
	GridHeight = 15 // cells
	CellSize   = 20 // pixels per cell

	SpeedNormal = 150 * time.Millisecond
	SpeedFast   = 80 * time.Millisecond

	FoodReward = 10
)

var ErrUnknownSpeed = errors.New("unknown speed preset")

// AppConfig holds the structure of the configuration
type AppConfig struct {
	SelfPath   string `json:"selfpath" yaml:"selfpath"`
	Port       string `json:"port" yaml:"port"`
	Speed      string `json:"speed" yaml:"speed"`
	StaticDir  string `json:"static_dir" yaml:"static_dir"`
	SpritesDir string `json:"sprites_dir" yaml:"sprites_dir"`
	Seed       int64  `json:"seed" yaml:"seed"`
	Release    bool   `json:"release" yaml:"release"`
}

var (
	instance *AppConfig
	once     sync.Once
	loadErr  error
)

// Default returns the configuration used when no file exists yet.
func Default() *AppConfig {
	return &AppConfig{
		SelfPath:   "localhost:38870",
		Port:       "38870",
		Speed:      "normal",
		StaticDir:  "./static",
		SpritesDir: "./sprites",
	}
}

// LoadConfig initializes and returns the instance of AppConfig
func LoadConfig(filePath string) (*AppConfig, error) {
	once.Do(func() {
		instance, loadErr = load(filePath)
	})
	return instance, loadErr
}

// load reads filePath over the defaults, writing the defaults out first
// if the file does not exist.
func load(filePath string) (*AppConfig, error) {
	cfg := Default()
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		if err := saveConfig(filePath, cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	if err := loadConfig(filePath, cfg); err != nil {
		return nil, err
	}
	if _, err := cfg.TickInterval(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func isYAML(filePath string) bool {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// loadConfig loads the settings from the file
func loadConfig(filePath string, cfg *AppConfig) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	if isYAML(filePath) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return fmt.Errorf("parse config %s: %w", filePath, err)
	}
	return nil
}

// saveConfig saves the current settings to the file
func saveConfig(filePath string, cfg *AppConfig) error {
	file, err := os.Create(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	if isYAML(filePath) {
		encoder := yaml.NewEncoder(file)
		defer encoder.Close()
		return encoder.Encode(cfg)
	}
	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(cfg)
}

// TickInterval maps the speed preset onto its duration.
func (c *AppConfig) TickInterval() (time.Duration, error) {
	switch strings.ToLower(c.Speed) {
	case "", "normal":
		return SpeedNormal, nil
	case "fast":
		return SpeedFast, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSpeed, c.Speed)
}

// GetConfigValue returns the value of the configuration by key
func GetConfigValue(key string) interface{} {
	if instance == nil {
		return ""
	}
	switch key {
	case "selfpath":
		return instance.SelfPath
	case "port":
		return instance.Port
	case "speed":
		return instance.Speed
	case "static_dir":
		return instance.StaticDir
	case "sprites_dir":
		return instance.SpritesDir
	case "seed":
		return instance.Seed
	case "blocksize":
		return int(CellSize)
	default:
		return ""
	}
}
