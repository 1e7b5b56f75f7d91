package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Encoding defaults; flags override per run.
	ImageQuality int    `json:"image_quality" envconfig:"IMAGE_QUALITY"`
	VideoCRF     int    `json:"video_crf" envconfig:"VIDEO_CRF"`
	VideoPreset  string `json:"video_preset" envconfig:"VIDEO_PRESET"`
	MaxWidth     int    `json:"max_width" envconfig:"MAX_WIDTH"`

	// Serve mode.
	Port           int    `json:"port" envconfig:"PORT"`
	CleanupMinutes int    `json:"cleanup_minutes" envconfig:"CLEANUP_MINUTES"`
	RedisAddr      string `json:"redis_addr" envconfig:"REDIS_ADDR"`
	RedisDB        int    `json:"redis_db" envconfig:"REDIS_DB"`
	RedisPassword  string `json:"redis_password" envconfig:"REDIS_PASSWORD"`

	LogLevel string `json:"log_level" envconfig:"LOG_LEVEL"`
}

// Load builds the config from defaults, then an optional JSON file,
// then MEDIAPRESS_* environment variables.
func Load(path string) (Config, error) {
	cfg := Config{
		ImageQuality:   80,
		VideoCRF:       23,
		VideoPreset:    "medium",
		Port:           3000,
		CleanupMinutes: 30,
		RedisAddr:      "localhost:6379",
		LogLevel:       "info",
	}

	paths := []string{"config.json"}
	if path != "" {
		paths = []string{path}
	}
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			if path != "" {
				return cfg, fmt.Errorf("open config %s: %w", p, err)
			}
			continue
		}
		dec := json.NewDecoder(f)
		err = dec.Decode(&cfg)
		f.Close()
		if err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", p, err)
		}
		break
	}

	if err := envconfig.Process("mediapress", &cfg); err != nil {
		return cfg, fmt.Errorf("env config: %w", err)
	}
	cfg.VideoPreset = strings.TrimSpace(cfg.VideoPreset)
	return cfg, nil
}
