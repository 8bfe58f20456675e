// Package config loads reelcut settings from YAML with environment overrides.
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type contextKey string

const configKey contextKey = "config"

// Config holds all application configuration.
type Config struct {
	DataDir  string `yaml:"data_dir"`
	LogLevel string `yaml:"log_level"`

	Timeline TimelineConfig `yaml:"timeline"`
	Playback PlaybackConfig `yaml:"playback"`
	Mpv      MpvConfig      `yaml:"mpv"`
	FFmpeg   FFmpegConfig   `yaml:"ffmpeg"`
	Export   ExportConfig   `yaml:"export"`
	Library  LibraryConfig  `yaml:"library"`
	Server   ServerConfig   `yaml:"server"`
}

// TimelineConfig controls editing geometry.
type TimelineConfig struct {
	PixelsPerSecond float64 `yaml:"pixels_per_second"`
	SnapTolerancePx float64 `yaml:"snap_tolerance_px"`
	HistoryLimit    int     `yaml:"history_limit"`
}

// PlaybackConfig tunes the synchronizer.
type PlaybackConfig struct {
	TickInterval      time.Duration `yaml:"tick_interval"`
	SeekTolerance     float64       `yaml:"seek_tolerance"`
	PipSyncInterval   time.Duration `yaml:"pip_sync_interval"`
	PipDriftThreshold float64       `yaml:"pip_drift_threshold"`
	SeekStep          float64       `yaml:"seek_step"`
}

// MpvConfig locates the mpv binary and its IPC sockets.
type MpvConfig struct {
	Binary     string `yaml:"binary"`
	MainSocket string `yaml:"main_socket"`
	PipSocket  string `yaml:"pip_socket"`
}

// FFmpegConfig locates ffmpeg and ffprobe.
type FFmpegConfig struct {
	Binary      string `yaml:"binary"`
	ProbeBinary string `yaml:"probe_binary"`
	Preset      string `yaml:"preset"`
	CRF         int    `yaml:"crf"`
}

// ExportConfig is the output frame size and whether clip audio is mixed in.
// Audio needs every exported source to carry an audio stream.
type ExportConfig struct {
	Width  int  `yaml:"width"`
	Height int  `yaml:"height"`
	Audio  bool `yaml:"audio"`
}

// LibraryConfig bounds the media library.
type LibraryConfig struct {
	Limit      int `yaml:"limit"`
	WarnAt     int `yaml:"warn_at"`
	Thumbnails int `yaml:"thumbnails"`
}

// ServerConfig is the HTTP API listener.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Load reads configuration from path, or from the first config file found
// when path is empty, on top of the defaults. REELCUT_* environment variables
// override file values.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = findConfigFile()
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes configuration to path.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Default returns the built-in configuration.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		DataDir:  filepath.Join(home, ".local", "share", "reelcut"),
		LogLevel: "info",
		Timeline: TimelineConfig{
			PixelsPerSecond: 50,
			SnapTolerancePx: 20,
			HistoryLimit:    200,
		},
		Playback: PlaybackConfig{
			TickInterval:      33 * time.Millisecond,
			SeekTolerance:     0.2,
			PipSyncInterval:   500 * time.Millisecond,
			PipDriftThreshold: 0.5,
			SeekStep:          5,
		},
		Mpv: MpvConfig{
			Binary:     "mpv",
			MainSocket: "/tmp/reelcut-main.sock",
			PipSocket:  "/tmp/reelcut-pip.sock",
		},
		FFmpeg: FFmpegConfig{
			Binary:      "ffmpeg",
			ProbeBinary: "ffprobe",
			Preset:      "fast",
			CRF:         23,
		},
		Export: ExportConfig{Width: 1280, Height: 720, Audio: true},
		Library: LibraryConfig{
			Limit:      50,
			WarnAt:     20,
			Thumbnails: 5,
		},
		Server: ServerConfig{Addr: "127.0.0.1:7420"},
	}
}

// DefaultPath is where Load looks for a user config file.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "reelcut", "config.yaml")
}

func findConfigFile() string {
	candidates := []string{
		"./reelcut.yaml",
		"./reelcut.yml",
		DefaultPath(),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// applyEnv overrides fields from REELCUT_* variables.
func (c *Config) applyEnv() error {
	str := map[string]*string{
		"REELCUT_DATA_DIR":       &c.DataDir,
		"REELCUT_LOG_LEVEL":      &c.LogLevel,
		"REELCUT_MPV_BINARY":     &c.Mpv.Binary,
		"REELCUT_MPV_SOCKET":     &c.Mpv.MainSocket,
		"REELCUT_MPV_PIP_SOCKET": &c.Mpv.PipSocket,
		"REELCUT_FFMPEG":         &c.FFmpeg.Binary,
		"REELCUT_FFPROBE":        &c.FFmpeg.ProbeBinary,
		"REELCUT_SERVER_ADDR":    &c.Server.Addr,
	}
	for key, dst := range str {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"REELCUT_LIBRARY_LIMIT": &c.Library.Limit,
		"REELCUT_EXPORT_WIDTH":  &c.Export.Width,
		"REELCUT_EXPORT_HEIGHT": &c.Export.Height,
	}
	for key, dst := range ints {
		v, ok := os.LookupEnv(key)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
	}
	return nil
}

// WithConfig stores config in context.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from context, falling back to defaults.
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(configKey).(*Config); ok {
		return cfg
	}
	return Default()
}
