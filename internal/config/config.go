// Package config handles application configuration loading and management.
package config

// Config holds all application settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Atlas    AtlasConfig    `yaml:"atlas"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display and frame pacing settings.
type GraphicsConfig struct {
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	TargetFPS  int    `yaml:"target_fps"`
	Title      string `yaml:"title"`
}

// AtlasConfig holds the glyph atlas asset location.
type AtlasConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			TargetFPS:  75,
			Title:      "Matrix Digital Rain",
		},
		Atlas: AtlasConfig{
			Path: "assets/font_atlas.png",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
