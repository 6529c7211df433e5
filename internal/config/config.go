// Package config loads runtime settings from the environment, an optional
// .env file and command-line flags.
package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "MUDRA_"

// DefaultWindowTitle is the title of the preview window.
const DefaultWindowTitle = "Hand Gesture Recognition"

// Config holds all runtime settings.
type Config struct {
	// Source is a camera device index ("0") or a video file path.
	Source string `validate:"required"`
	// Mirror flips frames horizontally before detection.
	Mirror bool

	OKThreshold    float64 `validate:"gt=0,lt=1"`
	ThumbDirection string  `validate:"oneof=left right"`
	UseHandedness  bool

	MinConfidence   float64 `validate:"gt=0,lte=1"`
	MinTrackingConf float64 `validate:"gt=0,lte=1"`
	ScriptPath      string
	PythonPath      string
	// MockDetector swaps the landmark service for a detector that never finds hands.
	MockDetector bool

	Speech        bool
	SpeechCommand string
	SpeechTimeout time.Duration `validate:"gte=0"`

	Window      bool
	WindowTitle string `validate:"required_if=Window true"`

	Tray bool

	// HTTPAddr is the listen address of the API server; empty disables it.
	HTTPAddr  string `validate:"omitempty,hostname_port"`
	StaticDir string `validate:"omitempty,dir"`

	DataDir string `validate:"required"`
	Journal bool

	// PluginDir holds gesture hooks; empty means DataDir/plugins.
	PluginDir     string
	PluginTimeout time.Duration `validate:"gte=0"`

	LogLevel string `validate:"oneof=debug info warn error"`
	LogFile  string
	// Env is "test" to keep logs off disk.
	Env string
}

// Default returns the built-in settings.
func Default() *Config {
	dataDir := ".mudra"
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".mudra")
	}

	return &Config{
		Source:          "0",
		Mirror:          true,
		OKThreshold:     0.05,
		ThumbDirection:  "left",
		MinConfidence:   0.7,
		MinTrackingConf: 0.5,
		Speech:          true,
		Window:          true,
		WindowTitle:     DefaultWindowTitle,
		HTTPAddr:        "127.0.0.1:8080",
		DataDir:         dataDir,
		Journal:         true,
		PluginTimeout:   5 * time.Second,
		LogLevel:        "info",
		Env:             "production",
	}
}

// Load returns Default overridden by a .env file in the working directory
// (if any) and then by MUDRA_* environment variables.
func Load() (*Config, error) {
	// A missing .env is normal; the process environment still applies.
	_ = godotenv.Load()

	cfg := Default()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Source = getEnv("SOURCE", c.Source)
	c.ThumbDirection = getEnv("THUMB_DIRECTION", c.ThumbDirection)
	c.ScriptPath = getEnv("SCRIPT_PATH", c.ScriptPath)
	c.PythonPath = getEnv("PYTHON_PATH", c.PythonPath)
	c.SpeechCommand = getEnv("SPEECH_COMMAND", c.SpeechCommand)
	c.WindowTitle = getEnv("WINDOW_TITLE", c.WindowTitle)
	c.HTTPAddr = getEnvAllowEmpty("HTTP_ADDR", c.HTTPAddr)
	c.StaticDir = getEnv("STATIC_DIR", c.StaticDir)
	c.DataDir = getEnv("DATA_DIR", c.DataDir)
	c.PluginDir = getEnv("PLUGIN_DIR", c.PluginDir)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFile = getEnv("LOG_FILE", c.LogFile)
	c.Env = getEnv("ENV", c.Env)

	var err error
	if c.Mirror, err = getEnvBool("MIRROR", c.Mirror); err != nil {
		return err
	}
	if c.UseHandedness, err = getEnvBool("USE_HANDEDNESS", c.UseHandedness); err != nil {
		return err
	}
	if c.MockDetector, err = getEnvBool("MOCK_DETECTOR", c.MockDetector); err != nil {
		return err
	}
	if c.Speech, err = getEnvBool("SPEECH", c.Speech); err != nil {
		return err
	}
	if c.Window, err = getEnvBool("WINDOW", c.Window); err != nil {
		return err
	}
	if c.Tray, err = getEnvBool("TRAY", c.Tray); err != nil {
		return err
	}
	if c.Journal, err = getEnvBool("JOURNAL", c.Journal); err != nil {
		return err
	}
	if c.OKThreshold, err = getEnvFloat("OK_THRESHOLD", c.OKThreshold); err != nil {
		return err
	}
	if c.MinConfidence, err = getEnvFloat("MIN_CONFIDENCE", c.MinConfidence); err != nil {
		return err
	}
	if c.MinTrackingConf, err = getEnvFloat("MIN_TRACKING_CONFIDENCE", c.MinTrackingConf); err != nil {
		return err
	}
	if c.SpeechTimeout, err = getEnvDuration("SPEECH_TIMEOUT", c.SpeechTimeout); err != nil {
		return err
	}
	if c.PluginTimeout, err = getEnvDuration("PLUGIN_TIMEOUT", c.PluginTimeout); err != nil {
		return err
	}
	return nil
}

// BindFlags registers command-line overrides on fs. Defaults are the
// current values of c, so call it after Load.
func (c *Config) BindFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Source, "source", c.Source, "camera index or video file")
	fs.BoolVar(&c.Mirror, "mirror", c.Mirror, "flip frames horizontally")
	fs.Float64Var(&c.OKThreshold, "ok-threshold", c.OKThreshold, "thumb-index distance for OK")
	fs.StringVar(&c.ThumbDirection, "thumb", c.ThumbDirection, "thumb extension direction: left or right")
	fs.BoolVar(&c.UseHandedness, "handedness", c.UseHandedness, "flip thumb direction for left hands")
	fs.BoolVar(&c.MockDetector, "mock-detector", c.MockDetector, "run without the landmark service")
	fs.BoolVar(&c.Speech, "speech", c.Speech, "speak gesture changes")
	fs.StringVar(&c.SpeechCommand, "speech-command", c.SpeechCommand, "text-to-speech program")
	fs.DurationVar(&c.SpeechTimeout, "speech-timeout", c.SpeechTimeout, "limit on one utterance (0 = none)")
	fs.BoolVar(&c.Window, "window", c.Window, "show the preview window")
	fs.BoolVar(&c.Tray, "tray", c.Tray, "show the system tray menu")
	fs.StringVar(&c.HTTPAddr, "http", c.HTTPAddr, "API listen address (empty disables)")
	fs.StringVar(&c.StaticDir, "static", c.StaticDir, "directory served at /")
	fs.StringVar(&c.DataDir, "data", c.DataDir, "data directory")
	fs.BoolVar(&c.Journal, "journal", c.Journal, "record gesture changes in the database")
	fs.StringVar(&c.PluginDir, "plugins", c.PluginDir, "gesture hook directory")
	fs.DurationVar(&c.PluginTimeout, "plugin-timeout", c.PluginTimeout, "limit on one hook run")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "debug, info, warn or error")
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// DBPath returns the journal database path.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "mudra.db")
}

// PluginPath returns the gesture hook directory.
func (c *Config) PluginPath() string {
	if c.PluginDir != "" {
		return c.PluginDir
	}
	return filepath.Join(c.DataDir, "plugins")
}

// LogPath returns the log file path.
func (c *Config) LogPath() string {
	if c.LogFile != "" {
		return c.LogFile
	}
	return filepath.Join(c.DataDir, "logs", "mudra.log")
}

// CameraSource returns Source as a device index when it is numeric,
// otherwise as a file path.
func (c *Config) CameraSource() interface{} {
	if id, err := strconv.Atoi(c.Source); err == nil {
		return id
	}
	return c.Source
}

// IsTest reports whether the process runs under tests.
func (c *Config) IsTest() bool {
	return c.Env == "test"
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(EnvPrefix + key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvAllowEmpty(key, defaultVal string) string {
	if v, ok := os.LookupEnv(EnvPrefix + key); ok {
		return v
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) (bool, error) {
	v := os.Getenv(EnvPrefix + key)
	if v == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal, fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
	}
	return b, nil
}

func getEnvFloat(key string, defaultVal float64) (float64, error) {
	v := os.Getenv(EnvPrefix + key)
	if v == "" {
		return defaultVal, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultVal, fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
	}
	return f, nil
}

func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	v := os.Getenv(EnvPrefix + key)
	if v == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal, fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
	}
	return d, nil
}
