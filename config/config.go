// Package config loads uttr settings from config.yml, .env and UTTR_*
// environment variables and keeps an immutable snapshot that is swapped
// atomically when the file changes on disk.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Overlay placement preferences.
const (
	PositionTop    = "top"
	PositionBottom = "bottom"
	PositionNone   = "none"
)

type Overlay struct {
	Position    string          `mapstructure:"position" validate:"oneof=top bottom none"`
	HideDelay   time.Duration   `mapstructure:"hide_delay" validate:"gte=0"`
	RetryDelays []time.Duration `mapstructure:"retry_delays" validate:"max=4,dive,gte=0"`
}

// Settings is a read-only snapshot. Callers must not mutate a snapshot
// obtained from Store.Snapshot.
type Settings struct {
	PushToTalk         bool              `mapstructure:"push_to_talk"`
	Language           string            `mapstructure:"language"`
	TranslateToEnglish bool              `mapstructure:"translate_to_english"`
	Model              string            `mapstructure:"model" validate:"required"`
	APIKey             string            `mapstructure:"api_key"`
	APIBaseURL         string            `mapstructure:"api_base_url" validate:"required,url"`
	RequestTimeout     time.Duration     `mapstructure:"request_timeout" validate:"gt=0"`
	MaxAttempts        int               `mapstructure:"max_attempts" validate:"gte=1,lte=5"`
	UploadFormat       string            `mapstructure:"upload_format" validate:"oneof=wav flac"`
	UnloadImmediately  bool              `mapstructure:"unload_immediately"`
	AudioFeedback      bool              `mapstructure:"audio_feedback"`
	Paste              bool              `mapstructure:"paste"`
	History            bool              `mapstructure:"history"`
	HistoryLimit       int               `mapstructure:"history_limit" validate:"gte=1"`
	LogLevel           string            `mapstructure:"log_level" validate:"oneof=trace debug info warn error"`
	Device             string            `mapstructure:"device"`
	Bindings           map[string]string `mapstructure:"bindings" validate:"required,dive,keys,required,endkeys,required"`
	Overlay            Overlay           `mapstructure:"overlay"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("push_to_talk", true)
	v.SetDefault("language", "auto")
	v.SetDefault("translate_to_english", false)
	v.SetDefault("model", "whisper-large-v3-turbo")
	v.SetDefault("api_key", "")
	v.SetDefault("api_base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("request_timeout", 90*time.Second)
	v.SetDefault("max_attempts", 2)
	v.SetDefault("upload_format", "wav")
	v.SetDefault("unload_immediately", false)
	v.SetDefault("audio_feedback", true)
	v.SetDefault("paste", true)
	v.SetDefault("history", true)
	v.SetDefault("history_limit", 200)
	v.SetDefault("log_level", "info")
	v.SetDefault("device", "")
	v.SetDefault("bindings", map[string]string{
		"transcribe": "ctrl+shift+space",
		"cancel":     "escape",
	})
	v.SetDefault("overlay.position", PositionBottom)
	v.SetDefault("overlay.hide_delay", 300*time.Millisecond)
	v.SetDefault("overlay.retry_delays", defaultRetryDelays())
}

var validate = validator.New()

// Validate checks field constraints and that a transcribe binding exists.
func (s *Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	if _, ok := s.Bindings["transcribe"]; !ok {
		return errors.New("invalid settings: bindings.transcribe is required")
	}
	return nil
}

// Defaults returns the settings used when no file or environment overrides exist.
func Defaults() *Settings {
	v := viper.New()
	setDefaults(v)
	s := &Settings{}
	if err := v.Unmarshal(s); err != nil {
		panic("config defaults: " + err.Error())
	}
	return s
}

// ResolveFile returns the config path to use: the explicit flag value,
// then $XDG_CONFIG_HOME/uttr/config.yml, then ./config.yml. An empty
// result means no file was found.
func ResolveFile(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}
	var candidates []string
	if d, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(d, "uttr", "config.yml"))
	}
	candidates = append(candidates, "config.yml")
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Store holds the current settings snapshot.
type Store struct {
	v       *viper.Viper
	file    string
	current atomic.Pointer[Settings]

	mu        sync.Mutex
	listeners []func(*Settings)
}

// Load reads settings from file (may be empty), the .env file next to it
// or in the working directory, and the environment.
func Load(file string) (*Store, error) {
	loadEnvFile(file)

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("UTTR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading %s: %w", file, err)
		}
	}

	s := &Store{v: v, file: file}
	settings, err := s.decode()
	if err != nil {
		return nil, err
	}
	s.current.Store(settings)
	return s, nil
}

// NewStatic returns a Store that always yields settings. Used by tests and
// the headless test mode.
func NewStatic(settings *Settings) *Store {
	s := &Store{}
	s.current.Store(settings)
	return s
}

func loadEnvFile(configFile string) {
	var candidates []string
	if configFile != "" {
		candidates = append(candidates, filepath.Join(filepath.Dir(configFile), ".env"))
	}
	candidates = append(candidates, ".env")
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			// Existing environment wins over .env
			_ = godotenv.Load(p)
			return
		}
	}
}

func (s *Store) decode() (*Settings, error) {
	settings := &Settings{}
	if err := s.v.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("decoding settings: %w", err)
	}
	if settings.APIKey == "" {
		settings.APIKey = os.Getenv("GROQ_API_KEY")
	}
	settings.APIKey = strings.TrimSpace(settings.APIKey)
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// Snapshot returns the settings current at the time of the call.
func (s *Store) Snapshot() *Settings {
	return s.current.Load()
}

// Replace swaps in a new snapshot and notifies listeners.
func (s *Store) Replace(settings *Settings) {
	s.current.Store(settings)
	s.mu.Lock()
	listeners := append([]func(*Settings){}, s.listeners...)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(settings)
	}
}

// OnChange registers fn to be called after every successful reload.
func (s *Store) OnChange(fn func(*Settings)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Watch reloads the config file whenever it changes. Invalid edits are
// reported through onError and the previous snapshot stays active.
func (s *Store) Watch(onError func(error)) {
	if s.v == nil || s.file == "" {
		return
	}
	s.v.OnConfigChange(func(e fsnotify.Event) {
		settings, err := s.decode()
		if err != nil {
			if onError != nil {
				onError(fmt.Errorf("reload %s: %w", e.Name, err))
			}
			return
		}
		s.Replace(settings)
	})
	s.v.WatchConfig()
}

// File returns the config file in use, or "" when running on defaults.
func (s *Store) File() string {
	return s.file
}
