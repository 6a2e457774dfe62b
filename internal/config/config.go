// Package config loads the one-file server configuration.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"culturewalk.ai/internal/auth"
	"culturewalk.ai/internal/narrate"
	"culturewalk.ai/internal/scene"
	"culturewalk.ai/internal/tour"
)

type Config struct {
	Addr         string `yaml:"addr"`
	DataDir      string `yaml:"data_dir"`
	PublicDir    string `yaml:"public_dir"` // models live under <public_dir>/models
	DefaultScene string `yaml:"default_scene"`
	TransitionMS int    `yaml:"transition_ms"`

	Admin AdminConfig       `yaml:"admin"`
	LLM   narrate.Config    `yaml:"llm"`
	TTS   narrate.TTSConfig `yaml:"tts"`
}

type AdminConfig struct {
	Password    string `yaml:"password"`
	JWTSecret   string `yaml:"jwt_secret"`
	TokenTTLMin int    `yaml:"token_ttl_min"`
}

// TokenTTL converts the configured admin session lifetime to a duration.
func (a AdminConfig) TokenTTL() time.Duration {
	return time.Duration(a.TokenTTLMin) * time.Minute
}

// Load reads path over the defaults. An empty path returns the defaults
// untouched; a missing file is an error so a typoed -config never runs
// silently on defaults.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if strings.TrimSpace(path) == "" {
		cfg.Normalize()
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("server.yaml: %w", err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("server.yaml: %w", err)
	}
	return cfg, nil
}

func Defaults() Config {
	return Config{
		Addr:         ":8080",
		DataDir:      "./data",
		PublicDir:    "./public",
		DefaultScene: scene.FallbackScene,
		TransitionMS: int(tour.DefaultTransitionWindow / time.Millisecond),
		Admin: AdminConfig{
			TokenTTLMin: int(auth.DefaultTokenTTL / time.Minute),
		},
		TTS: narrate.DefaultTTS(),
	}
}

func (c *Config) Normalize() {
	if c == nil {
		return
	}
	if strings.TrimSpace(c.Addr) == "" {
		c.Addr = ":8080"
	}
	if strings.TrimSpace(c.DataDir) == "" {
		c.DataDir = "./data"
	}
	if strings.TrimSpace(c.PublicDir) == "" {
		c.PublicDir = "./public"
	}
	if strings.TrimSpace(c.DefaultScene) == "" {
		c.DefaultScene = scene.FallbackScene
	}
	if c.TransitionMS <= 0 {
		c.TransitionMS = int(tour.DefaultTransitionWindow / time.Millisecond)
	}
	if c.Admin.TokenTTLMin <= 0 {
		c.Admin.TokenTTLMin = int(auth.DefaultTokenTTL / time.Minute)
	}
	if strings.TrimSpace(c.TTS.Provider) == "" {
		c.TTS = narrate.DefaultTTS()
	}
}

func (c Config) Validate() error {
	if c.Admin.Password != "" && c.Admin.JWTSecret == "" {
		return fmt.Errorf("admin.jwt_secret must be set when admin.password is set")
	}
	switch c.LLM.Provider {
	case "", "mock", "openai", "ollama":
	default:
		return fmt.Errorf("llm.provider %q not supported", c.LLM.Provider)
	}
	switch c.TTS.Provider {
	case "browser", "openai", "custom":
	default:
		return fmt.Errorf("tts.provider %q not supported", c.TTS.Provider)
	}
	return nil
}

// TransitionWindow converts the configured pacing to a duration.
func (c Config) TransitionWindow() time.Duration {
	return time.Duration(c.TransitionMS) * time.Millisecond
}
