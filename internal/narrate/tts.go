package narrate

// TTSConfig is passed through to clients verbatim; speech synthesis
// happens on the visitor's device, never server-side.
type TTSConfig struct {
	Provider string  `yaml:"provider" json:"provider"` // "browser" | "openai" | "custom"
	BaseURL  string  `yaml:"base_url" json:"baseURL,omitempty"`
	Voice    string  `yaml:"voice" json:"voice,omitempty"`
	Rate     float64 `yaml:"rate" json:"rate,omitempty"`
	Pitch    float64 `yaml:"pitch" json:"pitch,omitempty"`
	Volume   float64 `yaml:"volume" json:"volume,omitempty"`
}

// DefaultTTS mirrors the browser-native default voice settings.
func DefaultTTS() TTSConfig {
	return TTSConfig{
		Provider: "browser",
		Rate:     1.0,
		Pitch:    1.0,
		Volume:   1.0,
	}
}
