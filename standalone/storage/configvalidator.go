package storage

import (
	"encoding/json"
	"fmt"
	"slices"
)

// defaultedKeys are the fields whose zero value differs from the default.
var defaultedKeys = map[string][]string{
	"video":  {"skipFrames", "turboSkipFrames", "fontSize"},
	"window": {"width", "height"},
}

// detectPresentKeys unmarshals JSON bytes to determine which config keys
// are explicitly present in the file. Returns a flat set of dotted-path keys
// (e.g., "video.skipFrames", "window.width"). Only keys whose zero value is
// meaningful are reported.
func detectPresentKeys(jsonBytes []byte) map[string]bool {
	present := make(map[string]bool)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(jsonBytes, &raw); err != nil {
		return present
	}

	if _, ok := raw["version"]; ok {
		present["version"] = true
	}

	for section, keys := range defaultedKeys {
		sectionRaw, ok := raw[section]
		if !ok {
			continue
		}
		var fields map[string]json.RawMessage
		if json.Unmarshal(sectionRaw, &fields) != nil {
			continue
		}
		for _, k := range keys {
			if _, ok := fields[k]; ok {
				present[section+"."+k] = true
			}
		}
	}

	return present
}

// ApplyMissingDefaults sets default values for config fields that are absent
// from the JSON file. Present zero values are kept (skipFrames=0 means
// render every frame).
func ApplyMissingDefaults(config *Config, presentKeys map[string]bool) {
	defaults := DefaultConfig()

	if !presentKeys["version"] {
		config.Version = defaults.Version
	}
	if !presentKeys["video.skipFrames"] {
		config.Video.SkipFrames = defaults.Video.SkipFrames
	}
	if !presentKeys["video.turboSkipFrames"] {
		config.Video.TurboSkipFrames = defaults.Video.TurboSkipFrames
	}
	if !presentKeys["video.fontSize"] {
		config.Video.FontSize = defaults.Video.FontSize
	}
	if !presentKeys["window.width"] {
		config.Window.Width = defaults.Window.Width
	}
	if !presentKeys["window.height"] {
		config.Window.Height = defaults.Window.Height
	}
}

func validSkipFrames(v int) bool {
	return v >= AutoSkipFrames && v <= MaxSkipFrames
}

func validTurboSkipFrames(v int) bool {
	return v >= 0 && v <= MaxTurboSkipFrames
}

func validFrameTime(v int) bool {
	return v == 0 || (v >= MinFrameTimeMicros && v <= MaxFrameTimeMicros)
}

// ValidateConfig checks all config fields against valid ranges and returns
// human-readable error descriptions. An empty slice means the config is valid.
func ValidateConfig(config *Config) []string {
	var errors []string

	if config.Version != 1 {
		errors = append(errors, fmt.Sprintf("version: %d (valid: 1)", config.Version))
	}

	if !validSkipFrames(config.Video.SkipFrames) {
		errors = append(errors, fmt.Sprintf("video.skipFrames: %d (valid: -1 for auto, 0-%d)", config.Video.SkipFrames, MaxSkipFrames))
	}

	if !validTurboSkipFrames(config.Video.TurboSkipFrames) {
		errors = append(errors, fmt.Sprintf("video.turboSkipFrames: %d (valid: 0-%d)", config.Video.TurboSkipFrames, MaxTurboSkipFrames))
	}

	if !validFrameTime(config.Video.FrameTimeMicros) {
		errors = append(errors, fmt.Sprintf("video.frameTimeMicros: %d (valid: 0 or %d-%d)", config.Video.FrameTimeMicros, MinFrameTimeMicros, MaxFrameTimeMicros))
	}

	if !slices.Contains(FontSizePresets, config.Video.FontSize) {
		errors = append(errors, fmt.Sprintf("video.fontSize: %d (valid: %v)", config.Video.FontSize, FontSizePresets))
	}

	if config.Window.Width < MinWindowWidth {
		errors = append(errors, fmt.Sprintf("window.width: %d (valid: >= %d)", config.Window.Width, MinWindowWidth))
	}

	if config.Window.Height < MinWindowHeight {
		errors = append(errors, fmt.Sprintf("window.height: %d (valid: >= %d)", config.Window.Height, MinWindowHeight))
	}

	return errors
}

// CorrectConfig resets any invalid fields to their defaults from DefaultConfig().
// Valid fields are preserved. The font size snaps to the nearest preset.
func CorrectConfig(config *Config) *Config {
	defaults := DefaultConfig()

	if config.Version != 1 {
		config.Version = defaults.Version
	}
	if !validSkipFrames(config.Video.SkipFrames) {
		config.Video.SkipFrames = defaults.Video.SkipFrames
	}
	if !validTurboSkipFrames(config.Video.TurboSkipFrames) {
		config.Video.TurboSkipFrames = defaults.Video.TurboSkipFrames
	}
	if !validFrameTime(config.Video.FrameTimeMicros) {
		config.Video.FrameTimeMicros = defaults.Video.FrameTimeMicros
	}
	if !slices.Contains(FontSizePresets, config.Video.FontSize) {
		if config.Video.FontSize > 0 {
			config.Video.FontSize = ValidFontSize(config.Video.FontSize)
		} else {
			config.Video.FontSize = defaults.Video.FontSize
		}
	}
	if config.Window.Width < MinWindowWidth {
		config.Window.Width = defaults.Window.Width
	}
	if config.Window.Height < MinWindowHeight {
		config.Window.Height = defaults.Window.Height
	}

	return config
}
