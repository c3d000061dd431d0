package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPattern matches the coupon-code shapes seen in AI Overview text:
// letters followed by digits ("SAVE10", "OLD5") or a letter run ending in a
// known promo suffix ("SUMMERSAVE", "BIGDEAL"). Matching is case-insensitive;
// the scanner adds the flag when compiling.
const DefaultPattern = `\b[A-Z]{2,}[0-9]+\b|\b[A-Z]{3,}(OFF|SAVE|DEAL|PASS)\b`

// Rules describes how coupon candidates are recognized and normalized.
// Loaded from an optional YAML file so operators can tune the pattern and
// canonicalization without a rebuild.
type Rules struct {
	// Pattern is the coupon-code syntax as a regular expression.
	Pattern string `yaml:"pattern"`

	// MinLength/MaxLength bound accepted match lengths. Zero means no bound.
	MinLength int `yaml:"min_length"`
	MaxLength int `yaml:"max_length"`

	// Strip lists separator characters removed during normalization, so
	// "SAVE-10" and "SAVE10" compare equal only when '-' is listed here.
	Strip string `yaml:"strip"`

	// ContextChars is how much surrounding text to keep with each mention.
	ContextChars int `yaml:"context_chars"`
}

// DefaultRules returns the built-in detection rules.
func DefaultRules() Rules {
	return Rules{
		Pattern:      DefaultPattern,
		MinLength:    4,
		MaxLength:    24,
		ContextChars: 100,
	}
}

// LoadRules loads detection rules from the given YAML file. A missing file is
// not an error; the defaults are used, matching the optional config file
// behavior of the rest of the configuration surface.
func LoadRules(path string) (Rules, error) {
	rules := DefaultRules()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return rules, nil
		}
		return rules, fmt.Errorf("failed to read rules file %s: %w", path, err)
	}

	var loaded Rules
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return rules, fmt.Errorf("failed to parse rules file %s: %w", path, err)
	}

	if loaded.Pattern != "" {
		rules.Pattern = loaded.Pattern
	}
	if loaded.MinLength > 0 {
		rules.MinLength = loaded.MinLength
	}
	if loaded.MaxLength > 0 {
		rules.MaxLength = loaded.MaxLength
	}
	if loaded.ContextChars > 0 {
		rules.ContextChars = loaded.ContextChars
	}
	rules.Strip = loaded.Strip

	return rules, nil
}
