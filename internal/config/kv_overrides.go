package config

import (
	"fmt"
	"strconv"
	"strings"
)

// ApplyKVOverrides applies free-form -c key=value overrides. Unknown keys and
// malformed values are reported together; valid entries are still applied.
func ApplyKVOverrides(cfg Config, overrides []string) (Config, error) {
	var bad []string
	for _, raw := range overrides {
		parts := strings.SplitN(raw, "=", 2)
		if len(parts) != 2 {
			bad = append(bad, raw)
			continue
		}
		key := strings.TrimSpace(parts[0])
		val := strings.TrimSpace(parts[1])
		if err := applyKV(&cfg, key, val); err != nil {
			bad = append(bad, raw)
		}
	}
	if len(bad) > 0 {
		return cfg, fmt.Errorf("invalid config overrides: %s", strings.Join(bad, ", "))
	}
	return cfg, nil
}

func applyKV(cfg *Config, key, val string) error {
	switch strings.ReplaceAll(key, "-", "_") {
	case "api_key", "key":
		cfg.APIKey = val
	case "base_url", "url":
		cfg.BaseURL = val
	case "model":
		cfg.Model = val
	case "top_p":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return err
		}
		cfg.TopP = f
	case "temperature":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return err
		}
		cfg.Temperature = &f
	case "max_tokens":
		n, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return err
		}
		cfg.MaxTokens = n
	case "save":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return err
		}
		cfg.Save = b
	case "base_dir":
		cfg.BaseDir = val
	case "stylesheet":
		cfg.Stylesheet = val
	case "style":
		cfg.Style = val
	case "render_interval_ms":
		n, err := strconv.Atoi(val)
		if err != nil || n < 0 {
			return fmt.Errorf("bad interval %q", val)
		}
		cfg.RenderIntervalMS = n
	default:
		return fmt.Errorf("unknown key %q", key)
	}
	return nil
}
