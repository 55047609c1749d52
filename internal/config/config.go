package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Credentials and the webhook URL may come from the environment instead of
// the config files.
const (
	EnvKeyID          = "STRIKEBOT_KEY_ID"
	EnvPrivateKeyPath = "STRIKEBOT_PRIVATE_KEY_PATH"
	EnvWebhookURL     = "STRIKEBOT_WEBHOOK_URL"
)

var envBindings = [][2]string{
	{"venue.key_id", EnvKeyID},
	{"venue.private_key_path", EnvPrivateKeyPath},
	{"notify.webhook.url", EnvWebhookURL},
}

// Load reads path and its include chain, applies environment overrides and
// defaults, and validates the result.
func Load(path string) (*Config, error) {
	files, err := resolveConfigIncludes(path)
	if err != nil {
		return nil, err
	}
	v := viper.New()
	v.SetConfigType("yaml")
	for _, file := range files {
		if err := mergeConfigFile(v, file); err != nil {
			return nil, fmt.Errorf("reading config file failed (%s): %w", file, err)
		}
	}
	for _, b := range envBindings {
		if err := v.BindEnv(b[0], b[1]); err != nil {
			return nil, fmt.Errorf("binding %s failed: %w", b[1], err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "toml"
		dc.WeaklyTypedInput = true
	}); err != nil {
		return nil, fmt.Errorf("parsing config failed: %w", err)
	}
	setKeys := make(keySet)
	collectSettingsKeys(v.AllSettings(), setKeys)
	cfg.applyDefaults(setKeys)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func mergeConfigFile(v *viper.Viper, path string) error {
	tmp := viper.New()
	tmp.SetConfigFile(path)
	if err := tmp.ReadInConfig(); err != nil {
		return err
	}
	return v.MergeConfigMap(tmp.AllSettings())
}

// resolveConfigIncludes returns the include chain of path, depth first, with
// every included file ahead of the file that includes it.
func resolveConfigIncludes(path string) ([]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("config path cannot be empty")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	r := includeResolver{done: make(map[string]bool)}
	if err := r.visit(abs); err != nil {
		return nil, err
	}
	return r.order, nil
}

type includeResolver struct {
	done  map[string]bool
	chain []string
	order []string
}

func (r *includeResolver) visit(path string) error {
	path = filepath.Clean(path)
	for _, open := range r.chain {
		if open == path {
			return fmt.Errorf("include cycle detected: %s", strings.Join(append(r.chain, path), " -> "))
		}
	}
	if r.done[path] {
		return nil
	}
	includes, err := readIncludes(path)
	if err != nil {
		return fmt.Errorf("parsing include failed (%s): %w", path, err)
	}
	r.chain = append(r.chain, path)
	for _, inc := range includes {
		if !filepath.IsAbs(inc) {
			inc = filepath.Join(filepath.Dir(path), inc)
		}
		if err := r.visit(inc); err != nil {
			return err
		}
	}
	r.chain = r.chain[:len(r.chain)-1]
	r.done[path] = true
	r.order = append(r.order, path)
	return nil
}

func readIncludes(path string) ([]string, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	raw := v.Get("include")
	if raw == nil {
		return nil, nil
	}
	var items []any
	switch val := raw.(type) {
	case []any:
		items = val
	case []string:
		for _, s := range val {
			items = append(items, s)
		}
	case string:
		items = []any{val}
	default:
		return nil, fmt.Errorf("include must be a string array")
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		str, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("include only supports strings")
		}
		if str = strings.TrimSpace(str); str != "" {
			out = append(out, str)
		}
	}
	return out, nil
}

// collectSettingsKeys records every leaf path present in settings. A list
// counts as one leaf.
func collectSettingsKeys(settings map[string]any, dest keySet) {
	for k, v := range settings {
		markKeys(strings.ToLower(strings.TrimSpace(k)), v, dest)
	}
}

func markKeys(path string, node any, dest keySet) {
	if path == "" {
		return
	}
	switch val := node.(type) {
	case map[string]any:
		for k, v := range val {
			if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
				markKeys(path+"."+k, v, dest)
			}
		}
	case map[any]any:
		for k, v := range val {
			if ks, ok := k.(string); ok {
				if ks = strings.ToLower(strings.TrimSpace(ks)); ks != "" {
					markKeys(path+"."+ks, v, dest)
				}
			}
		}
	default:
		dest.mark(path)
	}
}
