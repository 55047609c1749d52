package config

import (
	"io"

	"gopkg.in/yaml.v3"
)

const redacted = "<redacted>"

// Redacted returns a copy with secrets masked.
func (c Config) Redacted() Config {
	out := c
	out.Fusion.Bands = append([]BandConfig(nil), c.Fusion.Bands...)
	out.Fusion.PriceThresholds = append([]ThresholdConfig(nil), c.Fusion.PriceThresholds...)
	if out.Venue.KeyID != "" {
		out.Venue.KeyID = redacted
	}
	if out.Notify.Webhook.URL != "" {
		out.Notify.Webhook.URL = redacted
	}
	return out
}

// Dump writes the effective configuration as YAML with secrets masked.
func (c Config) Dump(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c.Redacted()); err != nil {
		return err
	}
	return enc.Close()
}
