// Package rtconfig layers the interpreter's runtime options the same way
// the teacher's cmd/root.go wires viper: flag > environment > config file >
// default. It adds one thing viper's own YAML decoding doesn't give the
// CLI for free — a round-trippable Config value: what WriteYAML produces,
// LoadFile reads back.
package rtconfig

import (
	"os"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds every rvsim run flag as data, independent of cobra/viper, so
// it can be loaded from a --config file, from viper's merged view, or
// built by hand in tests.
type Config struct {
	Timeout       int64  `mapstructure:"timeout" yaml:"timeout"`
	Stack         uint32 `mapstructure:"stack" yaml:"stack"`
	Storage       uint32 `mapstructure:"storage" yaml:"storage"`
	Predictor     bool   `mapstructure:"predictor" yaml:"predictor"`
	PredictorBits uint   `mapstructure:"predictor_bits" yaml:"predictor_bits"`
	Detail        bool   `mapstructure:"detail" yaml:"detail"`
	DetailFormat  string `mapstructure:"detail_format" yaml:"detail_format"`
	Silent        bool   `mapstructure:"silent" yaml:"silent"`
	Debug         bool   `mapstructure:"debug" yaml:"debug"`
}

// Default returns the baseline values used when neither a flag, an
// environment variable, nor a config file sets something.
func Default() Config {
	return Config{
		Timeout:      10_000_000,
		Stack:        1 << 20,
		Storage:      1 << 28,
		DetailFormat: "text",
	}
}

// Load reads viper's merged view (flags already bound by the caller take
// priority over env and any discovered .rvsim.yaml) into a Config.
func Load(v *viper.Viper) (Config, error) {
	cfg := Default()
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile parses an explicit --config YAML file, overlaying it on the
// defaults. This is the plain yaml.v3 path independent of viper, used when
// the caller wants the file's values without the flag/env merge.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// WriteYAML serializes cfg in the YAML form LoadFile reads, for saving the
// effective configuration back to disk.
func WriteYAML(cfg Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}
