package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config stores options for one run over a set of headers.
type Config struct {
	Inputs            []string      `yaml:"-"`
	OutDir            string        `yaml:"out_dir"`
	Recursive         bool          `yaml:"recursive"`
	Jobs              int           `yaml:"jobs"`
	Preprocessor      string        `yaml:"preprocessor"`
	PreprocessTimeout time.Duration `yaml:"preprocess_timeout"`
	GoOut             string        `yaml:"go_out"`
	GoPackage         string        `yaml:"go_package"`
	IgnoreFields      []string      `yaml:"ignore_fields"`
	Verbose           bool          `yaml:"verbose"`
	ConfigFile        string        `yaml:"-"`
	ShowVersion       bool          `yaml:"-"`
}

// LoadConfigFile decodes a YAML config file over cfg. Keys missing from the
// file leave cfg untouched; unknown keys are an error.
func LoadConfigFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode config %s: %w", path, err)
	}
	return nil
}

// unitConfig is the generator contract for one header.
type unitConfig struct {
	filename string
	pkg      string
}

func (c unitConfig) OutputFilename() string { return c.filename }

func (c unitConfig) PackageName() string { return c.pkg }
