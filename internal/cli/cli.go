package cli

import (
	"fmt"
	"go/token"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/pflag"

	"github.com/seitarof/sc2xml/internal/preprocess"
)

// ParseArgs parses command line arguments into Config. Values from a
// --config file apply first; flags given on the command line override them.
func ParseArgs(args []string) (*Config, error) {
	flags := &Config{}
	var ignoreFieldsRaw string

	fs := pflag.NewFlagSet("sc2xml", pflag.ContinueOnError)
	fs.StringVarP(&flags.OutDir, "out-dir", "o", "", "directory for .h.xml files (default: next to each header)")
	fs.BoolVarP(&flags.Recursive, "recursive", "r", false, "descend into subdirectories of directory inputs")
	fs.IntVarP(&flags.Jobs, "jobs", "j", runtime.NumCPU(), "headers processed in parallel")
	fs.StringVar(&flags.Preprocessor, "cpp", preprocess.DefaultCommand, "preprocessor command template for .stub.h files")
	fs.DurationVar(&flags.PreprocessTimeout, "cpp-timeout", 0, "time limit per preprocessor run (0 = none)")
	fs.StringVar(&flags.GoOut, "go-out", "", "also write Go type bindings into this directory")
	fs.StringVar(&flags.GoPackage, "go-package", "", "package name of generated bindings (default: base of --go-out)")
	fs.StringVar(&ignoreFieldsRaw, "ignore-fields", "", "comma-separated field names left out of Go bindings")
	fs.StringVar(&flags.ConfigFile, "config", "", "YAML config file")
	fs.BoolVar(&flags.Verbose, "verbose", false, "log progress for every header")
	fs.BoolVarP(&flags.ShowVersion, "version", "v", false, "show version")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if flags.ShowVersion {
		return flags, nil
	}

	cfg := &Config{
		Jobs:         runtime.NumCPU(),
		Preprocessor: preprocess.DefaultCommand,
	}
	if flags.ConfigFile != "" {
		if err := LoadConfigFile(flags.ConfigFile, cfg); err != nil {
			return nil, err
		}
	}
	fs.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "out-dir":
			cfg.OutDir = flags.OutDir
		case "recursive":
			cfg.Recursive = flags.Recursive
		case "jobs":
			cfg.Jobs = flags.Jobs
		case "cpp":
			cfg.Preprocessor = flags.Preprocessor
		case "cpp-timeout":
			cfg.PreprocessTimeout = flags.PreprocessTimeout
		case "go-out":
			cfg.GoOut = flags.GoOut
		case "go-package":
			cfg.GoPackage = flags.GoPackage
		case "ignore-fields":
			cfg.IgnoreFields = splitCommaList(ignoreFieldsRaw)
		case "verbose":
			cfg.Verbose = flags.Verbose
		}
	})
	cfg.ConfigFile = flags.ConfigFile
	cfg.Inputs = fs.Args()

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if len(cfg.Inputs) == 0 {
		return fmt.Errorf("at least one header file or directory is required")
	}
	if cfg.Jobs < 1 {
		return fmt.Errorf("--jobs must be >= 1")
	}
	if strings.TrimSpace(cfg.Preprocessor) == "" {
		return fmt.Errorf("--cpp must not be empty")
	}
	if cfg.PreprocessTimeout < 0 {
		return fmt.Errorf("--cpp-timeout must not be negative")
	}
	if cfg.GoOut == "" {
		return nil
	}
	if cfg.GoPackage == "" {
		cfg.GoPackage = packageFromDir(cfg.GoOut)
	}
	if !token.IsIdentifier(cfg.GoPackage) {
		return fmt.Errorf("--go-package %q is not a valid package name", cfg.GoPackage)
	}
	return nil
}

func packageFromDir(dir string) string {
	base := filepath.Base(filepath.Clean(dir))
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		}
		return -1
	}, base)
	if name == "" || (name[0] >= '0' && name[0] <= '9') {
		name = "bindings"
	}
	return name
}

func splitCommaList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
