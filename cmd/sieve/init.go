package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog/log"
	flag "github.com/spf13/pflag"
)

func newFlagSet() *flag.FlagSet {
	f := flag.NewFlagSet("sieve", flag.ContinueOnError)
	f.Usage = func() {
		fmt.Println(f.FlagUsages())
		os.Exit(0)
	}

	f.StringSlice("config", []string{"workflow.yaml"}, "path to one or more workflow files (will be merged in order)")
	f.Bool("version", false, "show current version of the build")
	f.Bool("dev", false, "human readable console logging")
	f.String("log-file", "", "also write JSON logs to this file")
	f.String("log-level", "info", "trace, debug, info, warn or error")
	f.String("catalog.dir", "", "directory of the predicate catalog; in-memory when empty")
	f.Bool("metrics", false, "log the operator counters after the run")
	return f
}

// initFlags parses args into f. They are loaded into the config after the workflow files
// so that explicitly set flags win.
func initFlags(f *flag.FlagSet, args []string) error {
	if err := f.Parse(args); err != nil {
		return fmt.Errorf("error loading flags: %w", err)
	}
	log.Trace().Msg("No errors when parsing the flags")
	return nil
}

// initConfig loads every workflow file named by --config, then the flags.
func initConfig(ko *koanf.Koanf, f *flag.FlagSet) error {
	configs, _ := f.GetStringSlice("config")
	for _, path := range configs {
		log.Debug().Msgf("Reading config from %s", path)
		parser, err := parserFor(path)
		if err != nil {
			return err
		}
		if err := ko.Load(file.Provider(path), parser); err != nil {
			return fmt.Errorf("error reading config %s: %w", path, err)
		}
		log.Trace().Msg("Successfully read the contents of the config file")
	}

	if err := ko.Load(posflag.Provider(f, ".", ko), nil); err != nil {
		return fmt.Errorf("error reading flag config: %w", err)
	}
	return nil
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", path)
	}
}
