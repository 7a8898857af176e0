package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix         = "INVENTORY_"
	DefaultConfigFile = "config.yaml"
	DefaultEnvFile    = ".env"
)

type Validator interface {
	Validate() error
}

// Options selects the files Load reads. Empty fields fall back to the defaults.
type Options struct {
	ConfigFile string
	EnvFile    string
}

// Load reads the configuration from defaults, a yaml file, a .env file and
// environment variables, in increasing priority.
func Load(opts Options) (*Config, error) {
	if opts.ConfigFile == "" {
		opts.ConfigFile = DefaultConfigFile
	}
	if opts.EnvFile == "" {
		opts.EnvFile = DefaultEnvFile
	}

	// Create a new Koanf instance
	k := koanf.New(".")

	// 1. Built-in defaults
	defaults := map[string]any{
		"store.path": DefaultStorePath,
		"log.level":  DefaultLogLevel,
		"log.file":   DefaultLogFile,
	}
	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, fmt.Errorf("error loading defaults: %w", err)
	}

	// 2. Load configuration from yaml file
	if err := k.Load(file.Provider(opts.ConfigFile), yaml.Parser()); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error loading YAML config file '%s': %w", opts.ConfigFile, err)
		}
	}

	// 3. Load environment variables from .env file
	if envFileMap, err := godotenv.Read(opts.EnvFile); err == nil {
		envMap := make(map[string]any)
		for key, value := range envFileMap {
			if strings.HasPrefix(strings.ToUpper(key), envPrefix) {
				envMap[keyTransformer(key)] = value
			}
		}
		// Load the envMap into Koanf
		if err := k.Load(confmap.Provider(envMap, "."), nil); err != nil {
			log.Printf("WARN: error loading .env config: %v", err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		log.Printf("WARN: error reading .env file: %v", err)
	}

	// 4. Load environment variables from the system, the highest priority
	if err := k.Load(env.Provider(envPrefix, ".", keyTransformer), nil); err != nil {
		log.Printf("WARN: error loading system env vars: %v", err)
	}

	var cfg Config
	// 5. Unmarshal the configuration into the Config struct
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// 6. Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// keyTransformer maps INVENTORY_LOG_LEVEL to log.level.
func keyTransformer(key string) string {
	key = strings.ToLower(key)
	key = strings.TrimPrefix(key, strings.ToLower(envPrefix))
	return strings.ReplaceAll(key, "_", ".")
}
