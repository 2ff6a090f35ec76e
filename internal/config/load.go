package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

type environment struct {
	RedditClientID     string `env:"REDDIT_CLIENT_ID"`
	RedditClientSecret string `env:"REDDIT_CLIENT_SECRET"`
	RedditUserAgent    string `env:"REDDIT_USER_AGENT"`
	OutputFolder       string `env:"REELPIPE_OUTPUT_FOLDER"`
	LogLevel           string `env:"REELPIPE_LOG_LEVEL"`
}

// Load locates and decodes the configuration file, applies environment
// values over it, resolves the result against defaults and overrides, and
// expands paths. It returns the config, the file path considered, and whether
// that file existed.
func Load(path string, overrides Layer) (*Config, string, bool, error) {
	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	var file Layer
	if exists {
		layer, err := LoadLayer(resolvedPath)
		if err != nil {
			return nil, "", false, err
		}
		file = *layer
	}

	envLayer, err := EnvLayer()
	if err != nil {
		return nil, "", false, err
	}
	file = file.Merge(envLayer)

	cfg, err := Resolve(Default(), &file, overrides)
	if err != nil {
		return nil, "", false, err
	}
	if err := cfg.normalizePaths(); err != nil {
		return nil, "", false, err
	}
	return cfg, resolvedPath, exists, nil
}

// LoadLayer decodes a configuration file into a Layer. The format follows the
// extension: .json and .yaml/.yml are accepted, anything else is TOML.
// Unknown keys are rejected so typos do not silently fall back to defaults.
func LoadLayer(path string) (*Layer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var layer Layer
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&layer)
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&layer)
		if errors.Is(err, io.EOF) {
			err = nil
		}
	default:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&layer)
	}
	if err != nil {
		return nil, &ConfigError{Field: filepath.Base(path), Reason: "could not be parsed: " + err.Error()}
	}
	return &layer, nil
}

// EnvLayer reads supported environment variables into a Layer.
func EnvLayer() (Layer, error) {
	var e environment
	if err := env.Parse(&e); err != nil {
		return Layer{}, fmt.Errorf("parse environment: %w", err)
	}
	var l Layer
	if e.RedditClientID != "" {
		l.Reddit.ClientID = Ptr(e.RedditClientID)
	}
	if e.RedditClientSecret != "" {
		l.Reddit.ClientSecret = Ptr(e.RedditClientSecret)
	}
	if e.RedditUserAgent != "" {
		l.Reddit.UserAgent = Ptr(e.RedditUserAgent)
	}
	if e.OutputFolder != "" {
		l.OutputFolder = Ptr(e.OutputFolder)
	}
	if e.LogLevel != "" {
		l.Logging.Level = Ptr(e.LogLevel)
	}
	return l, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		info, err := os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", false, &ConfigError{Field: "config", Reason: fmt.Sprintf("file not found: %s", expanded)}
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		if info.IsDir() {
			return "", false, &ConfigError{Field: "config", Reason: fmt.Sprintf("%s is a directory", expanded)}
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("reelpipe.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}
