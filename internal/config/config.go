// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

// Package config loads server configuration. Precedence, lowest to
// highest: built-in defaults, YAML file, INKWELL_ environment variables,
// command-line flags.
package config

import (
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/inkwell/inkwell/internal/auth"
)

// Token modes.
const (
	ModeJWT    = "jwt"
	ModeOpaque = "opaque"
)

// Config is the full server configuration.
type Config struct {
	Mode string `koanf:"mode"`

	HTTP struct {
		Addr string `koanf:"addr"`
	} `koanf:"http"`

	Observability struct {
		Addr string `koanf:"addr"`
	} `koanf:"observability"`

	Database struct {
		URL string `koanf:"url"`
	} `koanf:"database"`

	JWT struct {
		SigningKey string        `koanf:"signing_key"`
		Issuer     string        `koanf:"issuer"`
		AccessTTL  time.Duration `koanf:"access_ttl"`
		RefreshTTL time.Duration `koanf:"refresh_ttl"`
	} `koanf:"jwt"`

	Session struct {
		MaxAge time.Duration `koanf:"max_age"`
	} `koanf:"session"`

	Blob struct {
		Backend string `koanf:"backend"` // "fs" or "s3"

		FS struct {
			Dir     string `koanf:"dir"`
			BaseURL string `koanf:"base_url"`
		} `koanf:"fs"`

		S3 struct {
			Region    string `koanf:"region"`
			Endpoint  string `koanf:"endpoint"`
			Bucket    string `koanf:"bucket"`
			AccessKey string `koanf:"access_key"`
			SecretKey string `koanf:"secret_key"`
		} `koanf:"s3"`
	} `koanf:"blob"`

	Log struct {
		Level  string `koanf:"level"`
		Format string `koanf:"format"` // "text" or "json"
	} `koanf:"log"`
}

// Default returns the built-in defaults.
func Default() Config {
	var cfg Config
	cfg.Mode = ModeOpaque
	cfg.HTTP.Addr = ":8080"
	cfg.Observability.Addr = ":9090"
	cfg.JWT.Issuer = "inkwell"
	cfg.JWT.AccessTTL = auth.DefaultAccessTTL
	cfg.JWT.RefreshTTL = auth.DefaultRefreshTTL
	cfg.Blob.Backend = "fs"
	cfg.Blob.FS.Dir = "./data/blobs"
	cfg.Blob.FS.BaseURL = "http://localhost:8080/blobs"
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	return cfg
}

// Load builds the configuration. path and flags may be empty and nil.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, oops.Code("CONFIG_LOAD_FAILED").With("path", path).Wrap(err)
		}
	}

	// INKWELL_DATABASE_URL becomes database.url,
	// INKWELL_BLOB_S3_SECRET_KEY becomes blob.s3.secret_key.
	if err := k.Load(env.Provider("INKWELL_", ".", envKey), nil); err != nil {
		return Config{}, oops.Code("CONFIG_LOAD_FAILED").With("source", "env").Wrap(err)
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return Config{}, oops.Code("CONFIG_LOAD_FAILED").With("source", "flags").Wrap(err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, oops.Code("CONFIG_PARSE_FAILED").Wrap(err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// envNestedSections maps the env spellings of two-level sections to their
// key prefixes. Everything else is one section plus a leaf, where only the
// first underscore separates the two and the rest belong to the leaf name.
var envNestedSections = map[string]string{
	"blob_fs_": "blob.fs.",
	"blob_s3_": "blob.s3.",
}

// envKey maps INKWELL_SECTION_SOME_KEY to section.some_key and the nested
// blob sections to their full paths.
func envKey(name string) string {
	trimmed := strings.ToLower(strings.TrimPrefix(name, "INKWELL_"))
	for prefix, section := range envNestedSections {
		if strings.HasPrefix(trimmed, prefix) {
			return section + strings.TrimPrefix(trimmed, prefix)
		}
	}
	return strings.Replace(trimmed, "_", ".", 1)
}

// Validate rejects configurations the server cannot start with.
func (c Config) Validate() error {
	if c.Mode != ModeJWT && c.Mode != ModeOpaque {
		return oops.Code("CONFIG_INVALID").With("mode", c.Mode).
			Errorf("mode must be %q or %q", ModeJWT, ModeOpaque)
	}
	if c.Mode == ModeJWT && len(c.JWT.SigningKey) < auth.MinSigningKeyLength {
		return oops.Code("CONFIG_INVALID").
			Errorf("jwt.signing_key must be at least %d bytes", auth.MinSigningKeyLength)
	}
	switch c.Blob.Backend {
	case "fs", "s3":
	default:
		return oops.Code("CONFIG_INVALID").With("backend", c.Blob.Backend).
			Errorf("blob.backend must be \"fs\" or \"s3\"")
	}
	return nil
}
