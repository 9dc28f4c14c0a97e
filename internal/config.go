// Package internal holds CLI support code: configuration loading and
// logger setup.
package internal

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sensiblebit/clustertls"
)

// Environment variables consulted for the process-wide default store
// settings, mirroring the javax.net.ssl.* system properties of the
// original platform.
const (
	EnvKeystoreFile       = "CLUSTERTLS_KEYSTORE"
	EnvKeystorePassword   = "CLUSTERTLS_KEYSTORE_PASSWORD"
	EnvTruststoreFile     = "CLUSTERTLS_TRUSTSTORE"
	EnvTruststorePassword = "CLUSTERTLS_TRUSTSTORE_PASSWORD"
)

// LoadConfig reads a YAML cluster TLS configuration file.
func LoadConfig(path string) (clustertls.Config, error) {
	var cfg clustertls.Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// StoreOverridesFromEnv reads the default-store settings from the
// environment. Unset variables leave the corresponding field empty.
func StoreOverridesFromEnv() clustertls.StoreOverrides {
	return clustertls.StoreOverrides{
		KeystoreFile:       os.Getenv(EnvKeystoreFile),
		KeystorePassword:   os.Getenv(EnvKeystorePassword),
		TruststoreFile:     os.Getenv(EnvTruststoreFile),
		TruststorePassword: os.Getenv(EnvTruststorePassword),
	}
}
