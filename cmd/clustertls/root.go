package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sensiblebit/clustertls"
	"github.com/sensiblebit/clustertls/internal"
)

var (
	logLevel   string
	configPath string

	keystoreFile       string
	keystorePassword   string
	truststoreFile     string
	truststorePassword string
)

var rootCmd = &cobra.Command{
	Use:   "clustertls",
	Short: "Cluster mutual-TLS client context tool",
	Long:  "Assemble mutual-TLS client configurations from certificate/key data or files, inspect the resolved trust anchors, and export the identity keystore.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetupLogger(logLevel)
		clustertls.SetStoreOverrides(storeOverrides())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Cluster TLS configuration file (YAML)")
	bindStoreFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(trustCmd)
	rootCmd.AddCommand(exportCmd)
}

// bindStoreFlags registers the default-store override flags. Flags win
// over the CLUSTERTLS_* environment variables.
func bindStoreFlags(fs *pflag.FlagSet) {
	fs.StringVar(&keystoreFile, "keystore", "", "Default keystore file (JKS)")
	fs.StringVar(&keystorePassword, "keystore-password", "", "Default keystore password")
	fs.StringVar(&truststoreFile, "truststore", "", "Default truststore file (JKS or PEM bundle)")
	fs.StringVar(&truststorePassword, "truststore-password", "", "Default truststore password")
}

func storeOverrides() clustertls.StoreOverrides {
	o := internal.StoreOverridesFromEnv()
	if keystoreFile != "" {
		o.KeystoreFile = keystoreFile
	}
	if keystorePassword != "" {
		o.KeystorePassword = keystorePassword
	}
	if truststoreFile != "" {
		o.TruststoreFile = truststoreFile
	}
	if truststorePassword != "" {
		o.TruststorePassword = truststorePassword
	}
	return o
}

// loadConfig reads the --config file, which every subcommand requires.
func loadConfig() (clustertls.Config, error) {
	if configPath == "" {
		return clustertls.Config{}, fmt.Errorf("--config is required")
	}
	return internal.LoadConfig(configPath)
}
