package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sensiblebit/clustertls"
)

var (
	exportFormat   string
	exportPassword string
	exportOut      string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the client identity as JKS or PKCS#12",
	Long:  "Write the assembled identity keystore to a file for Java-side tooling, as a JKS store or a PKCS#12/PFX bundle.",
	Example: `  clustertls --config cluster.yaml export --out client.jks
  clustertls --config cluster.yaml export --format p12 --out client.p12`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "jks", "Output format: jks or p12")
	exportCmd.Flags().StringVar(&exportPassword, "password", "changeit", "Password protecting the exported store")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (required)")
	_ = exportCmd.MarkFlagRequired("out")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, err := clustertls.NewTLSContext(cfg)
	if err != nil {
		return err
	}
	if !ctx.HasClientCertificate() {
		return fmt.Errorf("configuration has no client identity to export")
	}

	var data []byte
	switch exportFormat {
	case "jks":
		data, err = ctx.Keystore().ExportJKS(exportPassword)
	case "p12":
		entries := ctx.Identities()
		data, err = clustertls.ExportPKCS12(entries[0], exportPassword)
	default:
		return fmt.Errorf("unknown format %q (expected jks or p12)", exportFormat)
	}
	if err != nil {
		return err
	}

	if err := os.WriteFile(exportOut, data, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", exportOut, err)
	}
	fmt.Printf("wrote %s (%d bytes)\n", exportOut, len(data))
	return nil
}
