package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sensiblebit/clustertls"
)

var trustCmd = &cobra.Command{
	Use:   "trust",
	Short: "List the resolved trust anchors",
	Long:  "Show the trust anchors the TLS context would use to verify the cluster control plane, one per line with its keystore alias.",
	Args:  cobra.NoArgs,
	RunE:  runTrust,
}

func runTrust(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, err := clustertls.NewTLSContext(cfg)
	if err != nil {
		return err
	}

	anchors, err := ctx.Truststore().TrustAnchors()
	if err != nil {
		return err
	}
	if len(anchors) == 0 {
		material, err := clustertls.DefaultTrust()
		if err != nil {
			return err
		}
		if material.Anchors == nil {
			fmt.Println("using the system certificate pool")
			return nil
		}
		anchors = material.Anchors
	}

	for _, cert := range anchors {
		fmt.Printf("%s (expires %s)\n", cert.Subject, cert.NotAfter.UTC().Format("2006-01-02"))
	}
	return nil
}
