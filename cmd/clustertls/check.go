package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sensiblebit/clustertls"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Build a TLS context and report what it contains",
	Long:  "Assemble a TLS client context from the configuration and report the client identity and trust anchors it would use.",
	Example: `  clustertls --config cluster.yaml check
  clustertls --config cluster.yaml --truststore cacerts check`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, err := clustertls.NewTLSContext(cfg)
	if err != nil {
		return err
	}

	if ctx.HasClientCertificate() {
		for _, entry := range ctx.Identities() {
			fmt.Printf("client identity: %s (chain length %d)\n", entry.Alias, len(entry.Chain))
		}
	} else {
		fmt.Println("client identity: none (no client authentication)")
	}

	anchors, err := ctx.Truststore().TrustAnchors()
	if err != nil {
		return err
	}
	if len(anchors) > 0 {
		fmt.Printf("trust anchors: %d from configuration\n", len(anchors))
	} else {
		fmt.Println("trust anchors: default trust material")
	}
	return nil
}
