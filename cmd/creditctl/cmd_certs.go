package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bibbank/creditrisk/pkg/tlsutil"
)

func newCertsCmd() *cobra.Command {
	var (
		hosts  []string
		outDir string
	)

	cmd := &cobra.Command{
		Use:   "certs",
		Short: "Generate a self-signed certificate for local gRPC TLS",
		Long: `Certs writes a development CA (ca.pem, ca-key.pem) and a server
certificate signed by it (server.pem, server-key.pem) into --out and
prints the environment settings that point creditd and its clients at them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			certs, err := tlsutil.GenerateSelfSignedCert(hosts, outDir)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "GRPC_TLS_CERT_FILE=%s\n", certs.CertFile)
			fmt.Fprintf(out, "GRPC_TLS_KEY_FILE=%s\n", certs.KeyFile)
			fmt.Fprintf(out, "ESTIMATOR_CA_FILE=%s\n", certs.CAFile)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&hosts, "hosts", []string{"localhost", "127.0.0.1"}, "DNS names and IPs for the certificate")
	cmd.Flags().StringVarP(&outDir, "out", "o", "certs", "Output directory")
	return cmd
}
