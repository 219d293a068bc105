package commands

import (
	"crypto/rand"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/TheusHen/sigdh/sigdh/identity"
	"github.com/TheusHen/sigdh/sigdh/params"
)

// keygen: fresh identities for both roles, keeping the loaded group.
func keygenCmd() *cobra.Command {
	var (
		bits int
		out  string
	)
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate RSA identities and write a config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ini, err := identity.Generate(rand.Reader, bits)
			if err != nil {
				return err
			}
			res, err := identity.Generate(rand.Reader, bits)
			if err != nil {
				return err
			}
			next := &params.Config{Group: cfg.Group, Initiator: ini, Responder: res}
			if err := next.Validate(); err != nil {
				return err
			}
			data, err := next.MarshalJSON()
			if err != nil {
				return err
			}
			data = append(data, '\n')
			if out == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(out, data, 0o600); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\ninitiator %s\nresponder %s\n", out, ini.PeerID(), res.PeerID())
			return nil
		},
	}
	cmd.Flags().IntVar(&bits, "bits", 1248, "RSA modulus size")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}
