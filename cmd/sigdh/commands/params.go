package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TheusHen/sigdh/sigdh/identity"
)

func paramsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "params",
		Short: "Print group widths, packet size and identity fingerprints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			g := cfg.Group
			fmt.Fprintf(out, "group:       %d-bit prime, %d-byte elements, generator %s\n",
				g.Prime.BitLen(), g.Width(), g.Generator.Hex())
			fmt.Fprintf(out, "packet size: %d bytes\n", cfg.PacketSize())
			for _, id := range []struct {
				name string
				kp   identity.KeyPair
			}{{"initiator", cfg.Initiator}, {"responder", cfg.Responder}} {
				fmt.Fprintf(out, "%s:   %d-bit modulus, can sign: %t, id %s\n",
					id.name, id.kp.Modulus.BitLen(), id.kp.HasPrivate(), id.kp.PeerID())
			}
			return nil
		},
	}
}
