package commands

import (
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"github.com/TheusHen/sigdh/sigdh/crypto"
	"github.com/TheusHen/sigdh/sigdh/protocol"
	"github.com/TheusHen/sigdh/sigdh/session"
	"github.com/TheusHen/sigdh/sigdh/transport"
)

// handshake: run initiator and responder over an in-memory pipe.
func handshakeCmd() *cobra.Command {
	var tamper, quiet bool
	cmd := &cobra.Command{
		Use:   "handshake",
		Short: "Run both roles in process and dump every packet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			var mu sync.Mutex
			dump := func(sender string, mt protocol.MessageType, pkt []byte) {
				if quiet {
					return
				}
				mu.Lock()
				defer mu.Unlock()
				fmt.Fprintf(out, "%s -> %s (%d bytes)\n%s\n", sender, mt, len(pkt), hex.Dump(pkt))
			}

			wrap := func(a, b transport.Transport) (transport.Transport, transport.Transport) {
				sent := 0
				ini := transport.Intercept(a, func(pkt []byte) []byte {
					mt := protocol.MessageTypeSenderHello
					if sent++; sent == 2 {
						mt = protocol.MessageTypeSenderAcknowledge
						if tamper {
							pkt = append([]byte(nil), pkt...)
							pkt[0] ^= 0x01
						}
					}
					dump("initiator", mt, pkt)
					return pkt
				})
				res := transport.Intercept(b, func(pkt []byte) []byte {
					dump("responder", protocol.MessageTypeReceiverHello, pkt)
					return pkt
				})
				return ini, res
			}

			ini, res, err := session.PairOver(cmd.Context(), cfg, sessionOptions(), wrap)
			if err != nil {
				// A flipped high bit can push the value past the modulus,
				// which is reported as a malformed packet instead.
				if tamper && (errors.Is(err, session.ErrSignatureRejected) || errors.Is(err, protocol.ErrMalformedPacket)) {
					fmt.Fprintln(out, "responder rejected the tampered signature; no keys derived")
					return nil
				}
				return err
			}
			defer ini.Close()
			defer res.Close()

			for _, s := range []*session.Session{ini, res} {
				k, err := s.Keys()
				if err != nil {
					return err
				}
				printKeys(cmd, s.Role().String(), &k)
				k.Wipe()
			}
			fmt.Fprintf(out, "elapsed: initiator %s, responder %s\n", ini.Elapsed(), res.Elapsed())
			return nil
		},
	}
	cmd.Flags().BoolVar(&tamper, "tamper", false, "flip a bit of the signature in message 3")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "skip packet dumps")
	return cmd
}

func printKeys(cmd *cobra.Command, who string, k *crypto.SessionKeys) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s keys:\n  cipher %x\n  mac    %x\n  nonce  %x\n  fingerprint %s\n",
		who, k.CipherKey, k.MACKey, k.Nonce, k.Fingerprint())
}
