package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/TheusHen/sigdh/sigdh"
	"github.com/TheusHen/sigdh/sigdh/session"
	"github.com/TheusHen/sigdh/sigdh/transfer"
)

// dial: initiator side of the QUIC demo.
func dialCmd() *cobra.Command {
	var (
		file   string
		shards transfer.Config
	)
	cmd := &cobra.Command{
		Use:   "dial <addr> [message...]",
		Short: "Connect as the initiator and send a message or a file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 3*timeout)
			defer cancel()

			conn, err := dialConn(ctx, args[0])
			if err != nil {
				return err
			}
			defer conn.Close()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "session keys %s\n", sessionFingerprint(conn.Session()))

			if file != "" {
				data, err := os.ReadFile(file)
				if err != nil {
					return err
				}
				shards.Logger = logger.WithField("file", file)
				st, err := transfer.Send(conn, data, shards)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "sent %d bytes as %d shards (payload %d, lz4 %t)\n", st.Size, st.Shards, st.Payload, st.Compressed)
			} else {
				msg := strings.Join(args[1:], " ")
				if msg == "" {
					msg = "hello"
				}
				if err := conn.WriteMessage([]byte(msg)); err != nil {
					return err
				}
			}

			reply, err := conn.ReadMessage()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "reply: %s\n", reply)
			return nil
		},
	}
	def := transfer.DefaultConfig()
	cmd.Flags().StringVarP(&file, "file", "f", "", "send this file with the transfer protocol (serve --mode transfer)")
	cmd.Flags().IntVar(&shards.DataShards, "data-shards", def.DataShards, "Reed-Solomon data shards")
	cmd.Flags().IntVar(&shards.ParityShards, "parity-shards", def.ParityShards, "Reed-Solomon parity shards")
	return cmd
}

func dialConn(ctx context.Context, addr string) (*sigdh.Conn, error) {
	p, err := newPeer()
	if err != nil {
		return nil, err
	}
	return p.Dial(ctx, addr)
}

func sessionFingerprint(s *session.Session) string {
	k, err := s.Keys()
	if err != nil {
		return err.Error()
	}
	defer k.Wipe()
	return k.Fingerprint()
}
