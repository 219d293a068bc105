package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/TheusHen/sigdh/sigdh"
	"github.com/TheusHen/sigdh/sigdh/transfer"
)

// serve: responder side of the QUIC demo.
func serveCmd() *cobra.Command {
	var (
		addr string
		mode string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Accept connections as the responder and echo or receive files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var handle func(*sigdh.Conn, *logrus.Entry) error
			switch mode {
			case "echo":
				handle = echo
			case "transfer":
				handle = receive
			default:
				return fmt.Errorf("unknown mode %q", mode)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			p, err := newPeer()
			if err != nil {
				return err
			}
			if err := p.Listen(addr); err != nil {
				return err
			}
			defer p.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "listening on %s\n", p.ListenAddr())

			for {
				conn, err := p.Accept(ctx)
				if ctx.Err() != nil {
					return nil
				}
				if err != nil {
					logger.WithField("error", err.Error()).Warn("connection rejected")
					continue
				}
				go func() {
					defer conn.Close()
					log := logger.WithField("remote", conn.RemoteAddr().String())
					if err := handle(conn, log); err != nil && !errors.Is(err, io.EOF) {
						log.WithField("error", err.Error()).Warn("connection ended")
					}
				}()
			}
		},
	}
	cmd.Flags().StringVar(&addr, "listen", "127.0.0.1:4433", "UDP address to listen on")
	cmd.Flags().StringVar(&mode, "mode", "echo", "echo messages back, or receive transfers (echo|transfer)")
	return cmd
}

func echo(conn *sigdh.Conn, log *logrus.Entry) error {
	for {
		msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		log.WithField("size", len(msg)).Info("echo")
		if err := conn.WriteMessage(msg); err != nil {
			return err
		}
	}
}

func receive(conn *sigdh.Conn, log *logrus.Entry) error {
	for {
		data, st, err := transfer.Receive(conn, transfer.Config{Logger: log})
		if err != nil {
			return err
		}
		reply := fmt.Sprintf("received %d bytes, %d of %d shards rebuilt", len(data), st.Lost, st.Shards)
		log.WithFields(logrus.Fields{
			"size": len(data),
			"lost": st.Lost,
		}).Info("transfer complete")
		if err := conn.WriteMessage([]byte(reply)); err != nil {
			return err
		}
	}
}
