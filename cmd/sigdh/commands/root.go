package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/TheusHen/sigdh/sigdh"
	"github.com/TheusHen/sigdh/sigdh/params"
	"github.com/TheusHen/sigdh/sigdh/session"
)

var (
	configPath string
	logLevel   string
	logJSON    bool
	timeout    time.Duration

	cfg    *params.Config
	logger *logrus.Logger
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "sigdh",
		Short:        "Signed Diffie-Hellman handshake and encrypted channel",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger = logrus.New()
			logger.SetOutput(os.Stderr)
			lvl, err := logrus.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			logger.SetLevel(lvl)
			if logJSON {
				logger.SetFormatter(&logrus.JSONFormatter{})
			}

			if configPath == "" {
				cfg = params.Default()
				return nil
			}
			cfg, err = params.Load(configPath)
			if err != nil {
				return fmt.Errorf("load %s: %w", configPath, err)
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "JSON parameter file (default built-in constants)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log as JSON")
	root.PersistentFlags().DurationVar(&timeout, "timeout", session.DefaultMessageTimeout, "wait for each handshake message")

	root.AddCommand(handshakeCmd(), serveCmd(), dialCmd(), benchCmd(), paramsCmd(), keygenCmd())
	return root
}

func sessionOptions() session.Options {
	return session.Options{MessageTimeout: timeout, Logger: logrus.NewEntry(logger)}
}

func newPeer() (*sigdh.Peer, error) {
	return sigdh.NewPeer(cfg, sigdh.Options{Session: sessionOptions()})
}
