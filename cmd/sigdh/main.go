package main

import (
	"os"

	"github.com/TheusHen/sigdh/cmd/sigdh/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
