package main

import (
	"os"

	"github.com/hsuancheng/factset-consensus/cmd/factset/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
