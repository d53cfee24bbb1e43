package main

import (
	"os"

	"github.com/powermosfet/actual-sparebank1/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
