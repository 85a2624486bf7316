package main

import (
	"os"

	"github.com/aristath/intrinsic/cmd/intrinsic/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
