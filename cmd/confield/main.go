package main

import (
	"os"

	"github.com/confield/confield/cmd/confield/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
