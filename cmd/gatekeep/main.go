package main

import (
	"os"

	"github.com/ferrule/gatekeep/cmd/gatekeep/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
