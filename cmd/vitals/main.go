package main

import (
	"os"

	"github.com/RyanBlaney/sonido-vitals/cmd/vitals/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
