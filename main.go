package main

import (
	"os"

	"github.com/abhisek/feelio/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
