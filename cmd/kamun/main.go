package main

import (
	"os"

	"github.com/Subha2009/kamun-software/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
