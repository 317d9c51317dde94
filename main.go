package main

import (
	"os"

	"github.com/helioplan/helioplan/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
