package main

import (
	"os"

	"github.com/abhisek/vitality/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
