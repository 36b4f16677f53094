package main

import (
	"os"

	"github.com/takallem/takallem/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
