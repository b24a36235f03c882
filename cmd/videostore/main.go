package main

import (
	"os"

	"github.com/viant/videostore/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
