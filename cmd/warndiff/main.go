package main

import (
	"os"

	"github.com/dshills/warndiff/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
