package main

import (
	"os"

	"github.com/sadopc/dgdash/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
