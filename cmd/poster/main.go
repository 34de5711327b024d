package main

import (
	"os"

	"autopost/poster-go/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args))
}
