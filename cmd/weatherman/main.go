package main

import (
	"context"
	"os"

	"weatherman/internal/cli"
)

func main() {
	cmd := &cli.Command{}
	os.Exit(cmd.Run(context.Background(), os.Args[1:]))
}
