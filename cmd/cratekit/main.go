// Command cratekit resolves cargo build requests
package main

import (
	"os"

	"github.com/cratekit/cratekit/pkg/cli"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg := cli.NewConfig()
	cfg.Version = version

	if err := cli.NewCLI(cfg).Execute(os.Args[1:]); err != nil {
		os.Exit(1)
	}
}
