// Command tckrunner runs DMN TCK test cases against an evaluation service.
package main

import (
	"os"

	"github.com/roach88/tckrunner/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:], os.Stdout, os.Stderr))
}
