// Command docsnap saves and restores snapshots of a document and the files
// it depends on.
package main

import (
	"os"

	"github.com/roach88/docsnap/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:], os.Stdout, os.Stderr))
}
