// Command mu-search runs the RDF-to-Elasticsearch indexing control
// plane: delta ingress, eager-index reconciliation and admin tooling.
package main

import (
	"fmt"
	"os"

	"github.com/nbittich/mu-search/cmd/mu-search/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
