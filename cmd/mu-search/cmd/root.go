package cmd

import (
	"github.com/spf13/cobra"
)

var configPath string
var debugLogging bool

// NewRootCmd builds the mu-search root command.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "mu-search",
		Short: "RDF-backed search index control plane",
		Long: `mu-search maintains Elasticsearch indexes projected from an RDF
triplestore, keeping them in sync via a delta feed and an eager
reconciliation loop, scoped per caller by authorization group.`,
	}

	root.PersistentFlags().StringVar(&configPath, "config", "config.json", "path to the index configuration document")
	root.PersistentFlags().BoolVar(&debugLogging, "debug", false, "enable debug-level structured logging")

	root.AddCommand(newServeCmd())
	root.AddCommand(newReindexCmd())
	root.AddCommand(newInvalidateCmd())

	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
