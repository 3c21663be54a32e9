package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nbittich/mu-search/registry"
)

func newReindexCmd() *cobra.Command {
	var typeName string

	cmd := &cobra.Command{
		Use:   "reindex",
		Short: "Force a full rebuild of one or every registered index",
		Long: `reindex loads the persisted index registry and rebuilds every
matching Search Index from the triplestore, bypassing the usual
lazy rebuild-on-fetch behaviour. With --type it rebuilds only the
indexes registered for that type; without it, every persisted index.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReindex(cmd.Context(), typeName)
		},
	}

	cmd.Flags().StringVar(&typeName, "type", "", "only rebuild indexes registered for this type name")
	return cmd
}

func runReindex(ctx context.Context, typeName string) error {
	a, err := buildApp(configPath)
	if err != nil {
		return err
	}

	typeNames := collectTypeNames(a, typeName)
	if err := a.registry.LoadAll(ctx, typeNames); err != nil {
		return fmt.Errorf("load registry: %w", err)
	}

	var indexes []*registry.SearchIndex
	for _, tn := range typeNames {
		indexes = append(indexes, a.registry.FindForType(tn)...)
	}

	for _, idx := range indexes {
		def := a.cfg.ByName(idx.TypeName)
		if def == nil {
			continue
		}
		fmt.Printf("rebuilding %s (%s)\n", idx.Name, idx.TypeName)
		if err := a.manager.Update(ctx, idx, def); err != nil {
			fmt.Printf("  failed: %v\n", err)
		}
	}

	return nil
}

func collectTypeNames(a *app, only string) []string {
	if only != "" {
		return []string{only}
	}
	names := make([]string, 0, len(a.cfg.Types))
	for _, def := range a.cfg.Types {
		names = append(names, def.Name)
	}
	return names
}
