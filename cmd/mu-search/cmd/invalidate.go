package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newInvalidateCmd() *cobra.Command {
	var typeName string

	cmd := &cobra.Command{
		Use:   "invalidate",
		Short: "Mark one or every registered index invalid",
		Long: `invalidate flags matching indexes as invalid without touching
the backend index or its documents; the next fetch or reconciliation
pass rebuilds them lazily rather than eagerly right away.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInvalidate(cmd.Context(), typeName)
		},
	}

	cmd.Flags().StringVar(&typeName, "type", "", "only invalidate indexes registered for this type name")
	return cmd
}

func runInvalidate(ctx context.Context, typeName string) error {
	a, err := buildApp(configPath)
	if err != nil {
		return err
	}

	typeNames := collectTypeNames(a, typeName)
	if err := a.registry.LoadAll(ctx, typeNames); err != nil {
		return fmt.Errorf("load registry: %w", err)
	}

	for _, tn := range typeNames {
		for _, idx := range a.registry.FindForType(tn) {
			a.manager.Invalidate(idx)
			fmt.Printf("invalidated %s (%s)\n", idx.Name, idx.TypeName)
		}
	}

	return nil
}
