package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/curationd/taxora/internal/model"
)

// taxonomyFile is the on-disk shape of a taxonomy snapshot.
type taxonomyFile struct {
	Version string `yaml:"version"`
	Leaves  []struct {
		Path      []string  `yaml:"path"`
		Embedding []float64 `yaml:"embedding,omitempty"`
	} `yaml:"leaves"`
}

func taxonomyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "taxonomy",
		Short: "Manage local taxonomy snapshots",
	}

	cmd.AddCommand(taxonomyLoadCmd())
	cmd.AddCommand(taxonomyListCmd())

	return cmd
}

func taxonomyLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load <file>",
		Short: "Load taxonomy leaves from a YAML snapshot file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			data, err := os.ReadFile(args[0]) // #nosec G304 -- operator-supplied input path
			if err != nil {
				return fmt.Errorf("failed to read taxonomy file: %w", err)
			}

			var tf taxonomyFile
			if err := yaml.Unmarshal(data, &tf); err != nil {
				return fmt.Errorf("failed to parse taxonomy file %s: %w", args[0], err)
			}
			if tf.Version == "" {
				return fmt.Errorf("taxonomy file %s has no version tag", args[0])
			}
			if len(tf.Leaves) == 0 {
				return fmt.Errorf("taxonomy file %s contains no leaves", args[0])
			}

			leaves := make([]model.TaxonomyLeaf, 0, len(tf.Leaves))
			for _, l := range tf.Leaves {
				leaves = append(leaves, model.TaxonomyLeaf{
					Path:      model.Path(l.Path),
					Embedding: l.Embedding,
					Version:   tf.Version,
				})
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := store.Close(); closeErr != nil {
					slog.Error("Failed to close database", "error", closeErr)
				}
			}()

			if err := store.SaveTaxonomyLeaves(ctx, leaves); err != nil {
				return err
			}

			cmd.Printf("Loaded %d leaves for taxonomy version %q\n", len(leaves), tf.Version)
			return nil
		},
	}
}

func taxonomyListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List leaves of a taxonomy version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			version, _ := cmd.Flags().GetString("version")

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := store.Close(); closeErr != nil {
					slog.Error("Failed to close database", "error", closeErr)
				}
			}()

			leaves, err := store.GetLeafPaths(ctx, version)
			if err != nil {
				return err
			}

			if len(leaves) == 0 {
				cmd.Printf("No leaves for taxonomy version %q.\n", version)
				return nil
			}

			for _, leaf := range leaves {
				marker := " "
				if leaf.HasEmbedding() {
					marker = "*"
				}
				cmd.Printf("%s %s\n", marker, leaf.Path.String())
			}
			cmd.Printf("%d leaves (* = has embedding)\n", len(leaves))
			return nil
		},
	}

	cmd.Flags().String("version", "current", "Taxonomy version tag")

	return cmd
}
