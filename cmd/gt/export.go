package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gradtrack/gradtrack/internal/migrate"
	"github.com/gradtrack/gradtrack/internal/storage"
	"github.com/gradtrack/gradtrack/internal/store"
	"github.com/gradtrack/gradtrack/internal/types"
	"github.com/gradtrack/gradtrack/internal/ui"
)

var exportCmd = &cobra.Command{
	Use:     "export",
	GroupID: "data",
	Short:   "Write all applications as a JSON backup or YAML",
	Long: `Write all applications to stdout or a file.

The JSON format is the same document gradtrack stores and is accepted by
'gt import'. YAML is for reading and diffing.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")
		if format != "json" && format != "yaml" {
			return fmt.Errorf("unknown format %q: want json or yaml", format)
		}

		return withStore(cmd.Context(), func(st *store.Store) error {
			schema := migrate.WrapInSchema(st.Applications())
			data, err := encodeSchema(schema, format)
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				_, err := os.Stdout.Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0600); err != nil {
				return fmt.Errorf("failed to write export: %w", err)
			}
			fmt.Fprintf(os.Stderr, "%s Exported %d applications to %s\n", ui.RenderPass("✓"), len(schema.Applications), output)
			return nil
		})
	},
}

func encodeSchema(schema *types.DataSchema, format string) ([]byte, error) {
	if format == "yaml" {
		data, err := yaml.Marshal(schema)
		if err != nil {
			return nil, fmt.Errorf("failed to encode yaml: %w", err)
		}
		return data, nil
	}
	return storage.Marshal(schema)
}

func init() {
	exportCmd.Flags().StringP("format", "f", "json", "Output format: json or yaml")
	exportCmd.Flags().StringP("output", "o", "", "Output file (default stdout)")
	rootCmd.AddCommand(exportCmd)
}
