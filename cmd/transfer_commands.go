package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"cellar/internal/model"
	"cellar/internal/transfer"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Import wines from a JSON file (use - for stdin)",
		Long:  "Import wines from a JSON object or an array of objects. Every record is added as a new cellar entry; nothing is imported if the file is invalid.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			records, err := transfer.ParseImport(data)
			if err != nil {
				return err
			}
			return ctx.withApp(cmd, func(a *app) error {
				res, err := a.engine.ImportBatch(cmd.Context(), records)
				if err := a.persisted(cmd, err); err != nil {
					return err
				}
				n := len(res.Imported)
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d wine%s\n", n, plural(n))
				return nil
			})
		},
	}
}

func newExportCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:       "export [inventory|history|all]",
		Short:     "Export collections as JSON",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"inventory", "history", "all"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			if len(args) > 0 {
				name = args[0]
			}
			which, err := transfer.ParseCollection(strings.ToLower(strings.TrimSpace(name)))
			if err != nil {
				return err
			}
			return ctx.withApp(cmd, func(a *app) error {
				now := a.engine.Now()
				data, err := transfer.Export(a.engine.Snapshot(), which, now)
				if err != nil {
					return err
				}
				if output == "-" {
					_, err := cmd.OutOrStdout().Write(data)
					return err
				}
				path := output
				if path == "" {
					path = transfer.DefaultFilename(which, now)
				}
				if err := os.WriteFile(path, data, 0o644); err != nil {
					return fmt.Errorf("failed to write export: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %s to %s\n", collectionName(which), path)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (- for stdout, default wine-<collection>-<date>.json)")
	return cmd
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

func collectionName(which model.Collection) string {
	switch which {
	case model.History:
		return "history"
	case model.Both:
		return "inventory and history"
	default:
		return "inventory"
	}
}
