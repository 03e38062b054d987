package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"cellar/internal/enrich"
	"cellar/internal/model"
	"cellar/internal/util"
)

var errScanDisabled = fmt.Errorf("%w: set ANTHROPIC_API_KEY or OPENAI_API_KEY to scan labels", enrich.ErrNoProvider)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var toHistory bool
	var save bool

	cmd := &cobra.Command{
		Use:   "scan IMAGE",
		Short: "Read a wine label photo and look up its drink window",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			image, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read image: %w", err)
			}
			return ctx.withApp(cmd, func(a *app) error {
				if !a.pipeline.Enabled() {
					return errScanDisabled
				}
				fmt.Fprintln(cmd.ErrOrStderr(), "Reading label...")
				res := a.pipeline.Scan(cmd.Context(), image, enrich.MediaType(args[0], image))
				if err := cmd.Context().Err(); err != nil {
					return err
				}
				if res.Warning != "" {
					return errors.New(res.Warning)
				}

				fields := res.Fields(util.TodayISO(a.engine.Now()))
				printDraft(cmd.OutOrStdout(), fields, toHistory)
				if res.Window == nil {
					fmt.Fprintln(cmd.ErrOrStderr(), "No drink window found; defaults will apply.")
				}
				if !save {
					return nil
				}

				if toHistory {
					out, err := a.engine.AddHistoryEntry(cmd.Context(), fields)
					if err := a.persisted(cmd, err); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Logged tasting %s\n", shortID(out.History.ID))
					return nil
				}
				out, err := a.engine.AddCellarEntry(cmd.Context(), fields)
				if err := a.persisted(cmd, err); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", describeWine(*out.Cellar), shortID(out.Cellar.ID))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&toHistory, "history", false, "Treat the scan as a tasting instead of a cellar entry")
	cmd.Flags().BoolVar(&save, "save", false, "Save the scanned wine")
	return cmd
}

func printDraft(w io.Writer, f model.EntryFields, tasting bool) {
	rows := [][]string{
		{"Name", f.Name},
		{"Producer", f.Producer},
		{"Vintage", f.Vintage},
		{"Varietal", f.Varietal},
		{"Region", f.Region},
	}
	if tasting {
		rows = append(rows, []string{"Opened", f.DrinkDate})
	} else {
		rows = append(rows,
			[]string{"Drink from", f.DrinkFrom},
			[]string{"Drink to", f.DrinkTo},
			[]string{"Notes", f.Notes},
		)
	}
	fmt.Fprint(w, renderTable([]string{"Field", "Value"}, rows, nil))
}
