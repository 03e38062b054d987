package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"cellar/internal/cellar"
	"cellar/internal/model"
	"cellar/internal/util"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:     "history",
		Aliases: []string{"tastings"},
		Short:   "Browse and manage logged tastings",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listHistory(cmd, ctx)
		},
	}

	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryAddCommand(ctx))
	historyCmd.AddCommand(newHistoryEditCommand(ctx))
	historyCmd.AddCommand(newHistoryRemoveCommand(ctx))

	return historyCmd
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tastings, most recent first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listHistory(cmd, ctx)
		},
	}
}

func listHistory(cmd *cobra.Command, ctx *commandContext) error {
	return ctx.withApp(cmd, func(a *app) error {
		entries := a.engine.History()
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No tastings logged yet")
			return nil
		}
		now := a.engine.Now()
		rows := make([][]string, 0, len(entries))
		for _, h := range entries {
			rows = append(rows, []string{
				shortID(h.ID),
				util.FormatDateHuman(h.DrinkDate, now),
				util.TruncateString(wineLabel(h.Producer, h.Name, h.Vintage), 40),
				h.Varietal,
				util.FormatRatingStars(h.Rating),
				util.TruncateString(h.TastingNotes, 40),
			})
		}
		fmt.Fprint(cmd.OutOrStdout(), renderTable(
			[]string{"ID", "Opened", "Wine", "Varietal", "Rating", "Notes"},
			rows,
			nil,
		))
		return nil
	})
}

func newHistoryAddCommand(ctx *commandContext) *cobra.Command {
	var fields model.EntryFields

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Log a tasting of a wine that was never in the cellar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(a *app) error {
				res, err := a.engine.AddHistoryEntry(cmd.Context(), fields)
				if err := a.persisted(cmd, err); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Logged tasting %s on %s\n", shortID(res.History.ID), util.FormatDate(res.History.DrinkDate))
				return nil
			})
		},
	}
	bindFieldFlags(cmd, &fields, historyFieldFlags)
	return cmd
}

func newHistoryEditCommand(ctx *commandContext) *cobra.Command {
	var fields model.EntryFields

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change fields of a tasting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(a *app) error {
				id, err := resolveHistoryID(a.engine, args[0])
				if err != nil {
					return err
				}
				current, _ := a.engine.HistoryEntry(id)
				merged := cellar.FieldsFromHistory(current)
				mergeChangedFields(cmd, fields, &merged, historyFieldFlags)

				res, err := a.engine.EditHistoryEntry(cmd.Context(), id, merged)
				if err := a.persisted(cmd, err); err != nil {
					return err
				}
				if res.History != nil {
					printHistoryEntry(cmd.OutOrStdout(), *res.History)
				}
				return nil
			})
		},
	}
	bindFieldFlags(cmd, &fields, historyFieldFlags)
	return cmd
}

func newHistoryRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"delete"},
		Short:   "Delete a tasting",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(a *app) error {
				id, err := resolveHistoryID(a.engine, args[0])
				if err != nil {
					return err
				}
				_, err = a.engine.DeleteHistoryEntry(cmd.Context(), id)
				if err := a.persisted(cmd, err); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed tasting %s\n", shortID(id))
				return nil
			})
		},
	}
}

func printHistoryEntry(w io.Writer, h model.HistoryEntry) {
	rows := [][]string{
		{"ID", h.ID},
		{"Wine", wineLabel(h.Producer, h.Name, h.Vintage)},
		{"Varietal", h.Varietal},
		{"Region", h.Region},
		{"Opened", util.FormatDate(h.DrinkDate)},
		{"Rating", util.FormatRatingStars(h.Rating)},
		{"Notes", h.TastingNotes},
	}
	fmt.Fprint(w, renderTable([]string{"Field", "Value"}, rows, nil))
}
