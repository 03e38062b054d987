package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"cellar/internal/cellar"
	"cellar/internal/db"
	"cellar/internal/model"
	"cellar/internal/util"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	var fields model.EntryFields

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a wine to the cellar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(a *app) error {
				res, err := a.engine.AddCellarEntry(cmd.Context(), fields)
				if err := a.persisted(cmd, err); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", describeWine(*res.Cellar), shortID(res.Cellar.ID))
				return nil
			})
		},
	}
	bindFieldFlags(cmd, &fields, cellarFieldFlags)
	return cmd
}

func newEditCommand(ctx *commandContext) *cobra.Command {
	var fields model.EntryFields

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change fields of a cellar entry",
		Long:  "Change fields of a cellar entry. Only the flags you pass are changed; --quantity 0 removes the wine.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(a *app) error {
				id, err := resolveCellarID(a.engine, args[0])
				if err != nil {
					return err
				}
				current, _ := a.engine.CellarEntry(id)
				merged := cellar.FieldsFromCellar(current)
				mergeChangedFields(cmd, fields, &merged, cellarFieldFlags)

				res, err := a.engine.EditCellarEntry(cmd.Context(), id, merged)
				if err := a.persisted(cmd, err); err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				switch {
				case res.Removed:
					fmt.Fprintf(out, "Removed %s\n", describeWine(current))
				case res.Cellar != nil:
					fmt.Fprintf(out, "Updated %s\n", describeWine(*res.Cellar))
				}
				return nil
			})
		},
	}
	bindFieldFlags(cmd, &fields, cellarFieldFlags)
	return cmd
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var filter cellar.Filter

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the wines in the cellar",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(a *app) error {
				entries := a.engine.Search(filter)
				if len(entries) == 0 {
					if filter.Query != "" || filter.Varietal != "" {
						fmt.Fprintln(cmd.OutOrStdout(), "No wines match your search")
					} else {
						fmt.Fprintln(cmd.OutOrStdout(), "Cellar is empty")
					}
					return nil
				}
				fmt.Fprint(cmd.OutOrStdout(), renderInventory(a.engine, entries))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&filter.Query, "search", "s", "", "Match name, producer or region")
	cmd.Flags().StringVar(&filter.Varietal, "varietal", "", "Only show this varietal")
	return cmd
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one cellar entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(a *app) error {
				id, err := resolveCellarID(a.engine, args[0])
				if err != nil {
					return err
				}
				entry, _ := a.engine.CellarEntry(id)
				printCellarEntry(cmd.OutOrStdout(), a.engine, entry)
				return nil
			})
		},
	}
}

func newAdjustCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "adjust ID DELTA",
		Short: "Add or remove bottles (e.g. adjust 3f2a +2)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			delta, err := strconv.Atoi(strings.TrimPrefix(args[1], "+"))
			if err != nil {
				return fmt.Errorf("invalid bottle count %q", args[1])
			}
			return ctx.withApp(cmd, func(a *app) error {
				id, err := resolveCellarID(a.engine, args[0])
				if err != nil {
					return err
				}
				before, _ := a.engine.CellarEntry(id)
				res, err := a.engine.AdjustQuantity(cmd.Context(), id, delta)
				if err := a.persisted(cmd, err); err != nil {
					return err
				}
				printQuantityChange(cmd.OutOrStdout(), before, res)
				return nil
			})
		},
	}
	// Negative deltas must not parse as flags.
	cmd.Flags().SetInterspersed(false)
	return cmd
}

func newDrinkCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "drink ID",
		Short: "Open a bottle: log it in history and take it out of the cellar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(a *app) error {
				id, err := resolveCellarID(a.engine, args[0])
				if err != nil {
					return err
				}
				before, _ := a.engine.CellarEntry(id)
				res, err := a.engine.ConsumeEntry(cmd.Context(), id)
				if err := a.persisted(cmd, err); err != nil {
					return err
				}
				if res.History != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "Logged tasting %s\n", shortID(res.History.ID))
				}
				printQuantityChange(cmd.OutOrStdout(), before, res)
				return nil
			})
		},
	}
}

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"delete"},
		Short:   "Delete a wine from the cellar",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(a *app) error {
				id, err := resolveCellarID(a.engine, args[0])
				if err != nil {
					return err
				}
				before, _ := a.engine.CellarEntry(id)
				_, err = a.engine.DeleteCellarEntry(cmd.Context(), id)
				if err := a.persisted(cmd, err); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", describeWine(before))
				return nil
			})
		},
	}
}

func newLogCommand(ctx *commandContext) *cobra.Command {
	var fields model.EntryFields

	cmd := &cobra.Command{
		Use:   "log ID",
		Short: "Log a tasting from a cellar entry with your notes and rating",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(a *app) error {
				id, err := resolveCellarID(a.engine, args[0])
				if err != nil {
					return err
				}
				before, _ := a.engine.CellarEntry(id)
				merged := cellar.TastingFieldsFromCellar(before, util.TodayISO(a.engine.Now()))
				mergeChangedFields(cmd, fields, &merged, historyFieldFlags)

				res, err := a.engine.LogFromCellar(cmd.Context(), id, merged)
				if err := a.persisted(cmd, err); err != nil {
					return err
				}
				if res.History != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "Logged tasting %s %s\n", shortID(res.History.ID), util.FormatRatingStars(res.History.Rating))
				}
				printQuantityChange(cmd.OutOrStdout(), before, res)
				return nil
			})
		},
	}
	bindFieldFlags(cmd, &fields, historyFieldFlags)
	return cmd
}

func newRecommendCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "recommend",
		Aliases: []string{"now"},
		Short:   "Show the wines to drink now, most urgent first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(a *app) error {
				picks := a.engine.Recommendations()
				if len(picks) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Nothing is in its drink window right now")
					return nil
				}
				year := a.engine.CurrentYear()
				rows := make([][]string, 0, len(picks))
				for i, e := range picks {
					rows = append(rows, []string{
						strconv.Itoa(i + 1),
						shortID(e.ID),
						describeWine(e),
						util.FormatWindow(e.DrinkFrom, e.DrinkTo),
						yearsLeftLabel(cellar.YearsLeft(e, year)),
						strconv.Itoa(e.Quantity),
					})
				}
				fmt.Fprint(cmd.OutOrStdout(), renderTable(
					[]string{"#", "ID", "Wine", "Window", "Left", "Qty"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
				))
				return nil
			})
		},
	}
}

func newStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize the cellar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(a *app) error {
				stats := a.engine.Stats()
				rows := [][]string{
					{"Wines", strconv.Itoa(stats.Wines)},
					{"Bottles", strconv.Itoa(stats.Bottles)},
					{"Total value", util.FormatPrice(stats.TotalValue)},
					{"Tastings", strconv.Itoa(stats.Tastings)},
				}
				saved, err := a.store.UpdatedAt(cmd.Context(), db.InventoryKey)
				if err != nil {
					return err
				}
				if saved != "" {
					rows = append(rows, []string{"Last saved", saved})
				}
				fmt.Fprint(cmd.OutOrStdout(), renderTable([]string{"Metric", "Value"}, rows, []columnAlignment{alignLeft, alignRight}))
				return nil
			})
		},
	}
}

func renderInventory(e *cellar.Engine, entries []model.CellarEntry) string {
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, []string{
			shortID(entry.ID),
			util.TruncateString(entry.Name, 32),
			util.TruncateString(entry.Producer, 24),
			util.FormatVintage(entry.Vintage),
			entry.Varietal,
			entry.Region,
			strconv.Itoa(entry.Quantity),
			util.FormatWindow(entry.DrinkFrom, entry.DrinkTo),
			e.Status(entry).Label(),
			util.FormatPrice(entry.Price),
		})
	}
	return renderTable(
		[]string{"ID", "Wine", "Producer", "Vintage", "Varietal", "Region", "Qty", "Window", "Status", "Price"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignRight},
	)
}

func printCellarEntry(w io.Writer, e *cellar.Engine, entry model.CellarEntry) {
	rows := [][]string{
		{"ID", entry.ID},
		{"Name", entry.Name},
		{"Producer", entry.Producer},
		{"Vintage", util.FormatVintage(entry.Vintage)},
		{"Varietal", entry.Varietal},
		{"Region", entry.Region},
		{"Quantity", strconv.Itoa(entry.Quantity)},
		{"Drink window", util.FormatWindow(entry.DrinkFrom, entry.DrinkTo)},
		{"Status", e.Status(entry).Label()},
		{"Location", entry.Location},
		{"Price", util.FormatPrice(entry.Price)},
		{"Notes", entry.Notes},
	}
	fmt.Fprint(w, renderTable([]string{"Field", "Value"}, rows, nil))
}

func printQuantityChange(w io.Writer, before model.CellarEntry, res cellar.Result) {
	switch {
	case res.Removed:
		fmt.Fprintf(w, "%s is gone from the cellar\n", describeWine(before))
	case res.Cellar != nil:
		fmt.Fprintf(w, "%s: %d bottle%s left\n", describeWine(*res.Cellar), res.Cellar.Quantity, plural(res.Cellar.Quantity))
	}
}

// describeWine renders "Producer Name Vintage", skipping empty parts.
func describeWine(e model.CellarEntry) string {
	return wineLabel(e.Producer, e.Name, e.Vintage)
}

func wineLabel(producer, name string, vintage *int) string {
	parts := make([]string, 0, 3)
	if producer != "" {
		parts = append(parts, producer)
	}
	if name != "" {
		parts = append(parts, name)
	}
	if vintage != nil {
		parts = append(parts, strconv.Itoa(*vintage))
	}
	if len(parts) == 0 {
		return "Unnamed wine"
	}
	return strings.Join(parts, " ")
}

func yearsLeftLabel(n int) string {
	switch {
	case n <= 0:
		return "last year"
	case n == 1:
		return "1 year"
	default:
		return fmt.Sprintf("%d years", n)
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
