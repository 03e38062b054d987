package cmd

import (
	"github.com/spf13/cobra"

	"cellar/internal/model"
)

type fieldFlag struct {
	name  string
	usage string
	field func(*model.EntryFields) *string
}

var cellarFieldFlags = []fieldFlag{
	{"name", "Wine name", func(f *model.EntryFields) *string { return &f.Name }},
	{"producer", "Producer or winery", func(f *model.EntryFields) *string { return &f.Producer }},
	{"vintage", "Vintage year", func(f *model.EntryFields) *string { return &f.Vintage }},
	{"varietal", "Grape varietal", func(f *model.EntryFields) *string { return &f.Varietal }},
	{"region", "Wine region", func(f *model.EntryFields) *string { return &f.Region }},
	{"quantity", "Number of bottles", func(f *model.EntryFields) *string { return &f.Quantity }},
	{"from", "First year of the drink window", func(f *model.EntryFields) *string { return &f.DrinkFrom }},
	{"to", "Last year of the drink window", func(f *model.EntryFields) *string { return &f.DrinkTo }},
	{"location", "Where the bottles are stored", func(f *model.EntryFields) *string { return &f.Location }},
	{"price", "Price per bottle", func(f *model.EntryFields) *string { return &f.Price }},
	{"notes", "Notes", func(f *model.EntryFields) *string { return &f.Notes }},
}

var historyFieldFlags = []fieldFlag{
	{"name", "Wine name", func(f *model.EntryFields) *string { return &f.Name }},
	{"producer", "Producer or winery", func(f *model.EntryFields) *string { return &f.Producer }},
	{"vintage", "Vintage year", func(f *model.EntryFields) *string { return &f.Vintage }},
	{"varietal", "Grape varietal", func(f *model.EntryFields) *string { return &f.Varietal }},
	{"region", "Wine region", func(f *model.EntryFields) *string { return &f.Region }},
	{"date", "Date opened (YYYY-MM-DD, default today)", func(f *model.EntryFields) *string { return &f.DrinkDate }},
	{"notes", "Tasting notes", func(f *model.EntryFields) *string { return &f.TastingNotes }},
	{"rating", "Rating from 1 to 5", func(f *model.EntryFields) *string { return &f.Rating }},
}

func bindFieldFlags(cmd *cobra.Command, dst *model.EntryFields, flags []fieldFlag) {
	for _, ff := range flags {
		cmd.Flags().StringVar(ff.field(dst), ff.name, "", ff.usage)
	}
}

// mergeChangedFields copies the flags the user set from src onto dst.
func mergeChangedFields(cmd *cobra.Command, src model.EntryFields, dst *model.EntryFields, flags []fieldFlag) {
	for _, ff := range flags {
		if cmd.Flags().Changed(ff.name) {
			*ff.field(dst) = *ff.field(&src)
		}
	}
}
