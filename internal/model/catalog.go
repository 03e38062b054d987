package model

import (
	"strings"

	"golang.org/x/text/cases"
)

// RegionOther is the catch-all region.
const RegionOther = "Other"

// Varietals lists the recognized grape varieties in display order.
var Varietals = []string{
	"Cabernet Sauvignon",
	"Pinot Noir",
	"Merlot",
	"Syrah/Shiraz",
	"Zinfandel",
	"Chardonnay",
	"Sauvignon Blanc",
	"Riesling",
	"Pinot Grigio",
	"Rosé",
	"Champagne/Sparkling",
	"Other Red",
	"Other White",
}

// Regions lists the recognized wine regions in display order.
var Regions = []string{
	"Napa Valley",
	"Sonoma",
	"Burgundy",
	"Bordeaux",
	"Rhône",
	"Tuscany",
	"Piedmont",
	"Rioja",
	"Willamette Valley",
	"Barossa Valley",
	"Marlborough",
	RegionOther,
}

var folder = cases.Fold()

// Fold returns a case-folded, trimmed form of s for comparisons.
func Fold(s string) string {
	return folder.String(strings.TrimSpace(s))
}

func lookup(list []string, value string) (string, bool) {
	target := Fold(value)
	if target == "" {
		return "", false
	}
	for _, item := range list {
		if Fold(item) == target {
			return item, true
		}
	}
	return "", false
}

// KnownVarietal returns the canonical spelling of value if it is a recognized varietal.
func KnownVarietal(value string) (string, bool) {
	return lookup(Varietals, value)
}

// KnownRegion returns the canonical spelling of value if it is a recognized region.
func KnownRegion(value string) (string, bool) {
	return lookup(Regions, value)
}

// NormalizeVarietal canonicalizes recognized varietals and keeps free text otherwise.
func NormalizeVarietal(value string) string {
	if v, ok := KnownVarietal(value); ok {
		return v
	}
	return strings.TrimSpace(value)
}

// NormalizeRegion canonicalizes recognized regions; anything else becomes "Other".
func NormalizeRegion(value string) string {
	if r, ok := KnownRegion(value); ok {
		return r
	}
	return RegionOther
}
