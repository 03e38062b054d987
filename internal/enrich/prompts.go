package enrich

import (
	"fmt"
	"strings"

	"cellar/internal/model"
)

func labelPrompt() string {
	return fmt.Sprintf(`Analyze this wine label and extract the following information. Respond ONLY with a JSON object, no markdown or explanation:
{
  "name": "wine name (e.g., 'Reserve Cabernet', 'Clos du Val')",
  "producer": "winery/producer name",
  "vintage": year as number or null if not visible,
  "varietal": "grape variety - must be one of: %s",
  "region": "wine region - should be one of: %s, or Other if not matching",
  "notes": "any other notable info from the label like vineyard designation, special notes, alcohol %%, etc."
}

If you can't determine a field, use null.`,
		strings.Join(model.Varietals, ", "),
		strings.Join(model.Regions[:len(model.Regions)-1], ", "),
	)
}

func windowPrompt(q WindowQuery) string {
	return fmt.Sprintf(`Search for the drink window (when to drink) for this wine: %s.

Look for information from CellarTracker, Wine Spectator, Vivino, or other wine databases about when this specific wine should be consumed.

Respond ONLY with a JSON object, no markdown:
{
  "drinkFrom": starting year as number,
  "drinkTo": ending year as number,
  "source": "where this info came from (e.g., 'CellarTracker community', 'Wine Spectator')",
  "confidence": "high" or "medium" or "low",
  "notes": "any relevant aging notes found"
}

If you can't find specific data for this wine, estimate based on the wine type and vintage, set confidence to "low", and note it's an estimate.`,
		q.Describe(),
	)
}
