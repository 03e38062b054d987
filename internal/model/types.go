package model

// CellarEntry represents bottles of one wine currently held in the cellar.
type CellarEntry struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Producer  string `json:"producer"`
	Vintage   *int   `json:"vintage"`
	Varietal  string `json:"varietal"`
	Region    string `json:"region"`
	Quantity  int    `json:"quantity"`
	DrinkFrom int    `json:"drinkFrom"`
	DrinkTo   int    `json:"drinkTo"`
	Location  string `json:"location"`
	Price     string `json:"price"` // decimal string, "" when unknown
	Notes     string `json:"notes"`
}

// HistoryEntry represents one logged tasting.
type HistoryEntry struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Producer     string `json:"producer"`
	Vintage      *int   `json:"vintage"`
	Varietal     string `json:"varietal"`
	Region       string `json:"region"`
	DrinkDate    string `json:"drinkDate"` // ISO 8601 date (YYYY-MM-DD)
	TastingNotes string `json:"tastingNotes"`
	Rating       *int   `json:"rating"` // 1-5
}

// EntryFields is raw, user-typed input for creating or editing an entry.
// Every value is a string so forms, CLI flags and scan drafts share one shape;
// parsing and defaulting happen in the cellar engine.
type EntryFields struct {
	Name         string
	Producer     string
	Vintage      string
	Varietal     string
	Region       string
	Quantity     string
	DrinkFrom    string
	DrinkTo      string
	Location     string
	Price        string
	Notes        string
	DrinkDate    string
	TastingNotes string
	Rating       string
}

// Snapshot is a point-in-time copy of both collections.
type Snapshot struct {
	Inventory []CellarEntry
	History   []HistoryEntry
}

// Collection is a bitmask naming one or both collections.
type Collection int

const (
	Inventory Collection = 1 << iota
	History

	Both = Inventory | History
)

// Has reports whether c includes other.
func (c Collection) Has(other Collection) bool {
	return c&other != 0
}

// Stats summarizes the cellar.
type Stats struct {
	Wines      int
	Bottles    int
	TotalValue string
	Tastings   int
}

// Clone returns a deep copy of the entry.
func (e CellarEntry) Clone() CellarEntry {
	e.Vintage = cloneInt(e.Vintage)
	return e
}

// Clone returns a deep copy of the entry.
func (e HistoryEntry) Clone() HistoryEntry {
	e.Vintage = cloneInt(e.Vintage)
	e.Rating = cloneInt(e.Rating)
	return e
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}
