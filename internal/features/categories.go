package features

import (
	"sort"
	"strings"
)

// CategoryTableVersion identifies the category encoding table. The forecast
// model artifact records the table version it was trained against, so the
// encoding may only change together with a version bump.
const CategoryTableVersion = 1

// CategoryOtherID is the reserved encoding for categories outside the closed
// table. Unknown categories map here instead of failing extraction.
const CategoryOtherID = 0

// CategoryProfile carries the per-category priors used by the analyzers.
type CategoryProfile struct {
	Name                string
	ID                  int
	ExpectedCadence     float64 // Expected invoices per 30 days
	DefaultDurationDays float64 // Assumed matter duration for extrapolation
}

// categoryTable is the closed lookup table, keyed by normalized name.
var categoryTable = map[string]CategoryProfile{
	"litigation":  {Name: "litigation", ID: 1, ExpectedCadence: 1.0, DefaultDurationDays: 540},
	"corporate":   {Name: "corporate", ID: 2, ExpectedCadence: 0.8, DefaultDurationDays: 270},
	"employment":  {Name: "employment", ID: 3, ExpectedCadence: 0.9, DefaultDurationDays: 360},
	"ip":          {Name: "ip", ID: 4, ExpectedCadence: 0.7, DefaultDurationDays: 450},
	"real_estate": {Name: "real_estate", ID: 5, ExpectedCadence: 0.6, DefaultDurationDays: 300},
	"regulatory":  {Name: "regulatory", ID: 6, ExpectedCadence: 0.8, DefaultDurationDays: 360},
	"tax":         {Name: "tax", ID: 7, ExpectedCadence: 0.5, DefaultDurationDays: 240},
}

// otherProfile is returned for any category not in the table.
var otherProfile = CategoryProfile{
	Name:                "other",
	ID:                  CategoryOtherID,
	ExpectedCadence:     0.8,
	DefaultDurationDays: 365,
}

// LookupCategory resolves a matter category to its profile. Lookup is
// case-insensitive and tolerates surrounding whitespace; anything unknown
// resolves to the reserved "other" profile.
func LookupCategory(name string) CategoryProfile {
	key := strings.ToLower(strings.TrimSpace(name))
	if profile, ok := categoryTable[key]; ok {
		return profile
	}
	return otherProfile
}

// CategoryNames returns the names in the closed table, sorted and excluding
// "other".
func CategoryNames() []string {
	names := make([]string, 0, len(categoryTable))
	for name := range categoryTable {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
