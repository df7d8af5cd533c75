package league

// Category describes one roto scoring category.
type Category struct {
	Name string
	Type PlayerType
	// LowerIsBetter ranks ascending (ERA, WHIP).
	LowerIsBetter bool
	// Rate categories are valued as marginal impact over a baseline.
	Rate bool
	// Exposure is the playing time stat that scales a player's rate impact.
	Exposure string
	// TeamExposure scales team totals in historical standings.
	TeamExposure string
	// Components sum into the category when no direct column exists.
	Components []string
	// Aliases are alternative column names, checked in order.
	Aliases []string
}

var categories = map[string]Category{
	"R":   {Name: "R", Type: Hitter},
	"RBI": {Name: "RBI", Type: Hitter},
	"SB":  {Name: "SB", Type: Hitter},
	"HR":  {Name: "HR", Type: Hitter},
	"OBP": {Name: "OBP", Type: Hitter, Rate: true, Exposure: StatPA, TeamExposure: StatAB},
	"SLG": {Name: "SLG", Type: Hitter, Rate: true, Exposure: StatAB, TeamExposure: StatAB},
	"AVG": {Name: "AVG", Type: Hitter, Rate: true, Exposure: StatAB, TeamExposure: StatAB},

	"K":      {Name: "K", Type: Pitcher, Aliases: []string{"SO"}},
	"W":      {Name: "W", Type: Pitcher},
	"SV":     {Name: "SV", Type: Pitcher},
	"W_QS":   {Name: "W_QS", Type: Pitcher, Components: []string{"W", "QS"}},
	"SV_HLD": {Name: "SV_HLD", Type: Pitcher, Components: []string{"SV", "HLD"}, Aliases: []string{"SVH"}},
	"ERA":    {Name: "ERA", Type: Pitcher, LowerIsBetter: true, Rate: true, Exposure: StatIP, TeamExposure: StatIP},
	"WHIP":   {Name: "WHIP", Type: Pitcher, LowerIsBetter: true, Rate: true, Exposure: StatIP, TeamExposure: StatIP},
}

// LookupCategory returns the definition for name.
func LookupCategory(name string) (Category, bool) {
	c, ok := categories[name]
	return c, ok
}

// Resolve reads the category value from a column lookup: the direct column,
// then aliases, then the sum of components. ok is false when none exist; a
// partially present compound counts missing components as zero.
func (c Category) Resolve(get func(col string) (float64, bool)) (float64, bool) {
	if v, ok := get(c.Name); ok {
		return v, true
	}
	for _, a := range c.Aliases {
		if v, ok := get(a); ok {
			return v, true
		}
	}
	if len(c.Components) == 0 {
		return 0, false
	}
	var sum float64
	found := false
	for _, comp := range c.Components {
		if v, ok := get(comp); ok {
			sum += v
			found = true
		}
	}
	return sum, found
}

// Complete reports whether the category can be read without imputing a
// missing component.
func (c Category) Complete(has func(col string) bool) bool {
	if has(c.Name) {
		return true
	}
	for _, a := range c.Aliases {
		if has(a) {
			return true
		}
	}
	if len(c.Components) == 0 {
		return false
	}
	for _, comp := range c.Components {
		if !has(comp) {
			return false
		}
	}
	return true
}

// Columns lists every column name that can feed the category.
func (c Category) Columns() []string {
	out := []string{c.Name}
	out = append(out, c.Aliases...)
	return append(out, c.Components...)
}
