package services

// Command describes one engagement command: how many members it selects,
// the aura delta it applies to each, and whether it is gated to the night
// window.
type Command struct {
	Name        string
	Description string
	Delta       int
	Count       int
	Night       bool
}

// Registry maps command names to their definitions.
type Registry map[string]Command

// NewRegistry builds the command registry, taking per-command deltas from
// the supplied table (config defaults plus any environment overrides).
func NewRegistry(points map[string]int) Registry {
	defs := []Command{
		{Name: "gay", Description: "Find today's Gay of the Day", Count: 1},
		{Name: "couple", Description: "Discover today's perfect couple", Count: 2},
		{Name: "simp", Description: "Crown the biggest simp", Count: 1},
		{Name: "toxic", Description: "Identify the toxic member", Count: 1},
		{Name: "cringe", Description: "Find the cringe master", Count: 1},
		{Name: "respect", Description: "Show ultimate respect", Count: 1},
		{Name: "sus", Description: "Spot suspicious behavior", Count: 1},
		{Name: "ghost", Description: "Nighttime spooky selection", Count: 1, Night: true},
	}

	reg := make(Registry, len(defs))
	for _, def := range defs {
		def.Delta = points[def.Name]
		reg[def.Name] = def
	}
	return reg
}

// Names returns the registered command names in registration order.
func (r Registry) Names() []string {
	ordered := []string{"gay", "couple", "simp", "toxic", "cringe", "respect", "sus", "ghost"}
	out := make([]string, 0, len(ordered))
	for _, name := range ordered {
		if _, ok := r[name]; ok {
			out = append(out, name)
		}
	}
	return out
}
