package course

import "sort"

// Module is one addressable unit of course content.
type Module struct {
	ID      int        `json:"id"`
	Course  CourseName `json:"course"`
	Unit    string     `json:"unit"`
	Section string     `json:"section"`
	Title   string     `json:"title"`
	Number  int        `json:"number"`

	// Resource is embedded by the module listing. Only its id and type are
	// relied upon; the full content is fetched when the module is opened.
	Resource *Resource `json:"resource,omitempty"`
}

// ResourceID returns the id of the module's resource, or 0 if the listing
// carried none.
func (m Module) ResourceID() int {
	if m.Resource == nil {
		return 0
	}
	return m.Resource.ID
}

// ModuleState is how a module appears to the learner.
type ModuleState int

const (
	ModuleDone    ModuleState = iota // Passed earlier, revisitable
	ModuleCurrent                    // The frontier module
	ModuleLocked                     // Beyond the frontier
)

// StateOf classifies a module against the learner's progress.
func StateOf(m Module, p CourseProgress) ModuleState {
	switch {
	case m.Number < p.CurrModule:
		return ModuleDone
	case m.Number == p.CurrModule:
		return ModuleCurrent
	default:
		return ModuleLocked
	}
}

// Section groups modules under a heading within a unit.
type Section struct {
	Name    string
	Modules []Module
}

// Unit groups sections.
type Unit struct {
	Name     string
	Sections []Section
}

// GroupModules orders modules by number and groups them by unit and section,
// keeping first-appearance order for both.
func GroupModules(mods []Module) []Unit {
	sorted := make([]Module, len(mods))
	copy(sorted, mods)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Number < sorted[j].Number })

	var units []Unit
	unitIdx := map[string]int{}
	for _, m := range sorted {
		ui, ok := unitIdx[m.Unit]
		if !ok {
			units = append(units, Unit{Name: m.Unit})
			ui = len(units) - 1
			unitIdx[m.Unit] = ui
		}
		u := &units[ui]
		si := -1
		for i := range u.Sections {
			if u.Sections[i].Name == m.Section {
				si = i
				break
			}
		}
		if si < 0 {
			u.Sections = append(u.Sections, Section{Name: m.Section})
			si = len(u.Sections) - 1
		}
		u.Sections[si].Modules = append(u.Sections[si].Modules, m)
	}
	return units
}

// Flatten returns the modules of grouped units in display order.
func Flatten(units []Unit) []Module {
	var out []Module
	for _, u := range units {
		for _, s := range u.Sections {
			out = append(out, s.Modules...)
		}
	}
	return out
}
