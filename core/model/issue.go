package model

// Severity grades validation findings. Critical and high block
// publication; info is advisory only.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Blocking reports whether the severity prevents a run from completing.
func (s Severity) Blocking() bool { return s >= SeverityHigh }

// Category names the validator that produced an issue.
type Category int

const (
	CategorySlot Category = iota
	CategoryAircraft
	CategoryCrew
	CategoryMCT
	CategoryCurfew
	CategoryRegulatory
	CategoryRouting
	CategoryPattern
)

func (c Category) String() string {
	switch c {
	case CategorySlot:
		return "slot"
	case CategoryAircraft:
		return "aircraft"
	case CategoryCrew:
		return "crew"
	case CategoryMCT:
		return "mct"
	case CategoryCurfew:
		return "curfew"
	case CategoryRegulatory:
		return "regulatory"
	case CategoryRouting:
		return "routing"
	case CategoryPattern:
		return "pattern"
	default:
		return "unknown"
	}
}

// Categories lists all validator categories in detection order.
func Categories() []Category {
	return []Category{
		CategorySlot, CategoryAircraft, CategoryCrew, CategoryMCT,
		CategoryCurfew, CategoryRegulatory, CategoryRouting, CategoryPattern,
	}
}

// Issue is one validation finding. Issues are pure values produced by
// validators and never mutated afterwards.
type Issue struct {
	Category          Category
	Severity          Severity
	Kind              string // machine-readable finding type, e.g. "insufficient_turnaround"
	Occurrences       []string
	Resource          ResourceKey
	Description       string
	RecommendedAction string
	Fields            map[string]any // typed extras per Kind
}
