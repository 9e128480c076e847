package rewards

// ActivityType identifies an action a user can record.
type ActivityType string

const (
	WorkProject      ActivityType = "work_project"
	Exercise         ActivityType = "exercise"
	Learning         ActivityType = "learning"
	SaveExpenses     ActivityType = "save_expenses"
	Rest             ActivityType = "rest"
	Custom           ActivityType = "custom"
	SeasonCompletion ActivityType = "season_completion"
	Milestone        ActivityType = "milestone"
)

// AllActivityTypes returns every activity type in display order.
func AllActivityTypes() []ActivityType {
	return []ActivityType{
		WorkProject, Exercise, Learning, SaveExpenses, Rest, Custom,
		SeasonCompletion, Milestone,
	}
}

// Valid reports whether t is a known activity type.
func (t ActivityType) Valid() bool {
	switch t {
	case WorkProject, Exercise, Learning, SaveExpenses, Rest, Custom,
		SeasonCompletion, Milestone:
		return true
	default:
		return false
	}
}

// DisplayName returns a human-readable label for the activity type.
func (t ActivityType) DisplayName() string {
	switch t {
	case WorkProject:
		return "Work Project"
	case Exercise:
		return "Exercise"
	case Learning:
		return "Learning"
	case SaveExpenses:
		return "Save Expenses"
	case Rest:
		return "Rest"
	case Custom:
		return "Custom"
	case SeasonCompletion:
		return "Season Completion"
	case Milestone:
		return "Milestone"
	default:
		return string(t)
	}
}

// Kind classifies an activity for effort tracking and burnout gating.
type Kind string

const (
	// KindWork actions build effort streaks and are blocked during burnout.
	KindWork Kind = "work"
	// KindRecovery actions feed the weekly recovery gain.
	KindRecovery Kind = "recovery"
	// KindSystem awards are granted by the host and never touch effort.
	KindSystem Kind = "system"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindWork, KindRecovery, KindSystem:
		return true
	default:
		return false
	}
}

// Category is one of the five parallel XP counters.
type Category string

const (
	Capacity    Category = "capacity"
	Engines     Category = "engines"
	Oxygen      Category = "oxygen"
	Meaning     Category = "meaning"
	Optionality Category = "optionality"
)

// AllCategories returns the categories in display order.
func AllCategories() []Category {
	return []Category{Capacity, Engines, Oxygen, Meaning, Optionality}
}

// DisplayName returns a human-readable label for the category.
func (c Category) DisplayName() string {
	switch c {
	case Capacity:
		return "Capacity"
	case Engines:
		return "Engines"
	case Oxygen:
		return "Oxygen"
	case Meaning:
		return "Meaning"
	case Optionality:
		return "Optionality"
	default:
		return string(c)
	}
}

// Valid reports whether c is one of the five categories.
func (c Category) Valid() bool {
	switch c {
	case Capacity, Engines, Oxygen, Meaning, Optionality:
		return true
	default:
		return false
	}
}
