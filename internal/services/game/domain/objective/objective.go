// Package objective defines the goal catalog vocabulary and the per-vault
// assignment lifecycle.
package objective

// Kind identifies which evaluator serves an objective.
type Kind string

const (
	// KindCollect tracks resources or items gathered.
	KindCollect Kind = "collect"
	// KindBuild tracks rooms built or upgraded.
	KindBuild Kind = "build"
	// KindTrain tracks dweller training sessions.
	KindTrain Kind = "train"
	// KindAssign tracks dwellers placed into rooms.
	KindAssign Kind = "assign"
	// KindAssignCorrect tracks stat-matched room assignments.
	KindAssignCorrect Kind = "assign_correct"
	// KindReach tracks absolute vault milestones (population, level).
	KindReach Kind = "reach"
	// KindExpedition tracks completed wasteland quests.
	KindExpedition Kind = "expedition"
	// KindLevelUp tracks dwellers reaching a level threshold.
	KindLevelUp Kind = "level_up"
)

// Kinds lists every objective kind with a registered evaluator.
func Kinds() []Kind {
	return []Kind{
		KindCollect,
		KindBuild,
		KindTrain,
		KindAssign,
		KindAssignCorrect,
		KindReach,
		KindExpedition,
		KindLevelUp,
	}
}

// Category groups objectives by assignment cadence.
type Category string

const (
	// CategoryDaily objectives rotate every day, capped per vault.
	CategoryDaily Category = "daily"
	// CategoryWeekly objectives rotate every week, capped per vault.
	CategoryWeekly Category = "weekly"
	// CategoryAchievement objectives are permanent and uncapped.
	CategoryAchievement Category = "achievement"
)

// Objective is an immutable catalog template describing one goal
// independent of any vault. Created by seeding, read-only at runtime.
type Objective struct {
	ID           string
	Challenge    string
	Reward       string
	Category     Category
	Kind         Kind
	TargetEntity map[string]string
	TargetAmount int
}

// FullySpecified reports whether the template is complete enough to hand
// to players. A target amount of 1 or less marks an incompletely-specified
// template and keeps it out of assignment.
func (o Objective) FullySpecified() bool {
	return o.Challenge != "" && o.Kind != "" && o.TargetAmount > 1
}

// ProgressLink joins one vault to one catalog objective. Progress grows
// monotonically toward Total, except for reach-style kinds which store an
// absolute snapshot; IsCompleted transitions false to true exactly once.
type ProgressLink struct {
	VaultID     string
	ObjectiveID string
	Progress    int
	Total       int
	IsCompleted bool
}
