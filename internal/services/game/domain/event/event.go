// Package event defines the gameplay event vocabulary and the in-process
// bus used to fan events out to objective tracking.
//
// Events are facts about something that already happened in a vault.
// Emitters construct an Envelope, hand it to the bus, and never learn
// which subscribers exist or whether they succeeded.
package event

// Type identifies the kind of a gameplay event.
type Type string

const (
	// TypeResourceCollected records resources gathered in a vault.
	TypeResourceCollected Type = "resource.collected"
	// TypeItemCollected records an item added to vault storage.
	TypeItemCollected Type = "item.collected"
	// TypeRoomBuilt records a new room construction.
	TypeRoomBuilt Type = "room.built"
	// TypeRoomUpgraded records a room upgrade.
	TypeRoomUpgraded Type = "room.upgraded"
	// TypeDwellerTrained records a completed dweller training session.
	TypeDwellerTrained Type = "dweller.trained"
	// TypeDwellerAssigned records a dweller placed into a room.
	TypeDwellerAssigned Type = "dweller.assigned"
	// TypeDwellerAssignedCorrectly records an assignment that matches the
	// dweller's strongest stat.
	TypeDwellerAssignedCorrectly Type = "dweller.assigned_correctly"
	// TypeDwellerLeveledUp records a dweller reaching a new level.
	TypeDwellerLeveledUp Type = "dweller.leveled_up"
	// TypeQuestCompleted records a finished wasteland quest.
	TypeQuestCompleted Type = "quest.completed"
	// TypeObjectiveCompleted records an objective reaching its target.
	// Emitted by the evaluator framework itself, consumed by notification
	// plumbing; gameplay services never emit it directly.
	TypeObjectiveCompleted Type = "objective.completed"
)

// Envelope carries one event from an emitter through the bus.
type Envelope struct {
	Type    Type
	VaultID string
	// Payload holds the kind-specific record below. Subscribers read it
	// with a type assertion and treat a mismatch or zero fields the same
	// as an emitter that omitted the value.
	Payload any
}

// ResourceCollected is the payload for TypeResourceCollected.
type ResourceCollected struct {
	ResourceType string
	Amount       int
}

// ItemCollected is the payload for TypeItemCollected.
type ItemCollected struct {
	ItemType string
	Amount   int
}

// RoomBuilt is the payload for TypeRoomBuilt.
type RoomBuilt struct {
	RoomType string
}

// RoomUpgraded is the payload for TypeRoomUpgraded.
type RoomUpgraded struct {
	RoomType string
	Level    int
}

// DwellerTrained is the payload for TypeDwellerTrained.
type DwellerTrained struct {
	DwellerID   string
	StatTrained string
}

// DwellerAssigned is the payload for TypeDwellerAssigned.
type DwellerAssigned struct {
	DwellerID string
	RoomType  string
}

// DwellerAssignedCorrectly is the payload for TypeDwellerAssignedCorrectly.
type DwellerAssignedCorrectly struct {
	DwellerID string
	RoomType  string
	IsCorrect bool
}

// DwellerLeveledUp is the payload for TypeDwellerLeveledUp.
type DwellerLeveledUp struct {
	DwellerID string
	Level     int
}

// QuestCompleted is the payload for TypeQuestCompleted.
type QuestCompleted struct {
	QuestType string
}

// ObjectiveCompleted is the payload for TypeObjectiveCompleted.
type ObjectiveCompleted struct {
	ObjectiveID string
	Challenge   string
}
