// Package domain models vaults, their dwellers and rooms, and the
// gameplay operations that mutate them. Every state change is persisted
// first and then announced on the game event bus.
package domain

import "time"

// Stat tokens for the seven dweller attributes.
const (
	StatStrength     = "strength"
	StatPerception   = "perception"
	StatEndurance    = "endurance"
	StatCharisma     = "charisma"
	StatIntelligence = "intelligence"
	StatAgility      = "agility"
	StatLuck         = "luck"
)

// Stats lists the stat tokens in attribute order.
func Stats() []string {
	return []string{
		StatStrength,
		StatPerception,
		StatEndurance,
		StatCharisma,
		StatIntelligence,
		StatAgility,
		StatLuck,
	}
}

// Special holds a dweller's seven attribute values.
type Special struct {
	Strength     int
	Perception   int
	Endurance    int
	Charisma     int
	Intelligence int
	Agility      int
	Luck         int
}

// Get returns the value of one stat token, zero for unknown tokens.
func (s Special) Get(stat string) int {
	switch stat {
	case StatStrength:
		return s.Strength
	case StatPerception:
		return s.Perception
	case StatEndurance:
		return s.Endurance
	case StatCharisma:
		return s.Charisma
	case StatIntelligence:
		return s.Intelligence
	case StatAgility:
		return s.Agility
	case StatLuck:
		return s.Luck
	default:
		return 0
	}
}

// Add returns a copy with one stat token raised by delta. Unknown tokens
// return the receiver unchanged.
func (s Special) Add(stat string, delta int) Special {
	switch stat {
	case StatStrength:
		s.Strength += delta
	case StatPerception:
		s.Perception += delta
	case StatEndurance:
		s.Endurance += delta
	case StatCharisma:
		s.Charisma += delta
	case StatIntelligence:
		s.Intelligence += delta
	case StatAgility:
		s.Agility += delta
	case StatLuck:
		s.Luck += delta
	}
	return s
}

// Highest returns the token of the dweller's strongest stat. Ties break
// in attribute order.
func (s Special) Highest() string {
	best := StatStrength
	for _, stat := range Stats() {
		if s.Get(stat) > s.Get(best) {
			best = stat
		}
	}
	return best
}

// Vault is one player shelter.
type Vault struct {
	ID          string
	OwnerUserID string
	Name        string
	CreatedAt   time.Time
}

// Dweller is one vault inhabitant.
type Dweller struct {
	ID      string
	VaultID string
	Name    string
	Level   int
	// RoomID is the assigned room, empty while idle.
	RoomID  string
	Special Special
}

// Room is one constructed vault room.
type Room struct {
	ID      string
	VaultID string
	// Type is a canonical room token from the criteria vocabulary.
	Type  string
	Level int
}

// roomGoverningStats maps canonical room tokens to the stat that governs
// work efficiency there. Rooms with no governing stat are absent.
var roomGoverningStats = map[string]string{
	"power_generator": StatStrength,
	"nuclear_reactor": StatStrength,
	"diner":           StatAgility,
	"garden":          StatAgility,
	"water_treatment": StatPerception,
	"water_purifier":  StatPerception,
	"medbay":          StatIntelligence,
	"science_lab":     StatIntelligence,
	"living_room":     StatCharisma,
	"radio_studio":    StatCharisma,
	"storage_room":    StatEndurance,
	"game_room":       StatLuck,
}

// GoverningStat returns the stat governing work in rooms of the given
// canonical type. The second return is false for rooms with no governing
// stat, where no assignment counts as correct.
func GoverningStat(roomType string) (string, bool) {
	stat, ok := roomGoverningStats[roomType]
	return stat, ok
}
