package criteria

import "fmt"

// Target criteria keys recognized by the validator and the evaluators.
const (
	KeyRoomType     = "room_type"
	KeyResourceType = "resource_type"
	KeyItemType     = "item_type"
	KeyStat         = "stat"
	KeyQuestType    = "quest_type"
	KeyReachType    = "reach_type"
	KeyMinLevel     = "min_level"
)

// Reach criteria values accepted for KeyReachType.
const (
	ReachDwellerCount = "dweller_count"
	ReachPopulation   = "population"
	ReachLevel        = "level"
)

var validReachTypes = map[string]struct{}{
	ReachDwellerCount: {},
	ReachPopulation:   {},
	ReachLevel:        {},
}

// ValidateTargetEntity checks an objective's target criteria map against
// its objective kind at authoring time. It returns human-readable error
// strings; an empty slice means the criteria are valid. Wildcard values
// always pass.
func ValidateTargetEntity(objectiveKind string, target map[string]string) []string {
	var problems []string

	switch objectiveKind {
	case "build":
		if value, ok := target[KeyRoomType]; ok && !IsWildcard(value) {
			if _, known := NormalizeRoomType(value); !known {
				problems = append(problems, fmt.Sprintf("unknown room_type %q", value))
			}
		}
	case "collect":
		if value, ok := target[KeyResourceType]; ok && !IsWildcard(value) {
			if _, known := NormalizeResourceType(value); !known {
				problems = append(problems, fmt.Sprintf("unknown resource_type %q", value))
			}
		}
		if value, ok := target[KeyItemType]; ok && !IsWildcard(value) {
			if _, known := NormalizeItemType(value); !known {
				problems = append(problems, fmt.Sprintf("unknown item_type %q", value))
			}
		}
	case "reach":
		value, ok := target[KeyReachType]
		if !ok || value == "" {
			problems = append(problems, "reach objectives require a reach_type")
			break
		}
		if _, known := validReachTypes[value]; !known {
			problems = append(problems, fmt.Sprintf("unknown reach_type %q", value))
		}
	}

	return problems
}
