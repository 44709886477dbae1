// Package criteria canonicalizes the free-form matching parameters stored
// on objective templates.
//
// Objective authors write criteria in whatever casing and separators they
// like ("Living Quarters", "bottle-caps"); gameplay emitters use their own
// vocabulary. Both sides funnel through the normalizers here so equality
// checks compare canonical lowercase-underscore tokens. Matching is exact:
// alias table first, canonical set second, nothing fuzzy.
package criteria

import "strings"

// Wildcard tokens accepted anywhere a criteria value means "match any".
const (
	WildcardStar = "*"
	WildcardAny  = "any"
)

// IsWildcard reports whether raw means "match any value of this field".
// An absent (empty) value counts as a wildcard.
func IsWildcard(raw string) bool {
	token := strings.TrimSpace(strings.ToLower(raw))
	return token == "" || token == WildcardStar || token == WildcardAny
}

var canonicalRoomTypes = map[string]struct{}{
	"living_room":     {},
	"power_generator": {},
	"diner":           {},
	"water_treatment": {},
	"storage_room":    {},
	"medbay":          {},
	"science_lab":     {},
	"radio_studio":    {},
	"training_room":   {},
	"game_room":       {},
	"garden":          {},
	"nuclear_reactor": {},
	"water_purifier":  {},
	"overseer_office": {},
}

var roomTypeAliases = map[string]string{
	"living_quarters": "living_room",
	"quarters":        "living_room",
	"residence":       "living_room",
	"power_plant":     "power_generator",
	"generator":       "power_generator",
	"cafeteria":       "diner",
	"kitchen":         "diner",
	"water_plant":     "water_treatment",
	"storage":         "storage_room",
	"warehouse":       "storage_room",
	"med_bay":         "medbay",
	"clinic":          "medbay",
	"hospital":        "medbay",
	"lab":             "science_lab",
	"laboratory":      "science_lab",
	"radio_room":      "radio_studio",
	"radio":           "radio_studio",
	"gym":             "training_room",
	"reactor":         "nuclear_reactor",
}

var canonicalResourceTypes = map[string]struct{}{
	"caps":      {},
	"food":      {},
	"water":     {},
	"power":     {},
	"stimpak":   {},
	"radaway":   {},
	"nuka_cola": {},
}

var resourceTypeAliases = map[string]string{
	"cap":         "caps",
	"money":       "caps",
	"bottle_caps": "caps",
	"meals":       "food",
	"rations":     "food",
	"h2o":         "water",
	"electricity": "power",
	"energy":      "power",
	"stimpaks":    "stimpak",
	"radaways":    "radaway",
	"cola":        "nuka_cola",
}

var canonicalItemTypes = map[string]struct{}{
	"weapon": {},
	"outfit": {},
	"junk":   {},
	"pet":    {},
	"recipe": {},
}

var itemTypeAliases = map[string]string{
	"weapons":    "weapon",
	"gun":        "weapon",
	"guns":       "weapon",
	"outfits":    "outfit",
	"clothes":    "outfit",
	"clothing":   "outfit",
	"armor":      "outfit",
	"scrap":      "junk",
	"pets":       "pet",
	"blueprint":  "recipe",
	"blueprints": "recipe",
}

// NormalizeRoomType canonicalizes a room kind criteria value.
// The second return is false when raw matches neither an alias nor a
// canonical token.
func NormalizeRoomType(raw string) (string, bool) {
	return normalize(raw, roomTypeAliases, canonicalRoomTypes)
}

// NormalizeResourceType canonicalizes a resource kind criteria value.
func NormalizeResourceType(raw string) (string, bool) {
	return normalize(raw, resourceTypeAliases, canonicalResourceTypes)
}

// NormalizeItemType canonicalizes an item kind criteria value.
func NormalizeItemType(raw string) (string, bool) {
	return normalize(raw, itemTypeAliases, canonicalItemTypes)
}

func normalize(raw string, aliases map[string]string, canonical map[string]struct{}) (string, bool) {
	token := tokenize(raw)
	if token == "" {
		return "", false
	}
	if mapped, ok := aliases[token]; ok {
		return mapped, true
	}
	if _, ok := canonical[token]; ok {
		return token, true
	}
	return "", false
}

// tokenize lowercases raw and folds spaces and hyphens into underscores.
func tokenize(raw string) string {
	token := strings.ToLower(strings.TrimSpace(raw))
	token = strings.ReplaceAll(token, "-", "_")
	token = strings.Join(strings.Fields(strings.ReplaceAll(token, "_", " ")), "_")
	return token
}
