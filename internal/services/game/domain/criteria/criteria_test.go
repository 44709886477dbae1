package criteria

import "testing"

func TestNormalizeRoomTypeAliasesAndCanonical(t *testing.T) {
	t.Parallel()

	fromAlias, ok := NormalizeRoomType("Living Quarters")
	if !ok {
		t.Fatal("expected alias to normalize")
	}
	fromCanonical, ok := NormalizeRoomType("living_room")
	if !ok {
		t.Fatal("expected canonical token to normalize")
	}
	if fromAlias != "living_room" || fromCanonical != "living_room" {
		t.Fatalf("expected both forms to reach living_room, got %q and %q", fromAlias, fromCanonical)
	}
}

func TestNormalizeRoomTypeSeparatorsAndCasing(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"POWER-PLANT":  "power_generator",
		"med bay":      "medbay",
		"Radio  Room":  "radio_studio",
		"training_room": "training_room",
	}
	for raw, want := range cases {
		got, ok := NormalizeRoomType(raw)
		if !ok {
			t.Fatalf("expected %q to normalize", raw)
		}
		if got != want {
			t.Fatalf("normalize %q: got %q, want %q", raw, got, want)
		}
	}
}

func TestNormalizeRoomTypeRejectsUnknown(t *testing.T) {
	t.Parallel()

	if token, ok := NormalizeRoomType("not_a_room"); ok {
		t.Fatalf("expected unknown room to fail, got %q", token)
	}
	if _, ok := NormalizeRoomType(""); ok {
		t.Fatal("expected empty room to fail")
	}
}

func TestNormalizeResourceType(t *testing.T) {
	t.Parallel()

	got, ok := NormalizeResourceType("Bottle Caps")
	if !ok || got != "caps" {
		t.Fatalf("expected bottle caps alias to reach caps, got %q (%v)", got, ok)
	}
	if _, ok := NormalizeResourceType("plutonium"); ok {
		t.Fatal("expected unknown resource to fail")
	}
}

func TestNormalizeItemType(t *testing.T) {
	t.Parallel()

	got, ok := NormalizeItemType("Weapons")
	if !ok || got != "weapon" {
		t.Fatalf("expected weapons alias to reach weapon, got %q (%v)", got, ok)
	}
	if _, ok := NormalizeItemType("relics"); ok {
		t.Fatal("expected unknown item to fail")
	}
}

func TestIsWildcard(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "*", "any", " ANY "} {
		if !IsWildcard(raw) {
			t.Fatalf("expected %q to be a wildcard", raw)
		}
	}
	if IsWildcard("caps") {
		t.Fatal("expected concrete value not to be a wildcard")
	}
}
