// Package seed loads the objective catalog from a YAML file and writes it
// to the objective store.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ElderEvil/vaultkeeper/internal/services/game/domain/criteria"
	"github.com/ElderEvil/vaultkeeper/internal/services/game/domain/objective"
)

// ErrEmptyCatalog indicates a catalog file with no objectives.
var ErrEmptyCatalog = errors.New("seed: catalog contains no objectives")

// CatalogStore receives seeded objective templates. The game sqlite store
// satisfies it.
type CatalogStore interface {
	PutObjective(ctx context.Context, obj objective.Objective) error
}

// Catalog is the YAML document shape.
type Catalog struct {
	Objectives []Template `yaml:"objectives"`
}

// Template is one YAML catalog entry.
type Template struct {
	ID           string            `yaml:"id"`
	Challenge    string            `yaml:"challenge"`
	Reward       string            `yaml:"reward"`
	Category     string            `yaml:"category"`
	Kind         string            `yaml:"kind"`
	TargetEntity map[string]string `yaml:"target_entity"`
	TargetAmount int               `yaml:"target_amount"`
}

var validCategories = map[objective.Category]struct{}{
	objective.CategoryDaily:       {},
	objective.CategoryWeekly:      {},
	objective.CategoryAchievement: {},
}

// Parse decodes and validates a YAML catalog. Any invalid template fails
// the whole catalog; seeding is all-or-nothing.
func Parse(data []byte) ([]objective.Objective, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("seed: decode catalog: %w", err)
	}
	if len(catalog.Objectives) == 0 {
		return nil, ErrEmptyCatalog
	}

	seen := make(map[string]struct{}, len(catalog.Objectives))
	out := make([]objective.Objective, 0, len(catalog.Objectives))
	for i, tpl := range catalog.Objectives {
		obj, err := tpl.toObjective()
		if err != nil {
			return nil, fmt.Errorf("seed: objective %d (%s): %w", i, tpl.ID, err)
		}
		if _, dup := seen[obj.ID]; dup {
			return nil, fmt.Errorf("seed: duplicate objective id %q", obj.ID)
		}
		seen[obj.ID] = struct{}{}
		out = append(out, obj)
	}
	return out, nil
}

func (t Template) toObjective() (objective.Objective, error) {
	id := strings.TrimSpace(t.ID)
	if id == "" {
		return objective.Objective{}, errors.New("id is required")
	}
	if strings.TrimSpace(t.Challenge) == "" {
		return objective.Objective{}, errors.New("challenge is required")
	}

	category := objective.Category(strings.TrimSpace(t.Category))
	if _, ok := validCategories[category]; !ok {
		return objective.Objective{}, fmt.Errorf("unknown category %q", t.Category)
	}

	kind := objective.Kind(strings.TrimSpace(t.Kind))
	known := false
	for _, k := range objective.Kinds() {
		if kind == k {
			known = true
			break
		}
	}
	if !known {
		return objective.Objective{}, fmt.Errorf("unknown kind %q", t.Kind)
	}

	if t.TargetAmount < 0 {
		return objective.Objective{}, fmt.Errorf("target_amount must not be negative, got %d", t.TargetAmount)
	}

	if problems := criteria.ValidateTargetEntity(string(kind), t.TargetEntity); len(problems) > 0 {
		return objective.Objective{}, fmt.Errorf("invalid target_entity: %s", strings.Join(problems, "; "))
	}

	return objective.Objective{
		ID:           id,
		Challenge:    strings.TrimSpace(t.Challenge),
		Reward:       strings.TrimSpace(t.Reward),
		Category:     category,
		Kind:         kind,
		TargetEntity: t.TargetEntity,
		TargetAmount: t.TargetAmount,
	}, nil
}

// LoadFile parses the catalog file at path.
func LoadFile(path string) ([]objective.Objective, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("seed: read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// LoadFS parses the catalog at path inside fsys. Used for the embedded
// default catalog.
func LoadFS(fsys fs.FS, path string) ([]objective.Objective, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("seed: read embedded catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Apply writes every objective to the catalog store.
func Apply(ctx context.Context, store CatalogStore, objectives []objective.Objective) error {
	if store == nil {
		return errors.New("seed: catalog store is not configured")
	}
	for _, obj := range objectives {
		if err := store.PutObjective(ctx, obj); err != nil {
			return fmt.Errorf("seed: put objective %s: %w", obj.ID, err)
		}
	}
	return nil
}
