package rules

import (
	"strings"
	"testing"
)

func TestDefaultRulesIndexEverything(t *testing.T) {
	r := Default()

	for _, id := range AllTerrain {
		if got := r.TerrainOf(id); got.ID != id {
			t.Fatalf("TerrainOf(%s) returned %s", id, got.ID)
		}
	}

	for typ := range unitNames {
		if _, ok := r.Unit(typ); !ok {
			t.Fatalf("expected unit %s in default rules", typ)
		}
	}

	spear, _ := r.Unit(UnitSpearman)
	if !spear.AbilitySet().Has(AbilityAntiCavalry) {
		t.Fatalf("expected spearman to carry anti_cavalry")
	}

	if !r.Impassable(r.TerrainOf(TerrainWall)) || !r.Impassable(r.TerrainOf(TerrainMountain)) {
		t.Fatalf("expected wall and mountain to be impassable")
	}
	if r.Impassable(r.TerrainOf(TerrainWater)) {
		t.Fatalf("expected water to be passable")
	}
	if !r.TerrainOf(TerrainMountain).Elevated {
		t.Fatalf("expected mountain to be flagged elevated")
	}
}

func TestParseRejectsUnknownTags(t *testing.T) {
	for _, tc := range []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "ability typo",
			yaml: "units:\n  - type: spearman\n    abilities: [anti_cavlary]\n",
			want: "unknown ability",
		},
		{
			name: "terrain typo",
			yaml: "terrain:\n  - id: forrest\n",
			want: "unknown terrain",
		},
		{
			name: "unit typo",
			yaml: "units:\n  - type: knight\n",
			want: "unknown unit type",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in error, got %v", tc.want, err)
			}
		})
	}
}

func TestParseReportsMissingTerrain(t *testing.T) {
	_, err := Parse([]byte("impassableThreshold: 99\nmorale:\n  threshold: 40\nterrain:\n  - id: plains\n    movementCost: 1\n"))
	if err == nil {
		t.Fatalf("expected missing terrain error")
	}
	if !strings.Contains(err.Error(), "terrain mountain missing") {
		t.Fatalf("expected mountain to be reported, got %v", err)
	}
}

func TestAbilitySetIsFreshPerCall(t *testing.T) {
	tmpl := UnitTemplate{Abilities: []Ability{AbilityAntiCavalry}}
	a := tmpl.AbilitySet()
	b := tmpl.AbilitySet()
	a.Remove(AbilityAntiCavalry)
	if !b.Has(AbilityAntiCavalry) {
		t.Fatalf("ability sets share storage")
	}
}

func TestDirectionOf(t *testing.T) {
	tests := []struct {
		dx, dy int
		want   Direction
	}{
		{0, -3, North},
		{0, 2, South},
		{4, 1, East},
		{-2, 1, West},
		{2, -2, East},
		{0, 0, North},
	}
	for _, tc := range tests {
		if got := DirectionOf(tc.dx, tc.dy); got != tc.want {
			t.Errorf("DirectionOf(%d, %d) = %s, want %s", tc.dx, tc.dy, got, tc.want)
		}
	}

	for _, d := range Directions {
		if d.Opposite().Opposite() != d {
			t.Errorf("Opposite is not an involution for %s", d)
		}
		dx, dy := d.Delta()
		if DirectionOf(dx, dy) != d {
			t.Errorf("Delta/DirectionOf mismatch for %s", d)
		}
	}
}

func TestSchemaEnumsMatchNames(t *testing.T) {
	tests := []struct {
		name  string
		enum  []interface{}
		first string
		count int
	}{
		{"terrain", TerrainID(0).JSONSchema().Enum, "plains", len(AllTerrain)},
		{"unit", UnitType(0).JSONSchema().Enum, "infantry", 8},
		{"direction", Direction(0).JSONSchema().Enum, "north", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if len(tt.enum) != tt.count {
				t.Fatalf("expected %d names, got %d", tt.count, len(tt.enum))
			}
			if tt.enum[0] != tt.first {
				t.Fatalf("expected %q first, got %v", tt.first, tt.enum[0])
			}
		})
	}
}
