package rules

import "github.com/invopop/jsonschema"

// Enums marshal as text, so the reflected schema lists their names

func (TerrainID) JSONSchema() *jsonschema.Schema {
	return enumSchema(terrainNamesInOrder())
}

func (UnitType) JSONSchema() *jsonschema.Schema {
	names := make([]string, 0, len(unitNames))
	for typ := UnitInfantry; typ <= UnitCommander; typ++ {
		names = append(names, typ.String())
	}
	return enumSchema(names)
}

func (Ability) JSONSchema() *jsonschema.Schema {
	return enumSchema([]string{AbilityAntiCavalry.String()})
}

func (Direction) JSONSchema() *jsonschema.Schema {
	names := make([]string, 0, len(Directions))
	for _, d := range Directions {
		names = append(names, d.String())
	}
	return enumSchema(names)
}

func terrainNamesInOrder() []string {
	names := make([]string, 0, len(AllTerrain))
	for _, id := range AllTerrain {
		names = append(names, id.String())
	}
	return names
}

func enumSchema(names []string) *jsonschema.Schema {
	enum := make([]interface{}, len(names))
	for i, name := range names {
		enum[i] = name
	}

	return &jsonschema.Schema{
		Type: "string",
		Enum: enum,
	}
}
