package collection

import "github.com/kailas-cloud/srdex/internal/domain/collection/field"

// Shared field declarations.
var (
	nameField     = field.MustNew("name", "$.name", field.Tag)
	descField     = field.MustNew("desc", "$.desc", field.Text)
	levelField    = field.MustNew("level", "$.level", field.Numeric)
	crField       = field.MustNew("challenge_rating", "$.challenge_rating", field.Numeric)
	schoolField   = field.MustNew("school", "$.school.name", field.Tag)
	classScope    = field.MustNew("class", "$.class.index", field.Scope)
	subclassScope = field.MustNew("subclass", "$.subclass.index", field.Scope)
	raceScope     = field.MustNew("race", "$.race.index", field.Scope)
	classesScope  = field.MustNew("classes", "$.classes[*].index", field.Scope)
	racesScope    = field.MustNew("races", "$.races[*].index", field.Scope)
	subracesScope = field.MustNew("subraces", "$.subraces[*].index", field.Scope)
)

func fields(ff ...field.Field) []field.Field { return ff }

func mustCollection(name string, filters, scopes []field.Field) Collection {
	c, err := New(name, filters, scopes)
	if err != nil {
		panic(err)
	}
	return c
}

// SRD returns the catalog of System Reference Document collections.
func SRD() *Catalog {
	byName := fields(nameField)
	cols := []Collection{
		mustCollection("ability-scores", byName, nil),
		mustCollection("classes", byName, nil),
		mustCollection("conditions", byName, nil),
		mustCollection("damage-types", byName, nil),
		mustCollection("equipment", byName, nil),
		mustCollection("equipment-categories", byName, nil),
		mustCollection("features", byName, fields(classScope, subclassScope, levelField)),
		mustCollection("languages", byName, nil),
		mustCollection("levels", nil, fields(classScope, subclassScope, levelField)),
		mustCollection("magic-items", byName, nil),
		mustCollection("magic-schools", byName, nil),
		mustCollection("monsters", fields(nameField, crField), nil),
		mustCollection("proficiencies", byName, fields(classesScope, racesScope)),
		mustCollection("races", byName, nil),
		mustCollection("rule-sections", fields(nameField, descField), nil),
		mustCollection("rules", fields(nameField, descField), nil),
		mustCollection("skills", byName, nil),
		mustCollection("spellcasting", nil, fields(classScope)),
		mustCollection("spells", fields(nameField, levelField, schoolField), fields(classesScope)),
		mustCollection("starting-equipment", nil, fields(classScope)),
		mustCollection("subclasses", byName, fields(classScope)),
		mustCollection("subraces", byName, fields(raceScope)),
		mustCollection("traits", byName, fields(racesScope, subracesScope)),
		mustCollection("weapon-properties", byName, nil),
	}

	aliases := map[string]string{
		"rules-sections": "rule-sections",
	}

	nested := []Nested{
		{Parent: "classes", Route: "subclasses", Child: "subclasses", ScopeField: "class"},
		{Parent: "classes", Route: "starting-equipment", Child: "starting-equipment", ScopeField: "class",
			Shape: ShapeSingle},
		{Parent: "classes", Route: "spellcasting", Child: "spellcasting", ScopeField: "class", Shape: ShapeSingle},
		{Parent: "classes", Route: "spells", Child: "spells", ScopeField: "classes"},
		{Parent: "classes", Route: "features", Child: "features", ScopeField: "class"},
		{Parent: "classes", Route: "proficiencies", Child: "proficiencies", ScopeField: "classes"},
		{Parent: "classes", Route: "levels", Child: "levels", ScopeField: "class",
			RootOnly: true, FullRecords: true, Shape: ShapeBare},
		{Parent: "classes", Route: RouteLevel, Child: "levels", ScopeField: "class",
			ByLevel: true, RootOnly: true, Shape: ShapeSingle},
		{Parent: "classes", Route: RouteLevelPrefix + "spells", Child: "spells", ScopeField: "classes",
			ByLevel: true},
		{Parent: "classes", Route: RouteLevelPrefix + "features", Child: "features", ScopeField: "class",
			ByLevel: true, RootOnly: true},

		{Parent: "subclasses", Route: "features", Child: "features", ScopeField: "subclass"},
		{Parent: "subclasses", Route: "levels", Child: "levels", ScopeField: "subclass",
			FullRecords: true, Shape: ShapeBare},
		{Parent: "subclasses", Route: RouteLevel, Child: "levels", ScopeField: "subclass",
			ByLevel: true, Shape: ShapeSingle},
		{Parent: "subclasses", Route: RouteLevelPrefix + "features", Child: "features", ScopeField: "subclass",
			ByLevel: true},

		{Parent: "races", Route: "subraces", Child: "subraces", ScopeField: "race"},
		{Parent: "races", Route: "proficiencies", Child: "proficiencies", ScopeField: "races"},
		{Parent: "races", Route: "traits", Child: "traits", ScopeField: "races"},

		{Parent: "subraces", Route: "traits", Child: "traits", ScopeField: "subraces"},
		{Parent: "subraces", Route: "proficiencies", Child: "proficiencies", ScopeField: "races"},
	}

	c, err := NewCatalog(cols, aliases, nested)
	if err != nil {
		panic(err)
	}
	return c
}
