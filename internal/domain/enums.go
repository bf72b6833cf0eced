package domain

import "errors"

// UnitType is the battlefield role of a unit.
type UnitType string

const (
	UnitTypeEpicHero  UnitType = "Epic Hero"
	UnitTypeCharacter UnitType = "Character"
	UnitTypeVehicle   UnitType = "Vehicle"
	UnitTypeMonster   UnitType = "Monster"
	UnitTypeMounted   UnitType = "Mounted"
	UnitTypeInfantry  UnitType = "Infantry"
	UnitTypeBeast     UnitType = "Beast"
)

// UnitTypes contains all unit types in display order
var UnitTypes = []UnitType{
	UnitTypeEpicHero,
	UnitTypeCharacter,
	UnitTypeVehicle,
	UnitTypeMonster,
	UnitTypeMounted,
	UnitTypeInfantry,
	UnitTypeBeast,
}

// IsValid reports whether t is empty or one of UnitTypes.
func (t UnitType) IsValid() bool {
	if t == "" {
		return true
	}
	_, ok := indexOf(UnitTypes, t)
	return ok
}

func (t UnitType) String() string {
	return string(t)
}

// Faction is the army a unit belongs to.
type Faction string

// Factions contains all factions in display order
var Factions = []Faction{
	"Adepta Sororita",
	"Adeptus Custodes",
	"Adeptus Mechanicus",
	"Agents of the Imperium",
	"Astra Militarum",
	"Grey Knights",
	"Imperial Knights",
	"Space Marines",
	"Chaos Daemons",
	"Chaos Knights",
	"Chaos Space Marines",
	"Death Guard",
	"Thousand Sons",
	"World Eaters",
	"Aeldari",
	"Drukhari",
	"Genestealer Cults",
	"Leagues of Votann",
	"Necrons",
	"Orks",
	"T'au Empire",
	"Tyranids",
}

// IsValid reports whether f is empty or one of Factions.
func (f Faction) IsValid() bool {
	if f == "" {
		return true
	}
	_, ok := indexOf(Factions, f)
	return ok
}

func (f Faction) String() string {
	return string(f)
}

// EnumField names a closed-list field of UnitRecord.
type EnumField string

const (
	FieldUnitType EnumField = "unit_type"
	FieldFaction  EnumField = "faction"
)

// Values returns the closed list for the field, or nil for an unknown field.
func (f EnumField) Values() []string {
	switch f {
	case FieldUnitType:
		return toStrings(UnitTypes)
	case FieldFaction:
		return toStrings(Factions)
	}
	return nil
}

// ResolveIndex maps a stored enum value to its display position. It returns
// false ("no selection") for an empty value, a value outside the list, or an
// unknown field; it never fails hard.
func ResolveIndex(field EnumField, value string) (int, bool) {
	if value == "" {
		return 0, false
	}
	return indexOf(field.Values(), value)
}

// CheckEnums reports every enum field of r holding a value outside its closed
// list, as *UnknownEnumValueError values joined with errors.Join.
func CheckEnums(r UnitRecord) error {
	var errs []error
	if !r.UnitType.IsValid() {
		errs = append(errs, &UnknownEnumValueError{Field: FieldUnitType, Value: string(r.UnitType)})
	}
	if !r.Faction.IsValid() {
		errs = append(errs, &UnknownEnumValueError{Field: FieldFaction, Value: string(r.Faction)})
	}
	return errors.Join(errs...)
}

func indexOf[T ~string](list []T, v T) (int, bool) {
	for i, item := range list {
		if item == v {
			return i, true
		}
	}
	return 0, false
}

func toStrings[T ~string](list []T) []string {
	out := make([]string, len(list))
	for i, v := range list {
		out[i] = string(v)
	}
	return out
}
