package domain

import (
	"encoding/json"
	"slices"
)

// UnitRecord is the root document of a unit datasheet. Field order matches the
// key order of the saved JSON file.
type UnitRecord struct {
	UnitName        string          `json:"unit_name"`
	UnitType        UnitType        `json:"unit_type"`
	Faction         Faction         `json:"faction"`
	Stats           []ModelStatRow  `json:"stats"`
	Wargear         []WeaponStatRow `json:"wargear"`
	Abilities       AbilityBlock    `json:"abilities"`
	HasWounded      bool            `json:"has_wounded"`
	WoundedValues   WoundedValues   `json:"wounded_values"`
	UnitComposition string          `json:"unit_composition"`
	Keywords        []string        `json:"keywords"`

	// Extra holds top-level keys a loaded document carried that the schema
	// does not name. They are written back after the known keys. The nested
	// objects carry their own Extra the same way.
	Extra map[string]json.RawMessage `json:"-"`
}

// ModelStatRow is one line of the model characteristics table.
type ModelStatRow struct {
	ModelName  string `json:"Model Name"`
	Move       *int   `json:"Move"`
	Toughness  *int   `json:"Toughness"`
	Save       *int   `json:"Save"`
	Invuln     *int   `json:"Invuln"`
	Wounds     *int   `json:"Wounds"`
	Leadership *int   `json:"Leadership"`
	OC         *int   `json:"OC"`

	Extra map[string]json.RawMessage `json:"-"`
}

// WeaponStatRow is one weapon profile. Keywords stays a raw comma separated
// string, unlike the unit keywords.
type WeaponStatRow struct {
	Selectable bool   `json:"Selectable"` // part of a multi-profile weapon
	Name       string `json:"Name"`
	Keywords   string `json:"Keywords"`
	Range      string `json:"Range"` // a number or "Melee"
	Attacks    *int   `json:"Attacks"`
	Skill      *int   `json:"Skill"`
	Strength   *int   `json:"Strength"`
	AP         *int   `json:"AP"`
	Damage     string `json:"Damage"` // a number or D-notation, e.g. "D3+1"

	Extra map[string]json.RawMessage `json:"-"`
}

// NamedText is a titled block of rules text.
type NamedText struct {
	Name string `json:"name"`
	Text string `json:"text"`

	Extra map[string]json.RawMessage `json:"-"`
}

type AbilityBlock struct {
	Faction    []string       `json:"faction"`
	Core       []string       `json:"core"`
	Unit       []NamedText    `json:"unit"`
	HasWargear bool           `json:"has_wargear"`
	Wargear    []NamedText    `json:"wargear"`
	HasSupreme bool           `json:"has_supreme"`
	Supreme    SupremeAbility `json:"supreme"`

	Extra map[string]json.RawMessage `json:"-"`
}

// SupremeAbility is the supreme commander block. A field is nil until the
// block has been submitted at least once, so a fresh record encodes as {}.
type SupremeAbility struct {
	Name       *string `json:"name,omitempty"`
	Core       *string `json:"core,omitempty"`
	FirstName  *string `json:"first_name,omitempty"`
	FirstText  *string `json:"first_text,omitempty"`
	SecondName *string `json:"second_name,omitempty"`
	SecondText *string `json:"second_text,omitempty"`
	ThirdName  *string `json:"third_name,omitempty"`
	ThirdText  *string `json:"third_text,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// WoundedValues describes the damaged profile, e.g. threshold "1-6 Wounds Remaining".
type WoundedValues struct {
	Threshold *string `json:"threshold,omitempty"`
	Text      *string `json:"text,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// NewUnitRecord returns an empty record: empty strings, false flags and
// empty (non-nil) sequences.
func NewUnitRecord() UnitRecord {
	return UnitRecord{
		Stats:   []ModelStatRow{},
		Wargear: []WeaponStatRow{},
		Abilities: AbilityBlock{
			Faction: []string{},
			Core:    []string{},
			Unit:    []NamedText{},
			Wargear: []NamedText{},
		},
		Keywords: []string{},
	}
}

// IsEmpty reports whether no supreme field has ever been written.
func (s SupremeAbility) IsEmpty() bool {
	for _, key := range SupremeKeys {
		if *s.ptr(key) != nil {
			return false
		}
	}
	return len(s.Extra) == 0
}

// Field returns the value stored under a supreme key, or "" when unset or
// the key is unknown.
func (s SupremeAbility) Field(key string) string {
	if p := s.ptr(key); p != nil && *p != nil {
		return **p
	}
	return ""
}

// SetField stores value under a supreme key. Unknown keys are ignored.
func (s *SupremeAbility) SetField(key, value string) {
	if p := s.ptr(key); p != nil {
		v := value
		*p = &v
	}
}

func (s *SupremeAbility) ptr(key string) **string {
	switch key {
	case "name":
		return &s.Name
	case "core":
		return &s.Core
	case "first_name":
		return &s.FirstName
	case "first_text":
		return &s.FirstText
	case "second_name":
		return &s.SecondName
	case "second_text":
		return &s.SecondText
	case "third_name":
		return &s.ThirdName
	case "third_text":
		return &s.ThirdText
	}
	return nil
}

// SupremeKeys lists the supreme block keys in document order.
var SupremeKeys = []string{
	"name", "core",
	"first_name", "first_text",
	"second_name", "second_text",
	"third_name", "third_text",
}

func (w WoundedValues) IsEmpty() bool {
	return w.Threshold == nil && w.Text == nil && len(w.Extra) == 0
}

// ThresholdOrEmpty returns the stored threshold or "".
func (w WoundedValues) ThresholdOrEmpty() string {
	if w.Threshold == nil {
		return ""
	}
	return *w.Threshold
}

// TextOrEmpty returns the stored wounded text or "".
func (w WoundedValues) TextOrEmpty() string {
	if w.Text == nil {
		return ""
	}
	return *w.Text
}

// Int returns a pointer to v, for filling optional stat cells.
func Int(v int) *int {
	return &v
}

// String returns a pointer to v.
func String(v string) *string {
	return &v
}

// Clone returns a deep copy of r. Nil sequences stay nil.
func (r UnitRecord) Clone() UnitRecord {
	out := r

	if r.Stats != nil {
		out.Stats = make([]ModelStatRow, len(r.Stats))
		for i, row := range r.Stats {
			out.Stats[i] = ModelStatRow{
				ModelName:  row.ModelName,
				Move:       cloneInt(row.Move),
				Toughness:  cloneInt(row.Toughness),
				Save:       cloneInt(row.Save),
				Invuln:     cloneInt(row.Invuln),
				Wounds:     cloneInt(row.Wounds),
				Leadership: cloneInt(row.Leadership),
				OC:         cloneInt(row.OC),
				Extra:      CloneExtra(row.Extra),
			}
		}
	}

	if r.Wargear != nil {
		out.Wargear = make([]WeaponStatRow, len(r.Wargear))
		for i, row := range r.Wargear {
			row.Attacks = cloneInt(row.Attacks)
			row.Skill = cloneInt(row.Skill)
			row.Strength = cloneInt(row.Strength)
			row.AP = cloneInt(row.AP)
			row.Extra = CloneExtra(row.Extra)
			out.Wargear[i] = row
		}
	}

	out.Abilities.Faction = slices.Clone(r.Abilities.Faction)
	out.Abilities.Core = slices.Clone(r.Abilities.Core)
	out.Abilities.Unit = cloneNamedTexts(r.Abilities.Unit)
	out.Abilities.Wargear = cloneNamedTexts(r.Abilities.Wargear)
	out.Abilities.Extra = CloneExtra(r.Abilities.Extra)
	out.Keywords = slices.Clone(r.Keywords)

	var supreme SupremeAbility
	for _, key := range SupremeKeys {
		if p := r.Abilities.Supreme.ptr(key); *p != nil {
			supreme.SetField(key, **p)
		}
	}
	supreme.Extra = CloneExtra(r.Abilities.Supreme.Extra)
	out.Abilities.Supreme = supreme

	out.WoundedValues = WoundedValues{
		Threshold: cloneString(r.WoundedValues.Threshold),
		Text:      cloneString(r.WoundedValues.Text),
		Extra:     CloneExtra(r.WoundedValues.Extra),
	}

	out.Extra = CloneExtra(r.Extra)

	return out
}

// CloneExtra deep copies a set of pass-through keys. Nil stays nil.
func CloneExtra(extra map[string]json.RawMessage) map[string]json.RawMessage {
	if extra == nil {
		return nil
	}
	out := make(map[string]json.RawMessage, len(extra))
	for k, v := range extra {
		out[k] = slices.Clone(v)
	}
	return out
}

func cloneNamedTexts(items []NamedText) []NamedText {
	if items == nil {
		return nil
	}
	out := make([]NamedText, len(items))
	for i, item := range items {
		item.Extra = CloneExtra(item.Extra)
		out[i] = item
	}
	return out
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	return Int(*p)
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	return String(*p)
}
