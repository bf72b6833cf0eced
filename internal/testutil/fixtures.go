package testutil

import (
	"testing"

	"github.com/dom/crusadetome/internal/codec"
	"github.com/dom/crusadetome/internal/domain"
	"github.com/stretchr/testify/require"
)

// UnitBuilder creates test unit records with a builder pattern
type UnitBuilder struct {
	record domain.UnitRecord
}

// NewUnitBuilder starts from an empty record named "Test Unit"
func NewUnitBuilder() *UnitBuilder {
	r := domain.NewUnitRecord()
	r.UnitName = "Test Unit"
	return &UnitBuilder{record: r}
}

// WithName sets the unit name
func (b *UnitBuilder) WithName(name string) *UnitBuilder {
	b.record.UnitName = name
	return b
}

// WithType sets the unit type
func (b *UnitBuilder) WithType(t domain.UnitType) *UnitBuilder {
	b.record.UnitType = t
	return b
}

// WithFaction sets the faction
func (b *UnitBuilder) WithFaction(f domain.Faction) *UnitBuilder {
	b.record.Faction = f
	return b
}

// WithModel appends a model profile
func (b *UnitBuilder) WithModel(name string, move, toughness, save, wounds, leadership, oc int) *UnitBuilder {
	b.record.Stats = append(b.record.Stats, domain.ModelStatRow{
		ModelName:  name,
		Move:       domain.Int(move),
		Toughness:  domain.Int(toughness),
		Save:       domain.Int(save),
		Wounds:     domain.Int(wounds),
		Leadership: domain.Int(leadership),
		OC:         domain.Int(oc),
	})
	return b
}

// WithWeapon appends a weapon profile
func (b *UnitBuilder) WithWeapon(name, weaponRange string, attacks, skill, strength, ap int, damage string) *UnitBuilder {
	b.record.Wargear = append(b.record.Wargear, domain.WeaponStatRow{
		Name:     name,
		Range:    weaponRange,
		Attacks:  domain.Int(attacks),
		Skill:    domain.Int(skill),
		Strength: domain.Int(strength),
		AP:       domain.Int(ap),
		Damage:   damage,
	})
	return b
}

// WithKeywords sets the keyword list
func (b *UnitBuilder) WithKeywords(keywords ...string) *UnitBuilder {
	b.record.Keywords = keywords
	return b
}

// WithAbility appends a unit ability
func (b *UnitBuilder) WithAbility(name, text string) *UnitBuilder {
	b.record.Abilities.Unit = append(b.record.Abilities.Unit, domain.NamedText{Name: name, Text: text})
	return b
}

// WithSupreme enables the supreme ability and sets its name and core text
func (b *UnitBuilder) WithSupreme(name, core string) *UnitBuilder {
	b.record.Abilities.HasSupreme = true
	b.record.Abilities.Supreme.SetField("name", name)
	b.record.Abilities.Supreme.SetField("core", core)
	return b
}

// WithWounded enables the damaged profile
func (b *UnitBuilder) WithWounded(threshold, text string) *UnitBuilder {
	b.record.HasWounded = true
	b.record.WoundedValues = domain.WoundedValues{
		Threshold: domain.String(threshold),
		Text:      domain.String(text),
	}
	return b
}

// Build returns a copy of the record built so far
func (b *UnitBuilder) Build() domain.UnitRecord {
	return b.record.Clone()
}

// JSON returns the built record as a unit document
func (b *UnitBuilder) JSON(t *testing.T) []byte {
	t.Helper()

	data, err := codec.ToJSON(b.record)
	require.NoError(t, err)
	return data
}
