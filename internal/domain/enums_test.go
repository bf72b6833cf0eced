package domain_test

import (
	"errors"
	"testing"

	"github.com/dom/crusadetome/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClosedLists(t *testing.T) {
	assert.Len(t, domain.UnitTypes, 7)
	assert.Len(t, domain.Factions, 22)
	assert.Equal(t, domain.Faction("Adepta Sororita"), domain.Factions[0])
	assert.Equal(t, domain.Faction("Tyranids"), domain.Factions[21])
}

func TestResolveIndex(t *testing.T) {
	tests := []struct {
		name      string
		field     domain.EnumField
		value     string
		wantIndex int
		wantOK    bool
	}{
		{name: "vehicle", field: domain.FieldUnitType, value: "Vehicle", wantIndex: 2, wantOK: true},
		{name: "first unit type", field: domain.FieldUnitType, value: "Epic Hero", wantIndex: 0, wantOK: true},
		{name: "empty unit type", field: domain.FieldUnitType, value: "", wantOK: false},
		{name: "unknown unit type", field: domain.FieldUnitType, value: "Swarm", wantOK: false},
		{name: "case sensitive", field: domain.FieldUnitType, value: "vehicle", wantOK: false},
		{name: "faction", field: domain.FieldFaction, value: "T'au Empire", wantIndex: 20, wantOK: true},
		{name: "empty faction", field: domain.FieldFaction, value: "", wantOK: false},
		{name: "unknown field", field: domain.EnumField("colour"), value: "Vehicle", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, ok := domain.ResolveIndex(tt.field, tt.value)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantIndex, idx)
			}
		})
	}
}

func TestCheckEnums(t *testing.T) {
	r := domain.NewUnitRecord()
	require.NoError(t, domain.CheckEnums(r))

	r.UnitType = domain.UnitTypeInfantry
	r.Faction = "Necrons"
	require.NoError(t, domain.CheckEnums(r))

	r.Faction = "Squats"
	err := domain.CheckEnums(r)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnknownEnumValue))

	var enumErr *domain.UnknownEnumValueError
	require.True(t, errors.As(err, &enumErr))
	assert.Equal(t, domain.FieldFaction, enumErr.Field)
	assert.Equal(t, "Squats", enumErr.Value)

	r.UnitType = "Titan"
	err = domain.CheckEnums(r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Titan")
	assert.Contains(t, err.Error(), "Squats")

	joined, ok := err.(interface{ Unwrap() []error })
	require.True(t, ok)
	fields := []domain.EnumField{}
	for _, e := range joined.Unwrap() {
		require.True(t, errors.As(e, &enumErr))
		fields = append(fields, enumErr.Field)
	}
	assert.Equal(t, []domain.EnumField{domain.FieldUnitType, domain.FieldFaction}, fields)
}
