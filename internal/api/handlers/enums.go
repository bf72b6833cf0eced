package handlers

import (
	"net/http"

	"github.com/dom/crusadetome/internal/codec"
	"github.com/dom/crusadetome/internal/domain"
)

type EnumsHandler struct{}

func NewEnumsHandler() *EnumsHandler {
	return &EnumsHandler{}
}

// EnumsResponse describes the fixed choices and column layouts a form needs.
type EnumsResponse struct {
	UnitTypes        []string                   `json:"unitTypes"`
	Factions         []string                   `json:"factions"`
	StatColumns      []string                   `json:"statColumns"`
	WargearColumns   []string                   `json:"wargearColumns"`
	AbilityColumns   []string                   `json:"abilityColumns"`
	ModelStatRanges  map[string]domain.IntRange `json:"modelStatRanges"`
	WeaponStatRanges map[string]domain.IntRange `json:"weaponStatRanges"`
}

func (h *EnumsHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, EnumsResponse{
		UnitTypes:        domain.FieldUnitType.Values(),
		Factions:         domain.FieldFaction.Values(),
		StatColumns:      codec.ModelStatSchema.Columns(),
		WargearColumns:   codec.WeaponStatSchema.Columns(),
		AbilityColumns:   codec.AbilitySchema.Columns(),
		ModelStatRanges:  domain.ModelStatRanges,
		WeaponStatRanges: domain.WeaponStatRanges,
	})
}
