package service

import (
	"github.com/dom/crusadetome/internal/codec"
	"github.com/dom/crusadetome/internal/domain"
)

// Form is the state of the data-entry form: what a client submits, and what
// View pre-fills. The index fields are only set by View.
type Form struct {
	UnitName      string `json:"unitName"`
	UnitType      string `json:"unitType"`
	UnitTypeIndex *int   `json:"unitTypeIndex,omitempty"`
	Faction       string `json:"faction"`
	FactionIndex  *int   `json:"factionIndex,omitempty"`

	Stats           codec.Table `json:"stats"`
	Wargear         codec.Table `json:"wargear"`
	UnitComposition string      `json:"unitComposition"`
	Keywords        string      `json:"keywords"`

	CoreAbilities       string      `json:"coreAbilities"`
	FactionAbilities    string      `json:"factionAbilities"`
	UnitAbilities       codec.Table `json:"unitAbilities"`
	HasWargearAbilities bool        `json:"hasWargearAbilities"`
	WargearAbilities    codec.Table `json:"wargearAbilities"`

	HasSupreme bool        `json:"hasSupreme"`
	Supreme    SupremeForm `json:"supreme"`

	HasWounded       bool   `json:"hasWounded"`
	WoundedThreshold string `json:"woundedThreshold"`
	WoundedText      string `json:"woundedText"`
}

type SupremeForm struct {
	Name       string `json:"name"`
	Core       string `json:"core"`
	FirstName  string `json:"firstName"`
	FirstText  string `json:"firstText"`
	SecondName string `json:"secondName"`
	SecondText string `json:"secondText"`
	ThirdName  string `json:"thirdName"`
	ThirdText  string `json:"thirdText"`
}

func (f SupremeForm) fields() map[string]string {
	return map[string]string{
		"name":        f.Name,
		"core":        f.Core,
		"first_name":  f.FirstName,
		"first_text":  f.FirstText,
		"second_name": f.SecondName,
		"second_text": f.SecondText,
		"third_name":  f.ThirdName,
		"third_text":  f.ThirdText,
	}
}

func supremeForm(s domain.SupremeAbility) SupremeForm {
	return SupremeForm{
		Name:       s.Field("name"),
		Core:       s.Field("core"),
		FirstName:  s.Field("first_name"),
		FirstText:  s.Field("first_text"),
		SecondName: s.Field("second_name"),
		SecondText: s.Field("second_text"),
		ThirdName:  s.Field("third_name"),
		ThirdText:  s.Field("third_text"),
	}
}
