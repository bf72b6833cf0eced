package service

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/dom/crusadetome/internal/codec"
	"github.com/dom/crusadetome/internal/domain"
)

// SectionPolicy decides what happens to an optional section (supreme
// ability, damaged profile, wargear abilities) submitted with its flag off.
type SectionPolicy string

const (
	// RetainInactive keeps the previous contents of the section.
	RetainInactive SectionPolicy = "retain"
	// ClearInactive resets the section to its empty value.
	ClearInactive SectionPolicy = "clear"
)

// UnitService implements the New/Load/Save/Submit lifecycle of a unit record.
// It holds no record; every operation takes the current record and returns
// the next one.
type UnitService struct {
	policy SectionPolicy
}

func NewUnitService(policy SectionPolicy) *UnitService {
	if policy != ClearInactive {
		policy = RetainInactive
	}
	return &UnitService{policy: policy}
}

func (s *UnitService) Policy() SectionPolicy {
	return s.policy
}

// Report carries the non-fatal findings of a load or submit.
type Report struct {
	Warnings []string            `json:"warnings"`
	Issues   []domain.FieldIssue `json:"issues"`
}

// New returns an empty record.
func (s *UnitService) New() domain.UnitRecord {
	return domain.NewUnitRecord()
}

// Load parses an uploaded document. On a parse error current is returned
// unchanged together with the error. Unknown enum values load as-is and are
// reported as warnings.
func (s *UnitService) Load(current domain.UnitRecord, data []byte) (domain.UnitRecord, Report, error) {
	record, err := codec.FromJSON(data)
	if err != nil {
		return current, Report{}, err
	}
	return record, s.inspect(record), nil
}

// SavedFile is a serialized record ready to be offered as a download.
type SavedFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

func (s *UnitService) Save(record domain.UnitRecord) (*SavedFile, error) {
	data, err := codec.ToJSON(record)
	if err != nil {
		return nil, err
	}
	return &SavedFile{
		Filename:    SaveFilename(record.UnitName),
		ContentType: "application/json",
		Data:        data,
	}, nil
}

// SaveFilename derives "<unit_name>.json". Path separators and control
// characters become "_" and an empty name falls back to "unit".
func SaveFilename(unitName string) string {
	name := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || unicode.IsControl(r) {
			return '_'
		}
		return r
	}, unitName)
	if strings.TrimSpace(name) == "" {
		name = "unit"
	}
	return name + ".json"
}

// Submit applies a submitted form to current. Table-backed sequences are
// replaced wholesale, list inputs are comma split, and the optional sections
// follow the service's SectionPolicy when their flag is off.
func (s *UnitService) Submit(current domain.UnitRecord, form Form) (domain.UnitRecord, Report) {
	next := current.Clone()

	next.UnitName = form.UnitName
	next.UnitType = domain.UnitType(form.UnitType)
	next.Faction = domain.Faction(form.Faction)
	next.Stats = codec.TableToRows(codec.ModelStatSchema, form.Stats)
	next.Wargear = codec.TableToRows(codec.WeaponStatSchema, form.Wargear)
	next.UnitComposition = form.UnitComposition
	next.Keywords = codec.SplitList(form.Keywords)

	next.Abilities.Faction = codec.SplitList(form.FactionAbilities)
	next.Abilities.Core = codec.SplitList(form.CoreAbilities)
	next.Abilities.Unit = codec.TableToRows(codec.AbilitySchema, form.UnitAbilities)

	next.Abilities.HasWargear = form.HasWargearAbilities
	switch {
	case form.HasWargearAbilities:
		next.Abilities.Wargear = codec.TableToRows(codec.AbilitySchema, form.WargearAbilities)
	case s.policy == ClearInactive:
		next.Abilities.Wargear = []domain.NamedText{}
	}

	next.Abilities.HasSupreme = form.HasSupreme
	switch {
	case form.HasSupreme:
		for key, value := range form.Supreme.fields() {
			next.Abilities.Supreme.SetField(key, value)
		}
	case s.policy == ClearInactive:
		next.Abilities.Supreme = domain.SupremeAbility{}
	}

	next.HasWounded = form.HasWounded
	switch {
	case form.HasWounded:
		next.WoundedValues.Threshold = domain.String(form.WoundedThreshold)
		next.WoundedValues.Text = domain.String(form.WoundedText)
	case s.policy == ClearInactive:
		next.WoundedValues = domain.WoundedValues{}
	}

	return next, s.inspect(next)
}

// View builds the pre-filled form for a record.
func (s *UnitService) View(record domain.UnitRecord) Form {
	form := Form{
		UnitName:            record.UnitName,
		UnitType:            string(record.UnitType),
		Faction:             string(record.Faction),
		Stats:               codec.RowsToTable(codec.ModelStatSchema, record.Stats),
		Wargear:             codec.RowsToTable(codec.WeaponStatSchema, record.Wargear),
		UnitComposition:     record.UnitComposition,
		Keywords:            codec.JoinList(record.Keywords),
		CoreAbilities:       codec.JoinList(record.Abilities.Core),
		FactionAbilities:    codec.JoinList(record.Abilities.Faction),
		UnitAbilities:       codec.RowsToTable(codec.AbilitySchema, record.Abilities.Unit),
		HasWargearAbilities: record.Abilities.HasWargear,
		WargearAbilities:    codec.RowsToTable(codec.AbilitySchema, record.Abilities.Wargear),
		HasSupreme:          record.Abilities.HasSupreme,
		Supreme:             supremeForm(record.Abilities.Supreme),
		HasWounded:          record.HasWounded,
		WoundedThreshold:    record.WoundedValues.ThresholdOrEmpty(),
		WoundedText:         record.WoundedValues.TextOrEmpty(),
	}

	if idx, ok := domain.ResolveIndex(domain.FieldUnitType, form.UnitType); ok {
		form.UnitTypeIndex = &idx
	}
	if idx, ok := domain.ResolveIndex(domain.FieldFaction, form.Faction); ok {
		form.FactionIndex = &idx
	}
	return form
}

func (s *UnitService) inspect(record domain.UnitRecord) Report {
	report := Report{
		Warnings: []string{},
		Issues:   domain.CheckRanges(record),
	}
	if report.Issues == nil {
		report.Issues = []domain.FieldIssue{}
	}

	if err := domain.CheckEnums(record); err != nil {
		errs := []error{err}
		var joined interface{ Unwrap() []error }
		if errors.As(err, &joined) {
			errs = joined.Unwrap()
		}
		for _, e := range errs {
			report.Warnings = append(report.Warnings, fmt.Sprintf("%v; shown as no selection", e))
		}
	}
	return report
}
