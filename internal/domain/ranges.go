package domain

import (
	"fmt"
	"unicode/utf8"
)

// IntRange is the inclusive range an input widget allows for a stat.
type IntRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

func (r IntRange) Contains(v int) bool {
	return v >= r.Min && v <= r.Max
}

// Model characteristic ranges
var ModelStatRanges = map[string]IntRange{
	"Move":       {Min: 1, Max: 30},
	"Toughness":  {Min: 1, Max: 14},
	"Save":       {Min: 1, Max: 9},
	"Invuln":     {Min: 1, Max: 9},
	"Wounds":     {Min: 1, Max: 40},
	"Leadership": {Min: 1, Max: 12},
	"OC":         {Min: 1, Max: 8},
}

// Weapon characteristic ranges
var WeaponStatRanges = map[string]IntRange{
	"Attacks":  {Min: 1, Max: 20},
	"Skill":    {Min: 2, Max: 6},
	"Strength": {Min: 2, Max: 30},
	"AP":       {Min: 2, Max: 30},
}

// Text column length limits, in characters
const (
	MaxModelNameChars      = 64
	MaxWeaponNameChars     = 64
	MaxWeaponKeywordsChars = 80
	MaxWeaponRangeChars    = 5
	MaxWeaponDamageChars   = 6
)

// FieldIssue is a value outside the range its input widget would accept.
type FieldIssue struct {
	Table   string `json:"table"`
	Row     int    `json:"row"`
	Column  string `json:"column"`
	Message string `json:"message"`
}

func (i FieldIssue) String() string {
	return fmt.Sprintf("%s[%d].%s: %s", i.Table, i.Row, i.Column, i.Message)
}

// CheckRanges reports stat cells outside their widget ranges. Absent cells are
// legal. The result is advisory; nothing in the serialization path rejects a
// record because of it.
func CheckRanges(r UnitRecord) []FieldIssue {
	var issues []FieldIssue

	for i, row := range r.Stats {
		add := func(column string, v *int) {
			if issue, ok := checkInt("stats", i, column, v, ModelStatRanges[column]); !ok {
				issues = append(issues, issue)
			}
		}
		add("Move", row.Move)
		add("Toughness", row.Toughness)
		add("Save", row.Save)
		add("Invuln", row.Invuln)
		add("Wounds", row.Wounds)
		add("Leadership", row.Leadership)
		add("OC", row.OC)
		if issue, ok := checkLen("stats", i, "Model Name", row.ModelName, MaxModelNameChars); !ok {
			issues = append(issues, issue)
		}
	}

	for i, row := range r.Wargear {
		add := func(column string, v *int) {
			if issue, ok := checkInt("wargear", i, column, v, WeaponStatRanges[column]); !ok {
				issues = append(issues, issue)
			}
		}
		add("Attacks", row.Attacks)
		add("Skill", row.Skill)
		add("Strength", row.Strength)
		add("AP", row.AP)

		texts := []struct {
			column string
			value  string
			max    int
		}{
			{"Name", row.Name, MaxWeaponNameChars},
			{"Keywords", row.Keywords, MaxWeaponKeywordsChars},
			{"Range", row.Range, MaxWeaponRangeChars},
			{"Damage", row.Damage, MaxWeaponDamageChars},
		}
		for _, tc := range texts {
			if issue, ok := checkLen("wargear", i, tc.column, tc.value, tc.max); !ok {
				issues = append(issues, issue)
			}
		}
	}

	return issues
}

func checkInt(table string, row int, column string, v *int, rng IntRange) (FieldIssue, bool) {
	if v == nil || rng.Contains(*v) {
		return FieldIssue{}, true
	}
	return FieldIssue{
		Table:   table,
		Row:     row,
		Column:  column,
		Message: fmt.Sprintf("%d is outside %d-%d", *v, rng.Min, rng.Max),
	}, false
}

func checkLen(table string, row int, column, v string, max int) (FieldIssue, bool) {
	n := utf8.RuneCountInString(v)
	if n <= max {
		return FieldIssue{}, true
	}
	return FieldIssue{
		Table:   table,
		Row:     row,
		Column:  column,
		Message: fmt.Sprintf("%d characters exceeds limit of %d", n, max),
	}, false
}
