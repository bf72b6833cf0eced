package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dom/crusadetome/internal/domain"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

var knownKeys = keySet(
	"unit_name", "unit_type", "faction", "stats", "wargear", "abilities",
	"has_wounded", "wounded_values", "unit_composition", "keywords",
)

var (
	abilityKeys = keySet("faction", "core", "unit", "has_wargear", "wargear", "has_supreme", "supreme")
	woundedKeys = keySet("threshold", "text")
	supremeKeys = keySet(domain.SupremeKeys...)
	modelKeys   = keySet(ModelStatSchema.Columns()...)
	weaponKeys  = keySet(WeaponStatSchema.Columns()...)
	namedKeys   = keySet(AbilitySchema.Columns()...)
)

func keySet(keys ...string) map[string]bool {
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return set
}

// ToJSON encodes a record as compact JSON with keys in schema order. Nil
// sequences are written as [] and extra keys of every object follow its
// known keys in sorted order.
func ToJSON(r domain.UnitRecord) ([]byte, error) {
	normalize(&r)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r); err != nil {
		return nil, fmt.Errorf("failed to encode unit record: %w", err)
	}
	out := bytes.TrimRight(buf.Bytes(), "\n")

	for _, sp := range splices(r) {
		var err error
		out, err = spliceExtra(out, sp)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

type splice struct {
	path  string
	extra map[string]json.RawMessage
	known map[string]bool
}

// splices lists every object of r that carries extra keys, by sjson path.
func splices(r domain.UnitRecord) []splice {
	var out []splice
	add := func(path string, extra map[string]json.RawMessage, known map[string]bool) {
		if len(extra) > 0 {
			out = append(out, splice{path: path, extra: extra, known: known})
		}
	}

	add("", r.Extra, knownKeys)
	for i, row := range r.Stats {
		add(fmt.Sprintf("stats.%d", i), row.Extra, modelKeys)
	}
	for i, row := range r.Wargear {
		add(fmt.Sprintf("wargear.%d", i), row.Extra, weaponKeys)
	}
	add("abilities", r.Abilities.Extra, abilityKeys)
	for i, item := range r.Abilities.Unit {
		add(fmt.Sprintf("abilities.unit.%d", i), item.Extra, namedKeys)
	}
	for i, item := range r.Abilities.Wargear {
		add(fmt.Sprintf("abilities.wargear.%d", i), item.Extra, namedKeys)
	}
	add("abilities.supreme", r.Abilities.Supreme.Extra, supremeKeys)
	add("wounded_values", r.WoundedValues.Extra, woundedKeys)
	return out
}

func spliceExtra(out []byte, sp splice) ([]byte, error) {
	keys := make([]string, 0, len(sp.extra))
	for k := range sp.extra {
		if k != "" && !sp.known[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, k := range keys {
		raw := sp.extra[k]
		if !gjson.ValidBytes(raw) {
			return nil, fmt.Errorf("extra key %q holds invalid JSON", k)
		}
		path := escapePath(k)
		if sp.path != "" {
			path = sp.path + "." + path
		}
		var err error
		out, err = sjson.SetRawBytes(out, path, raw)
		if err != nil {
			return nil, fmt.Errorf("failed to write extra key %q: %w", k, err)
		}
	}
	return out, nil
}

// FromJSON decodes a unit document. Text that is not valid JSON fails with a
// *domain.ParseError. Anything else is accepted: missing keys take their zero
// value, mistyped values fall back to zero values and unknown non-empty keys
// of every object are kept in its Extra. A repeated key keeps its last value.
func FromJSON(data []byte) (domain.UnitRecord, error) {
	if !gjson.ValidBytes(data) {
		return domain.UnitRecord{}, syntaxError(data)
	}

	root := members(gjson.ParseBytes(data))
	abilities := members(root["abilities"])

	r := domain.UnitRecord{
		UnitName:        text(root["unit_name"]),
		UnitType:        domain.UnitType(text(root["unit_type"])),
		Faction:         domain.Faction(text(root["faction"])),
		Stats:           modelRows(root["stats"]),
		Wargear:         weaponRows(root["wargear"]),
		HasWounded:      root["has_wounded"].Bool(),
		WoundedValues:   woundedValues(root["wounded_values"]),
		UnitComposition: text(root["unit_composition"]),
		Keywords:        stringList(root["keywords"]),
		Abilities: domain.AbilityBlock{
			Faction:    stringList(abilities["faction"]),
			Core:       stringList(abilities["core"]),
			Unit:       namedTexts(abilities["unit"]),
			HasWargear: abilities["has_wargear"].Bool(),
			Wargear:    namedTexts(abilities["wargear"]),
			HasSupreme: abilities["has_supreme"].Bool(),
			Supreme:    supreme(abilities["supreme"]),
			Extra:      extraKeys(abilities, abilityKeys),
		},
		Extra: extraKeys(root, knownKeys),
	}

	return r, nil
}

// members indexes the keys of an object; the last of a repeated key wins.
// Anything but an object yields nil, so every lookup misses.
func members(v gjson.Result) map[string]gjson.Result {
	if !v.IsObject() {
		return nil
	}
	out := make(map[string]gjson.Result)
	v.ForEach(func(key, value gjson.Result) bool {
		out[key.Str] = value
		return true
	})
	return out
}

func extraKeys(obj map[string]gjson.Result, known map[string]bool) map[string]json.RawMessage {
	var out map[string]json.RawMessage
	for k, v := range obj {
		if k == "" || known[k] {
			continue
		}
		if out == nil {
			out = make(map[string]json.RawMessage)
		}
		out[k] = json.RawMessage(v.Raw)
	}
	return out
}

func normalize(r *domain.UnitRecord) {
	if r.Stats == nil {
		r.Stats = []domain.ModelStatRow{}
	}
	if r.Wargear == nil {
		r.Wargear = []domain.WeaponStatRow{}
	}
	if r.Keywords == nil {
		r.Keywords = []string{}
	}
	if r.Abilities.Faction == nil {
		r.Abilities.Faction = []string{}
	}
	if r.Abilities.Core == nil {
		r.Abilities.Core = []string{}
	}
	if r.Abilities.Unit == nil {
		r.Abilities.Unit = []domain.NamedText{}
	}
	if r.Abilities.Wargear == nil {
		r.Abilities.Wargear = []domain.NamedText{}
	}
}

// syntaxError builds a ParseError, using encoding/json to locate the offset.
func syntaxError(data []byte) error {
	var raw json.RawMessage
	err := json.Unmarshal(data, &raw)

	var syntaxErr *json.SyntaxError
	switch {
	case errors.As(err, &syntaxErr):
		return &domain.ParseError{Offset: syntaxErr.Offset, Err: syntaxErr}
	case err != nil:
		return &domain.ParseError{Offset: -1, Err: err}
	default:
		return &domain.ParseError{Offset: -1, Err: errors.New("invalid JSON")}
	}
}

func escapePath(key string) string {
	var b strings.Builder
	for _, c := range key {
		switch c {
		case '.', '*', '?', '|', '#', '@', '\\', ':', '!', '=', '<', '>', '%':
			b.WriteByte('\\')
		}
		b.WriteRune(c)
	}
	return b.String()
}

func text(v gjson.Result) string {
	switch v.Type {
	case gjson.String:
		return v.Str
	case gjson.Number:
		return v.Raw
	}
	return ""
}

// optionalInt reads a stat cell. Null and missing are absent; integral
// floats such as 6.0 and numeric strings are accepted; fractions truncate
// and numbers beyond the int range are absent.
func optionalInt(v gjson.Result) *int {
	switch v.Type {
	case gjson.Number:
		return floatInt(v.Num)
	case gjson.String:
		n, err := strconv.Atoi(strings.TrimSpace(v.Str))
		if err != nil {
			return nil
		}
		return domain.Int(n)
	}
	return nil
}

func optionalText(v gjson.Result) *string {
	if !v.Exists() || v.Type == gjson.Null {
		return nil
	}
	return domain.String(text(v))
}

// stringList reads a list field. A bare string is split the way the form
// input would split it.
func stringList(v gjson.Result) []string {
	if v.Type == gjson.String {
		return SplitList(v.Str)
	}
	out := []string{}
	if !v.IsArray() {
		return out
	}
	for _, item := range v.Array() {
		out = append(out, text(item))
	}
	return out
}

func modelRows(v gjson.Result) []domain.ModelStatRow {
	out := []domain.ModelStatRow{}
	if !v.IsArray() {
		return out
	}
	for _, item := range v.Array() {
		row := members(item)
		out = append(out, domain.ModelStatRow{
			ModelName:  text(row["Model Name"]),
			Move:       optionalInt(row["Move"]),
			Toughness:  optionalInt(row["Toughness"]),
			Save:       optionalInt(row["Save"]),
			Invuln:     optionalInt(row["Invuln"]),
			Wounds:     optionalInt(row["Wounds"]),
			Leadership: optionalInt(row["Leadership"]),
			OC:         optionalInt(row["OC"]),
			Extra:      extraKeys(row, modelKeys),
		})
	}
	return out
}

func weaponRows(v gjson.Result) []domain.WeaponStatRow {
	out := []domain.WeaponStatRow{}
	if !v.IsArray() {
		return out
	}
	for _, item := range v.Array() {
		row := members(item)
		out = append(out, domain.WeaponStatRow{
			Selectable: row["Selectable"].Bool(),
			Name:       text(row["Name"]),
			Keywords:   text(row["Keywords"]),
			Range:      text(row["Range"]),
			Attacks:    optionalInt(row["Attacks"]),
			Skill:      optionalInt(row["Skill"]),
			Strength:   optionalInt(row["Strength"]),
			AP:         optionalInt(row["AP"]),
			Damage:     text(row["Damage"]),
			Extra:      extraKeys(row, weaponKeys),
		})
	}
	return out
}

func namedTexts(v gjson.Result) []domain.NamedText {
	out := []domain.NamedText{}
	if !v.IsArray() {
		return out
	}
	for _, item := range v.Array() {
		obj := members(item)
		out = append(out, domain.NamedText{
			Name:  text(obj["name"]),
			Text:  text(obj["text"]),
			Extra: extraKeys(obj, namedKeys),
		})
	}
	return out
}

func supreme(v gjson.Result) domain.SupremeAbility {
	var s domain.SupremeAbility
	obj := members(v)
	for _, key := range domain.SupremeKeys {
		if p := optionalText(obj[key]); p != nil {
			s.SetField(key, *p)
		}
	}
	s.Extra = extraKeys(obj, supremeKeys)
	return s
}

func woundedValues(v gjson.Result) domain.WoundedValues {
	obj := members(v)
	return domain.WoundedValues{
		Threshold: optionalText(obj["threshold"]),
		Text:      optionalText(obj["text"]),
		Extra:     extraKeys(obj, woundedKeys),
	}
}
