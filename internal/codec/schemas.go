package codec

import "github.com/dom/crusadetome/internal/domain"

// ModelStatSchema is the model characteristics grid.
var ModelStatSchema = NewRowSchema(
	TextColumn("Model Name", func(r *domain.ModelStatRow) *string { return &r.ModelName }),
	IntColumn("Move", func(r *domain.ModelStatRow) **int { return &r.Move }),
	IntColumn("Toughness", func(r *domain.ModelStatRow) **int { return &r.Toughness }),
	IntColumn("Save", func(r *domain.ModelStatRow) **int { return &r.Save }),
	IntColumn("Invuln", func(r *domain.ModelStatRow) **int { return &r.Invuln }),
	IntColumn("Wounds", func(r *domain.ModelStatRow) **int { return &r.Wounds }),
	IntColumn("Leadership", func(r *domain.ModelStatRow) **int { return &r.Leadership }),
	IntColumn("OC", func(r *domain.ModelStatRow) **int { return &r.OC }),
)

// WeaponStatSchema is the wargear profile grid.
var WeaponStatSchema = NewRowSchema(
	BoolColumn("Selectable", func(r *domain.WeaponStatRow) *bool { return &r.Selectable }),
	TextColumn("Name", func(r *domain.WeaponStatRow) *string { return &r.Name }),
	TextColumn("Keywords", func(r *domain.WeaponStatRow) *string { return &r.Keywords }),
	TextColumn("Range", func(r *domain.WeaponStatRow) *string { return &r.Range }),
	IntColumn("Attacks", func(r *domain.WeaponStatRow) **int { return &r.Attacks }),
	IntColumn("Skill", func(r *domain.WeaponStatRow) **int { return &r.Skill }),
	IntColumn("Strength", func(r *domain.WeaponStatRow) **int { return &r.Strength }),
	IntColumn("AP", func(r *domain.WeaponStatRow) **int { return &r.AP }),
	TextColumn("Damage", func(r *domain.WeaponStatRow) *string { return &r.Damage }),
)

// AbilitySchema is the grid for unit and wargear abilities.
var AbilitySchema = NewRowSchema(
	TextColumn("name", func(r *domain.NamedText) *string { return &r.Name }),
	TextColumn("text", func(r *domain.NamedText) *string { return &r.Text }),
)
