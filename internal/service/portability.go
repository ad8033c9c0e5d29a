package service

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/beaux-riel/UltraEdge-sub000/internal/engine"
	"github.com/beaux-riel/UltraEdge-sub000/internal/model"
)

const planDocumentVersion = 1

// PlanDocument is the file format plans are shared in.
type PlanDocument struct {
	Version        int                   `json:"version" yaml:"version"`
	ExportedAt     string                `json:"exported_at,omitempty" yaml:"exported_at,omitempty"`
	NutritionPlans []model.NutritionPlan `json:"nutrition_plans,omitempty" yaml:"nutrition_plans,omitempty"`
	HydrationPlans []model.HydrationPlan `json:"hydration_plans,omitempty" yaml:"hydration_plans,omitempty"`
}

type DocumentFormat string

const (
	FormatJSON DocumentFormat = "json"
	FormatYAML DocumentFormat = "yaml"
)

// ParseDocumentFormat resolves an explicit format, or infers one from path.
func ParseDocumentFormat(format, path string) (DocumentFormat, error) {
	f := strings.ToLower(strings.TrimSpace(format))
	if f == "" {
		f = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}
	switch f {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported format %q (use json or yaml)", f)
}

func EncodeDocument(doc *PlanDocument, format DocumentFormat) ([]byte, error) {
	switch format {
	case FormatJSON:
		b, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal plan json: %w", err)
		}
		return append(b, '\n'), nil
	case FormatYAML:
		b, err := yaml.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("marshal plan yaml: %w", err)
		}
		return b, nil
	}
	return nil, fmt.Errorf("unsupported format %q", format)
}

func DecodeDocument(raw []byte, format DocumentFormat) (*PlanDocument, error) {
	var doc PlanDocument
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("parse plan json: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("parse plan yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
	if doc.Version > planDocumentVersion {
		return nil, fmt.Errorf("plan document version %d is newer than supported version %d", doc.Version, planDocumentVersion)
	}
	return &doc, nil
}

// ExportPlans snapshots the given plans, or every plan when refs is empty.
func ExportPlans(db *sql.DB, refs ...string) (*PlanDocument, error) {
	doc := &PlanDocument{Version: planDocumentVersion, ExportedAt: time.Now().UTC().Format(time.RFC3339)}
	if len(refs) == 0 {
		headers, err := ListPlans(db, ListPlansFilter{})
		if err != nil {
			return nil, err
		}
		for i := len(headers) - 1; i >= 0; i-- {
			refs = append(refs, headers[i].ID)
		}
	}
	for _, ref := range refs {
		h, err := PlanByID(db, ref)
		if err != nil {
			return nil, err
		}
		switch h.Kind {
		case model.PlanKindNutrition:
			p, err := LoadNutritionPlan(db, h.ID)
			if err != nil {
				return nil, err
			}
			doc.NutritionPlans = append(doc.NutritionPlans, p)
		case model.PlanKindHydration:
			p, err := LoadHydrationPlan(db, h.ID)
			if err != nil {
				return nil, err
			}
			doc.HydrationPlans = append(doc.HydrationPlans, p)
		}
	}
	return doc, nil
}

type ImportMode string

const (
	ImportModeFail    ImportMode = "fail"
	ImportModeSkip    ImportMode = "skip"
	ImportModeMerge   ImportMode = "merge"
	ImportModeReplace ImportMode = "replace"
)

type ImportOptions struct {
	Mode   ImportMode
	DryRun bool
}

type ImportReport struct {
	Inserted  int      `json:"inserted"`
	Merged    int      `json:"merged"`
	Replaced  int      `json:"replaced"`
	Skipped   int      `json:"skipped"`
	Conflicts int      `json:"conflicts"`
	Warnings  []string `json:"warnings,omitempty"`
}

var errDryRun = errors.New("dry run")

// ImportPlans stores every plan in doc. A plan collides with a stored plan of
// the same kind and name; Mode decides what happens then. Rules are validated
// before anything is written, and a dry run rolls back after counting.
func ImportPlans(db *sql.DB, doc *PlanDocument, opts ImportOptions) (ImportReport, error) {
	report := ImportReport{}
	mode := normalizeImportMode(opts.Mode)

	var invalid []error
	for _, p := range doc.NutritionPlans {
		if err := engine.ValidateRules(p.Rules); err != nil {
			invalid = append(invalid, fmt.Errorf("plan %q: %w", p.Name, err))
		}
	}
	for _, p := range doc.HydrationPlans {
		if err := engine.ValidateRules(p.Rules); err != nil {
			invalid = append(invalid, fmt.Errorf("plan %q: %w", p.Name, err))
		}
	}
	if err := errors.Join(invalid...); err != nil {
		return report, err
	}

	err := withTx(db, func(tx *sql.Tx) error {
		for _, p := range doc.NutritionPlans {
			if err := importPlan(tx, &report, mode, model.PlanKindNutrition, p.Name, p.Rules,
				func() error { _, err := saveNutritionPlan(tx, p); return err },
				func(existingID string) error {
					existing, err := loadNutritionPlan(tx, existingID)
					if err != nil {
						return err
					}
					merged := engine.MergeNutritionPlans(existing, p)
					merged.Name, merged.Description, merged.RaceContext = existing.Name, existing.Description, existing.RaceContext
					var warnings []string
					merged.Rules, warnings = dropInvalidRules(dedupeRules(merged.Rules))
					report.Warnings = append(report.Warnings, warnings...)
					return rewriteNutritionPlan(tx, existingID, merged)
				},
			); err != nil {
				return err
			}
		}
		for _, p := range doc.HydrationPlans {
			if err := importPlan(tx, &report, mode, model.PlanKindHydration, p.Name, p.Rules,
				func() error { _, err := saveHydrationPlan(tx, p); return err },
				func(existingID string) error {
					existing, err := loadHydrationPlan(tx, existingID)
					if err != nil {
						return err
					}
					merged := engine.MergeHydrationPlans(existing, p)
					merged.Name, merged.Description, merged.RaceContext = existing.Name, existing.Description, existing.RaceContext
					var warnings []string
					merged.Rules, warnings = dropInvalidRules(dedupeRules(merged.Rules))
					report.Warnings = append(report.Warnings, warnings...)
					return rewriteHydrationPlan(tx, existingID, merged)
				},
			); err != nil {
				return err
			}
		}
		if opts.DryRun {
			return errDryRun
		}
		return nil
	})
	if err != nil && !errors.Is(err, errDryRun) {
		return report, fmt.Errorf("import plans: %w", err)
	}
	return report, nil
}

func importPlan(tx *sql.Tx, report *ImportReport, mode ImportMode, kind model.PlanKind, name string, rules []model.Rule, insert func() error, merge func(existingID string) error) error {
	if n := len(engine.DetectConflicts(rules)); n > 0 {
		report.Warnings = append(report.Warnings, fmt.Sprintf("plan %q has %d conflicting rule pair(s)", name, n))
	}
	existingID, err := findPlanByName(tx, kind, name)
	if err != nil {
		return err
	}
	if existingID == "" {
		if err := insert(); err != nil {
			return fmt.Errorf("import plan %q: %w", name, err)
		}
		report.Inserted++
		return nil
	}

	report.Conflicts++
	switch mode {
	case ImportModeFail:
		return fmt.Errorf("%s plan %q already exists", kind, name)
	case ImportModeSkip:
		report.Skipped++
		return nil
	case ImportModeReplace:
		if err := deletePlanTx(tx, existingID); err != nil {
			return err
		}
		if err := insert(); err != nil {
			return fmt.Errorf("replace plan %q: %w", name, err)
		}
		report.Replaced++
		return nil
	}
	if err := merge(existingID); err != nil {
		return fmt.Errorf("merge plan %q: %w", name, err)
	}
	report.Merged++
	return nil
}

// dedupeRules drops rules identical to an earlier one apart from their id.
func dedupeRules(rules []model.Rule) []model.Rule {
	seen := make(map[model.Rule]bool, len(rules))
	out := make([]model.Rule, 0, len(rules))
	for _, r := range rules {
		key := r
		key.ID = ""
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}

func findPlanByName(q querier, kind model.PlanKind, name string) (string, error) {
	var id string
	err := q.QueryRow(`SELECT id FROM plans WHERE kind = ? AND LOWER(TRIM(name)) = ? ORDER BY created_at ASC LIMIT 1`, kind, normalizeName(name)).Scan(&id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("find plan %q: %w", name, err)
	}
	return id, nil
}

func deletePlanTx(q querier, id string) error {
	if _, err := q.Exec(`DELETE FROM plans WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete plan %s: %w", id, err)
	}
	return nil
}

func normalizeImportMode(mode ImportMode) ImportMode {
	switch mode {
	case ImportModeFail, ImportModeSkip, ImportModeMerge, ImportModeReplace:
		return mode
	default:
		return ImportModeMerge
	}
}
