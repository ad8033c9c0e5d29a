package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrPlanNotFound  = errors.New("plan not found")
	ErrEntryNotFound = errors.New("entry not found")
	ErrRuleNotFound  = errors.New("rule not found")
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

var (
	_ querier = (*sql.DB)(nil)
	_ querier = (*sql.Tx)(nil)
)

func newID() string {
	return uuid.NewString()
}

func validateNonNegativeFloat(name string, value float64) error {
	if value < 0 {
		return fmt.Errorf("%s must be >= 0", name)
	}
	return nil
}

func validateNonNegative(fields map[string]float64) error {
	for _, name := range sortedKeys(fields) {
		if err := validateNonNegativeFloat(name, fields[name]); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func normalizeName(name string) string {
	return strings.TrimSpace(strings.ToLower(name))
}

// resolvePlanID accepts a full plan id or an unambiguous prefix of one.
func resolvePlanID(q querier, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("plan id is required")
	}
	rows, err := q.Query(`SELECT id FROM plans WHERE substr(id, 1, length(?)) = ? ORDER BY id LIMIT 3`, ref, ref)
	if err != nil {
		return "", fmt.Errorf("lookup plan %q: %w", ref, err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("scan plan id: %w", err)
		}
		if id == ref {
			return id, nil
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("iterate plan ids: %w", err)
	}
	switch len(ids) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrPlanNotFound, ref)
	case 1:
		return ids[0], nil
	}
	return "", fmt.Errorf("plan id %q is ambiguous", ref)
}

func withTx(db *sql.DB, run func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	if err := run(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
