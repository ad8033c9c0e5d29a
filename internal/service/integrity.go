package service

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/beaux-riel/UltraEdge-sub000/internal/engine"
	"github.com/beaux-riel/UltraEdge-sub000/internal/model"
)

type BackupInfo struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
	SizeBytes int64     `json:"size_bytes"`
}

type DoctorReport struct {
	OrphanEntries      int            `json:"orphan_entries"`
	OrphanRules        int            `json:"orphan_rules"`
	MismatchedEntries  int            `json:"mismatched_entries"`
	InvalidRules       int            `json:"invalid_rules"`
	PlansWithConflicts int            `json:"plans_with_conflicts"`
	ConflictPairs      int            `json:"conflict_pairs"`
	ConflictsByPlan    map[string]int `json:"conflicts_by_plan,omitempty"`
	FixedRows          int            `json:"fixed_rows,omitempty"`
}

// Healthy reports whether the store has no structural problems. Rule conflicts
// are warnings and do not make a store unhealthy.
func (r DoctorReport) Healthy() bool {
	return r.OrphanEntries == 0 && r.OrphanRules == 0 && r.MismatchedEntries == 0 && r.InvalidRules == 0
}

func CreateBackup(dbPath, outPath string) (BackupInfo, error) {
	if strings.TrimSpace(dbPath) == "" {
		return BackupInfo{}, fmt.Errorf("db path is required")
	}
	if strings.TrimSpace(outPath) == "" {
		return BackupInfo{}, fmt.Errorf("backup output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return BackupInfo{}, fmt.Errorf("create backup directory: %w", err)
	}
	if err := copyFile(dbPath, outPath); err != nil {
		return BackupInfo{}, err
	}
	checksum, err := fileSHA256(outPath)
	if err != nil {
		return BackupInfo{}, err
	}
	if err := os.WriteFile(outPath+".sha256", []byte(checksum+"\n"), 0o644); err != nil {
		return BackupInfo{}, fmt.Errorf("write checksum file: %w", err)
	}
	st, err := os.Stat(outPath)
	if err != nil {
		return BackupInfo{}, fmt.Errorf("stat backup: %w", err)
	}
	return BackupInfo{Path: outPath, Checksum: checksum, CreatedAt: st.ModTime(), SizeBytes: st.Size()}, nil
}

func RestoreBackup(backupPath, dbPath string, force bool) error {
	if strings.TrimSpace(backupPath) == "" || strings.TrimSpace(dbPath) == "" {
		return fmt.Errorf("backup path and db path are required")
	}
	if !force {
		if _, err := os.Stat(dbPath); err == nil {
			return fmt.Errorf("target db already exists; use --force to overwrite")
		}
	}
	if expected, err := os.ReadFile(backupPath + ".sha256"); err == nil {
		actual, err := fileSHA256(backupPath)
		if err != nil {
			return err
		}
		if strings.TrimSpace(string(expected)) != actual {
			return fmt.Errorf("backup checksum mismatch")
		}
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("create db directory: %w", err)
	}
	return copyFile(backupPath, dbPath)
}

func ListBackups(dir string) ([]BackupInfo, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read backup dir: %w", err)
	}
	out := make([]BackupInfo, 0)
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".db") {
			continue
		}
		full := filepath.Join(dir, f.Name())
		st, err := os.Stat(full)
		if err != nil {
			continue
		}
		checksum := ""
		if b, err := os.ReadFile(full + ".sha256"); err == nil {
			checksum = strings.TrimSpace(string(b))
		}
		out = append(out, BackupInfo{Path: full, Checksum: checksum, CreatedAt: st.ModTime(), SizeBytes: st.Size()})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// RunDoctor checks stored plans for orphaned or mismatched rows, rules that no
// longer validate, and rule conflicts. With fix set, orphans, mismatched entries
// and invalid rules are deleted.
func RunDoctor(db *sql.DB, fix bool) (DoctorReport, error) {
	report := DoctorReport{ConflictsByPlan: map[string]int{}}
	counts := []struct {
		dest  *int
		query string
	}{
		{&report.OrphanEntries, `SELECT
  (SELECT COUNT(1) FROM nutrition_entries n LEFT JOIN plans p ON p.id = n.plan_id WHERE p.id IS NULL) +
  (SELECT COUNT(1) FROM hydration_entries h LEFT JOIN plans p ON p.id = h.plan_id WHERE p.id IS NULL)`},
		{&report.OrphanRules, `SELECT COUNT(1) FROM rules r LEFT JOIN plans p ON p.id = r.plan_id WHERE p.id IS NULL`},
		{&report.MismatchedEntries, `SELECT
  (SELECT COUNT(1) FROM nutrition_entries n JOIN plans p ON p.id = n.plan_id WHERE p.kind <> 'nutrition') +
  (SELECT COUNT(1) FROM hydration_entries h JOIN plans p ON p.id = h.plan_id WHERE p.kind <> 'hydration')`},
	}
	for _, c := range counts {
		if err := db.QueryRow(c.query).Scan(c.dest); err != nil {
			return report, fmt.Errorf("doctor count: %w", err)
		}
	}

	plans, err := ListPlans(db, ListPlansFilter{})
	if err != nil {
		return report, fmt.Errorf("doctor list plans: %w", err)
	}
	rulesByPlan := make([][]model.Rule, len(plans))
	invalidIDs := make([]string, 0)
	for i, p := range plans {
		rules, err := listRules(db, p.ID)
		if err != nil {
			return report, fmt.Errorf("doctor rules for %s: %w", p.ID, err)
		}
		valid := rules[:0:0]
		for _, r := range rules {
			if engine.ValidateRule(r) != nil {
				invalidIDs = append(invalidIDs, r.ID)
				continue
			}
			valid = append(valid, r)
		}
		rulesByPlan[i] = valid
	}
	report.InvalidRules = len(invalidIDs)

	conflicts := make([]int, len(plans))
	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range plans {
		g.Go(func() error {
			conflicts[i] = len(engine.DetectConflicts(rulesByPlan[i]))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}
	for i, n := range conflicts {
		if n == 0 {
			continue
		}
		report.PlansWithConflicts++
		report.ConflictPairs += n
		report.ConflictsByPlan[plans[i].ID] = n
	}

	if fix && !report.Healthy() {
		err := withTx(db, func(tx *sql.Tx) error {
			stmts := []string{
				`DELETE FROM nutrition_entries WHERE plan_id NOT IN (SELECT id FROM plans WHERE kind = 'nutrition')`,
				`DELETE FROM hydration_entries WHERE plan_id NOT IN (SELECT id FROM plans WHERE kind = 'hydration')`,
				`DELETE FROM rules WHERE plan_id NOT IN (SELECT id FROM plans)`,
			}
			for _, s := range stmts {
				res, err := tx.Exec(s)
				if err != nil {
					return fmt.Errorf("doctor fix: %w", err)
				}
				n, _ := res.RowsAffected()
				report.FixedRows += int(n)
			}
			for _, id := range invalidIDs {
				if _, err := tx.Exec(`DELETE FROM rules WHERE id = ?`, id); err != nil {
					return fmt.Errorf("doctor fix rule %s: %w", id, err)
				}
				report.FixedRows++
			}
			return nil
		})
		if err != nil {
			return report, err
		}
	}

	return report, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source file: %w", err)
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create destination file: %w", err)
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy file: %w", err)
	}
	if err := out.Sync(); err != nil {
		return fmt.Errorf("sync destination file: %w", err)
	}
	return nil
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file for checksum: %w", err)
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
