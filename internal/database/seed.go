package database

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gorm.io/gorm"
)

// RunSeeds executes every *.sql file under database/seeds in lexicographic
// order. Seed files are written to be idempotent (ON CONFLICT DO NOTHING on
// the norad_id unique index), so re-running them is safe.
func RunSeeds(db *gorm.DB) error {
	seedsDir := findDir("seeds")
	if seedsDir == "" {
		return fmt.Errorf("seeds dir not found (tried database/seeds)")
	}
	entries, err := os.ReadDir(seedsDir)
	if err != nil {
		return err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	for _, name := range files {
		raw, err := os.ReadFile(filepath.Join(seedsDir, name))
		if err != nil {
			return fmt.Errorf("read seed %s: %w", name, err)
		}
		if err := db.Exec(string(raw)).Error; err != nil {
			return fmt.Errorf("seed %s: %w", name, err)
		}
		log.Printf("seed: applied %s", name)
	}
	return nil
}
