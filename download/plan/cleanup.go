package plan

import (
	"io/fs"
	"log"
	"os"
	"path/filepath"
)

// CleanStaleScratch removes scratch directories left behind by interrupted
// runs anywhere under root. Returns the number of directories removed. Errors
// on individual entries are logged and skipped; a missing root is not an
// error.
func CleanStaleScratch(root string) int {
	removed := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() || !IsScratchDir(d.Name()) {
			return nil
		}
		if rmErr := os.RemoveAll(path); rmErr != nil {
			log.Printf("WARN: stale_scratch_remove_failed dir=%s error=%v", path, rmErr)
			return fs.SkipDir
		}
		removed++
		return fs.SkipDir
	})
	if err != nil && !os.IsNotExist(err) {
		log.Printf("WARN: stale_scratch_walk_failed root=%s error=%v", root, err)
	}
	return removed
}
