package fixtures

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// minFixtureSize filters out index/manifest files and fixtures too small
// to be worth benchmarking.
const minFixtureSize = 1000

// fixtureDirs are the directory names scanned for benchmark fixtures:
// the two recent hardforks plus the generic blockchain test category.
var fixtureDirs = []string{"cancun", "prague", "blockchain_tests"}

// Discover returns candidate fixture files under dir: .json files below a
// cancun/, prague/ or blockchain_tests/ directory, excluding underscore-
// prefixed index files and files under minFixtureSize bytes. The result
// follows file-system traversal order per scanned directory name; a file
// below several matching directories appears once per match.
func Discover(dir string) ([]string, error) {
	var found []string

	for _, marker := range fixtureDirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if filepath.Ext(path) != ".json" {
				return nil
			}
			if strings.HasPrefix(d.Name(), "_") {
				return nil
			}
			rel, err := filepath.Rel(dir, path)
			if err != nil {
				return err
			}
			if !underDir(rel, marker) {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return err
			}
			if info.Size() < minFixtureSize {
				return nil
			}
			found = append(found, path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return found, nil
}

// underDir reports whether one of rel's parent directory components
// equals name.
func underDir(rel, name string) bool {
	dir := filepath.Dir(rel)
	for _, part := range strings.Split(dir, string(filepath.Separator)) {
		if part == name {
			return true
		}
	}
	return false
}
