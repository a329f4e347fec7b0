package scan

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/1F47E/go-framereel/pkg/frames"
	"github.com/1F47E/go-framereel/pkg/logger"
)

// subject ids are a fixed-length prefix of the second name token, e.g. Fish07
const SubjectNameLen = 6

var ErrRootNotFound = errors.New("root directory not found")

// Dirs walks root and returns every directory below it holding at least one
// file that ends in ext (case-insensitive), sorted by path.
// A missing root yields an empty result and ErrRootNotFound.
func Dirs(root, ext string) ([]string, error) {
	log := logger.Scope("scan")

	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		log.Warnf("parent directory %s does not exist", root)
		return []string{}, fmt.Errorf("%w: %s", ErrRootNotFound, root)
	}

	dirs := []string{}
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// unreadable subtree, keep walking the rest
			log.Warnf("skip %s: %v", path, err)
			if d != nil && d.IsDir() && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() || path == root {
			return nil
		}
		ok, err := hasFrames(path, ext)
		if err != nil {
			log.Warnf("skip %s: %v", path, err)
			return nil
		}
		if ok {
			dirs = append(dirs, path)
		}
		return nil
	})
	if err != nil {
		return dirs, fmt.Errorf("walk %s: %w", root, err)
	}

	sort.Strings(dirs)
	log.Debugf("found %d frame dirs under %s", len(dirs), root)
	return dirs, nil
}

func hasFrames(dir, ext string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, err
	}
	for _, e := range entries {
		if !e.IsDir() && frames.HasExt(e.Name(), ext) {
			return true, nil
		}
	}
	return false, nil
}

// SubjectName derives the subject id from a frame directory name.
// "Signal_Fish07Left" gives "Fish07"; names without a second token are kept whole.
func SubjectName(dir string) string {
	base := filepath.Base(filepath.Clean(dir))
	tokens := strings.Split(base, "_")
	if len(tokens) < 2 || tokens[1] == "" {
		return base
	}
	r := []rune(tokens[1])
	if len(r) > SubjectNameLen {
		r = r[:SubjectNameLen]
	}
	return string(r)
}
