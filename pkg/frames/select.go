package frames

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/1F47E/go-framereel/pkg/logger"
)

// Record is one frame file and its extracted index.
type Record struct {
	Index int
	Name  string
	Path  string
}

// Selection is the ordered frame list of one directory.
type Selection struct {
	Frames []Record
	// files with no extractable index
	Dropped int
	// files with an index outside the requested range
	OutOfRange int
}

// Select lists files in dir ending in ext, keeps those whose index is in
// [start, end] and orders them by index. Equal indices keep name order.
func Select(dir, ext string, start, end int) (Selection, error) {
	log := logger.Scope("frames select")

	entries, err := os.ReadDir(dir)
	if err != nil {
		return Selection{}, fmt.Errorf("read frames dir: %w", err)
	}

	var sel Selection
	for _, e := range entries {
		if e.IsDir() || !HasExt(e.Name(), ext) {
			continue
		}
		idx, ok := Index(e.Name())
		if !ok {
			log.Debugf("no frame index in %s, dropped", e.Name())
			sel.Dropped++
			continue
		}
		if idx < start || idx > end {
			sel.OutOfRange++
			continue
		}
		sel.Frames = append(sel.Frames, Record{
			Index: idx,
			Name:  e.Name(),
			Path:  filepath.Join(dir, e.Name()),
		})
	}

	sort.SliceStable(sel.Frames, func(i, j int) bool {
		return sel.Frames[i].Index < sel.Frames[j].Index
	})

	if sel.Dropped > 0 {
		log.Warnf("%s: %d files without a frame index were dropped", dir, sel.Dropped)
	}
	return sel, nil
}

// HasExt reports whether name ends in ext, ignoring case.
func HasExt(name, ext string) bool {
	return strings.HasSuffix(strings.ToLower(name), strings.ToLower(ext))
}
