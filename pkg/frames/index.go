package frames

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Rule pulls a frame index out of a bare file name.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
}

// Order matters: names with several numbers resolve by the first rule that matches.
var rules = []Rule{
	{Name: "frame_N", Pattern: regexp.MustCompile(`frame_(\d+)`)},
	{Name: "N_frame", Pattern: regexp.MustCompile(`(\d+)_frame`)},
	{Name: "trailing", Pattern: regexp.MustCompile(`(\d+)$`)},
	{Name: "_N_", Pattern: regexp.MustCompile(`_(\d+)_`)},
	{Name: "any", Pattern: regexp.MustCompile(`(\d+)`)},
}

// Rules returns a copy of the extraction cascade in evaluation order.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// Index extracts the frame index from a file name.
func Index(filename string) (int, bool) {
	idx, _, ok := match(filename)
	return idx, ok
}

// match also returns the name of the rule that fired, for debug output.
func match(filename string) (int, string, bool) {
	name := strings.ToLower(filepath.Base(filename))
	name = strings.TrimSuffix(name, filepath.Ext(name))

	for _, r := range rules {
		m := r.Pattern.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			// digits too long for an int
			continue
		}
		return n, r.Name, true
	}
	return 0, "", false
}

// Explain is Index plus the rule name, "" when nothing matched.
func Explain(filename string) (int, string, bool) {
	return match(filename)
}
