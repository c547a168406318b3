package rewrite

import "sort"

// ApplyReplacements splices each replacement into content. Replacements are
// expressed in the original file's coordinates; they are sorted by ascending
// start offset and applied left to right with a running length delta so later
// spans stay valid as the text grows or shrinks. Spans must not overlap,
// which holds by construction since the locator scans distinct call sites.
func ApplyReplacements(content string, replacements []Replacement) string {
	sorted := append([]Replacement(nil), replacements...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	out := content
	delta := 0
	for _, rep := range sorted {
		start := rep.Start + delta
		end := rep.End + 1 + delta
		out = out[:start] + rep.Target + out[end:]
		delta += len(rep.Target) - (rep.End + 1 - rep.Start)
	}
	return out
}
