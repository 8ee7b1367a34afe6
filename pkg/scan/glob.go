// Pomelo checks set members against glob patterns while serving scans; the following module implements glob matching.

package scan

import (
	"iter"

	"v.io/v23/glob"
)

// MatchGlob filters the `members` stream down to the ones matching the given glob pattern.
func MatchGlob(pattern string, members iter.Seq[string]) iter.Seq[string] {
	// Parse the glob pattern.
	parsedPattern, err := glob.Parse(pattern)
	if err != nil { // If pattern is invalid, return empty sequence.
		return func(yield func(string) bool) {}
	}
	return func(yield func(string) bool) {
		for member := range members {
			if parsedPattern.Head().Match(member) {
				if !yield(member) {
					return
				}
			}
		}
	}
}
