package mirror

import "fmt"

// TitleMarker prefixes every mirrored issue's title, distinguishing mirrors
// from issues created natively in Linear.
const TitleMarker = "[🛠️GH]"

// DerivedTitle builds the deterministic title for a mirror of the given
// source issue, e.g. "[🛠️GH] acme/widgets#42: Fix race".
//
// The (repo, number) pair makes the result unique per source issue, so the
// title doubles as a fallback matching key when a mirror's description
// lost the source URL.
func DerivedTitle(repo string, number int, title string) string {
	return fmt.Sprintf("%s %s#%d: %s", TitleMarker, repo, number, title)
}
