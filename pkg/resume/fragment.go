package resume

import "strings"

// Fragment is one run of text as laid out on a page.
type Fragment struct {
	Str string
	EOL bool
}

// MergeFragments concatenates fragments in order and adds a newline after
// every fragment that ends a line.
func MergeFragments(fragments []Fragment) string {
	var sb strings.Builder
	for _, f := range fragments {
		sb.WriteString(f.Str)
		if f.EOL {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
