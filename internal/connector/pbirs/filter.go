package pbirs

import "github.com/bmatcuk/doublestar/v4"

// Allowed reports whether path passes the pattern. Deny patterns win over
// allow patterns; an empty allow list admits every path.
func (p ReportPattern) Allowed(path string) bool {
	for _, deny := range p.Deny {
		if ok, _ := doublestar.Match(deny, path); ok {
			return false
		}
	}
	if len(p.Allow) == 0 {
		return true
	}
	for _, allow := range p.Allow {
		if ok, _ := doublestar.Match(allow, path); ok {
			return true
		}
	}
	return false
}
