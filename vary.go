package unpoly

import (
	"sort"
	"strings"
)

// varySet collects the canonical names of the request headers that have
// influenced the response so far. It only ever grows.
type varySet map[string]struct{}

// addVary records a request header as having influenced the response.
// The set is created on first use, so a zero-value Unpoly works too.
func (up *Unpoly) addVary(name string) {
	if up.vary == nil {
		up.vary = varySet{}
	}
	up.vary[name] = struct{}{}
}

// header renders the set as a Vary header value: sorted, comma-joined,
// no spaces.
func (v varySet) header() string {
	names := make([]string, 0, len(v))
	for name := range v {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}
