package deps

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// latestKeyword is the user-facing spelling of [Latest].
const latestKeyword = "latest"

// Version is the version requested for a root package: either [Latest] or an
// exact version string. The zero value is Latest.
type Version struct {
	exact string
}

// Latest requests whatever version the index carries.
var Latest = Version{}

// Exact requests a specific version. An empty string yields [Latest].
func Exact(v string) Version {
	return Version{exact: strings.TrimSpace(v)}
}

// ParseVersion converts user input to a Version. "latest" (any case) and the
// empty string mean [Latest]; everything else is an exact version.
func ParseVersion(s string) Version {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, latestKeyword) {
		return Latest
	}
	return Exact(s)
}

// IsLatest reports whether v is [Latest].
func (v Version) IsLatest() bool { return v.exact == "" }

// Exact returns the requested version and true, or "" and false for [Latest].
func (v Version) Exact() (string, bool) { return v.exact, v.exact != "" }

// String returns "latest" or the exact version.
func (v Version) String() string {
	if v.IsLatest() {
		return latestKeyword
	}
	return v.exact
}

// Relation describes how a requested version compares with the indexed one.
type Relation string

const (
	RelationUnknown Relation = ""      // Versions are not comparable
	RelationOlder   Relation = "older" // Requested version is older than the index
	RelationNewer   Relation = "newer" // Requested version is newer than the index
)

// Notice reports that a requested version is not the one in the index.
// Resolution proceeds with the indexed version; a Notice is informational.
type Notice struct {
	Package   string   `json:"package"`
	Requested string   `json:"requested"`
	Actual    string   `json:"actual"`
	Relation  Relation `json:"relation,omitempty"`
}

// String renders the notice for console output.
func (n Notice) String() string {
	msg := fmt.Sprintf("version %s of %s not in index, using %s", n.Requested, n.Package, n.Actual)
	if n.Relation != RelationUnknown {
		msg += fmt.Sprintf(" (requested version is %s)", n.Relation)
	}
	return msg
}

// checkVersion returns a Notice when v asks for a version other than the one
// pkg carries.
func checkVersion(pkg Package, v Version) (Notice, bool) {
	want, exact := v.Exact()
	if !exact || want == pkg.Version {
		return Notice{}, false
	}
	return Notice{
		Package:   pkg.Name,
		Requested: want,
		Actual:    pkg.Version,
		Relation:  compareVersions(want, pkg.Version),
	}, true
}

// compareVersions compares two version strings leniently. A trailing "-rN"
// package release is split off: the upstream parts are compared as semver and
// ties are broken by N, with a missing release counting as r0. Versions whose
// upstream part is not semver-like compare as unknown.
func compareVersions(requested, actual string) Relation {
	rBase, rRel := splitRelease(requested)
	aBase, aRel := splitRelease(actual)

	rv, err := semver.NewVersion(rBase)
	if err != nil {
		return RelationUnknown
	}
	av, err := semver.NewVersion(aBase)
	if err != nil {
		return RelationUnknown
	}
	c := rv.Compare(av)
	if c == 0 {
		c = cmp.Compare(rRel, aRel)
	}
	switch c {
	case -1:
		return RelationOlder
	case 1:
		return RelationNewer
	default:
		return RelationUnknown
	}
}

// splitRelease splits "1.36.1-r5" into "1.36.1" and 5.
func splitRelease(v string) (string, int) {
	i := strings.LastIndex(v, "-r")
	if i < 0 {
		return v, 0
	}
	n, err := strconv.Atoi(v[i+2:])
	if err != nil || n < 0 {
		return v, 0
	}
	return v[:i], n
}
