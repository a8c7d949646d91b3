package exclude

import (
	"path"
	"strings"
)

// RootPolicy answers syncability questions for full paths under one sync
// root. It hides the local debris folder and applies the root's exclusion
// patterns to root-relative paths.
type RootPolicy struct {
	root    string
	debris  string
	matcher *Matcher
}

func PolicyFor(root, debrisName string, m *Matcher) *RootPolicy {
	p := &RootPolicy{root: path.Clean(root), matcher: m}
	if debrisName != "" {
		p.debris = path.Join(p.root, debrisName)
	}
	return p
}

func (p *RootPolicy) IsSyncable(livePath string, dir bool) bool {
	if p == nil {
		return true
	}
	if p.debris != "" && livePath == p.debris {
		return false
	}
	rel := strings.TrimPrefix(livePath, p.root+"/")
	return !p.matcher.IsExcluded(rel, dir)
}
