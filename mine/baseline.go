package mine

// Flags are the closed and maximal flags of a pattern.
type Flags struct {
	Closed  bool
	Maximal bool
}

// MarkStructural determines closed and maximal patterns by brute force. For every
// structurally valid pattern q of res, and every subtree of q which may be
// removed without leaving the subpattern relation, the pattern q minus that
// subtree is looked up in res. If found and structurally valid, it is not
// maximal, and not closed if it has the support of q.
//
// MarkStructural does not modify res. The result agrees with the flags set in
// mode ClosedMaximalBlanket and serves as a reference for them.
func MarkStructural(res *Results) map[string]Flags {
	flags := make(map[string]Flags, res.Len())
	all := res.All()
	for _, p := range all {
		sv := p.StructurallyValid()
		flags[p.key] = Flags{Closed: sv, Maximal: sv}
	}
	for _, q := range all {
		if !q.StructurallyValid() {
			continue
		}
		for _, key := range cores(q) {
			p, ok := res.Get(key)
			if !ok || !p.StructurallyValid() {
				continue
			}
			f := flags[p.key]
			f.Maximal = false
			if p.support == q.support {
				f.Closed = false
			}
			flags[p.key] = f
		}
	}
	return flags
}

// cores returns the keys of the structurally valid patterns q minus one subtree.
// The removed subtree may be a single leaf.
//
// The root cannot be removed. Children of Sequential and Loop nodes match
// consecutively, so from these only the first and the last child may be removed.
// A subtree whose parent would be left with a single child yields no core.
func cores(q *Pattern) []string {
	t := q.tree
	var keys []string
	for n := 1; n < t.Size(); n++ {
		if removable(q, n) {
			keys = append(keys, t.WithoutSubtree(n).Key())
		}
	}
	return keys
}

func removable(q *Pattern, n int) bool {
	t := q.tree
	parent := t.Parent(n)
	count := t.ChildCount(parent)
	if count <= 2 {
		return false
	}
	if !t.Op(parent).Ordered() {
		return true
	}
	pos := t.Position(n)
	return pos == 0 || pos == count-1
}
