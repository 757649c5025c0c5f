/*
Package ctree implements concurrency trees, the ordered trees process variants
are represented with.

A concurrency tree is built from operator nodes and activity leaves. Operators are
Sequential (→), Concurrent (∧), Fallthrough (✕) and Loop (*). Children of
Sequential and Loop nodes are ordered; children of Concurrent and Fallthrough
nodes are unordered and kept in a canonical order (leaves first, sorted by label,
then operator subtrees, sorted by their canonical string).

Trees are stored as an arena of nodes addressed by index. Parent and right-sibling
links are indices, never pointers, and nodes are always numbered in preorder:
nodes may only be appended to the rightmost path of a tree. Modifications other
than appending create a new tree.

Every tree has a canonical string representation, for example

    →(H,∧(G,→(B,C)),K)

which may be parsed back into a tree.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package ctree

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'treeminer.ctree'.
func tracer() tracing.Trace {
	return tracing.Select("treeminer.ctree")
}

func assertThat(that bool, msg string, msgargs ...interface{}) {
	if !that {
		msg = fmt.Sprintf("treeminer.ctree: "+msg, msgargs...)
		panic(msg)
	}
}
