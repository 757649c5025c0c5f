/*
Package mine discovers frequent subtree patterns in a treebank of concurrency trees.

Patterns are grown by rightmost-path extension: a pattern is only ever extended by
appending a new rightmost child to a node on its rightmost path. Every distinct
pattern shape is generated exactly once this way. Each pattern carries the list of
its occurrences in the treebank, identified by the root image (anchor) and the
image of the rightmost node. Extending a pattern revalidates these occurrences
and yields the occurrences of the new pattern; candidates which cannot reach the
minimum support any more are dropped early.

Mining proceeds level by level, one pattern size at a time. Candidates of one
level are independent of each other and may be validated concurrently.

In mode ClosedMaximalBlanket, every structurally valid pattern is additionally
checked for closedness and maximality once all levels are mined. Instead of
comparing pairs of patterns, the miner inspects the occurrences of a pattern for
leaves ("blankets") the treebank offers next to its rightmost path, and falls
back to the supertrees announced by the mined patterns, see blanket.go.
MarkStructural is a brute-force reference implementation of the same flags.

Terminology

A pattern is structurally valid if each of its operator nodes has at least two
children. Operators with fewer children are intermediate states of growth and
are never flagged closed or maximal.

A supertree of a pattern p is a structurally valid pattern q within the search
space such that q minus a single leaf or a single subtree is p. A structurally
valid pattern p is closed if no frequent supertree has the same support as p. It
is maximal if no supertree is frequent at all. Patterns of the maximum requested
size have no supertrees in the search space.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package mine

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'treeminer.mine'.
func tracer() tracing.Trace {
	return tracing.Select("treeminer.mine")
}

func assertThat(that bool, msg string, msgargs ...interface{}) {
	if !that {
		msg = fmt.Sprintf("treeminer.mine: "+msg, msgargs...)
		panic(msg)
	}
}
