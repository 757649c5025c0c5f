/*
Command treeminer mines frequent subtree patterns from a treebank of process
variants.

	treeminer mine --config request.yaml treebank.yaml
	treeminer mine --min-support 2 --strategy variant-occurrence --mode cm treebank.yaml
	treeminer relations --strategy trace-occurrence treebank.yaml

File formats are described in package config.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
