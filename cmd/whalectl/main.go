// Command whalectl talks to a running whale alerts deployment: it can push a
// manual sighting broadcast and dump the debug view.
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
