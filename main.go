package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jonesrussell/legisync/cmd"
	"github.com/jonesrussell/legisync/cmd/common"
)

// exitNothingToDo distinguishes an empty run from a failed one.
const exitNothingToDo = 3

func main() {
	if err := cmd.Execute(); err != nil {
		if errors.Is(err, common.ErrNothingToDo) {
			fmt.Fprintln(os.Stderr, "Nothing to do")
			os.Exit(exitNothingToDo)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
