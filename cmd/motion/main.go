// Command motion drives frame-synchronized progress runs from the terminal.
package main

import (
	"fmt"
	"os"

	"github.com/go-drift/motion/cmd/motion/cmd"
)

func main() {
	if err := cmd.Execute(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
