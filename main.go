// The main package for the countryscrape executable.
package main

import (
	"github.com/kasrat/countryscrape/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
