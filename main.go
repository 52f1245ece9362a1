// The main package for the dronecrawler executable.
package main

import (
	"github.com/huntstack/drone-crawler/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
