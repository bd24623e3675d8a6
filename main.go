// Package main is the entry point for the enragetracker CLI, which reads the
// boss kill feed and reports per-player enrage statistics.
package main

import "github.com/diealivers/enrage-tracker/cmd"

func main() {
	cmd.Execute()
}
