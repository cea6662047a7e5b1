// Package main is the entry point for the sqlagent CLI, which answers
// product catalog questions by generating and running SQL.
package main

import (
	"sqlagent/cli/cmd"
)

func main() {
	cmd.Execute()
}
