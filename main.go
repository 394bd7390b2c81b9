// Package main is the entry point for the triage CLI.
package main

import "github.com/PSE-TRIAGE/triage/cmd"

func main() {
	cmd.Execute()
}
