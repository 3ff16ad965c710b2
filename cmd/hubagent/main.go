package main

import (
	"os"

	"github.com/Atiwari330/hub-agent-sub001/cmd/hubagent/commands"
)

// main is the entry point for the hub agent CLI
// ⭐ Single CLI entry point: go run ./cmd/hubagent [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
