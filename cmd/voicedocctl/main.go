// Command voicedocctl is the operator tool for the voice documentation
// backend.
//
// Usage:
//
//	voicedocctl [--config path] <command> [args]
//
// Commands:
//
//	migrate       - apply pending database migrations
//	verify-chain  - recompute the audit hash chain
//	sweep         - fail recordings stuck in processing
//	requeue       - reset a failed recording to pending
package main

import (
	"fmt"
	"os"

	"github.com/heartmarshall/voicedoc-backend/cmd/voicedocctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
