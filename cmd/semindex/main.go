// Command semindex indexes a codebase into a local vector store and
// serves semantic search over stdio (MCP) or directly from the CLI.
package main

import "github.com/sourcelens/semindex/internal/cli"

func main() {
	cli.Execute()
}
