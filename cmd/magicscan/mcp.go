package main

import (
	"os"

	"github.com/ironsheep/magicscan/internal/log"
	"github.com/ironsheep/magicscan/internal/server"
)

// runMCP serves the pipeline tools over stdin/stdout. The flags set the
// defaults for tool arguments the client leaves out.
func runMCP(args []string) error {
	fl := newFlags("mcp", os.Stderr)
	if err := fl.fs.Parse(args); err != nil {
		return err
	}
	cfg, err := fl.config()
	if err != nil {
		return err
	}

	server.Version = Version
	log.Debug("MCP server starting", "version", Version, "built", BuildTime, "commit", GitCommit)
	return server.New(cfg).Run()
}
