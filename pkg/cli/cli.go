// Package cli provides the command-line interface for agent-runner.
package cli

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

// Version is set at build time.
var Version = "dev"

// GlobalFlags are available to all commands.
var GlobalFlags = []cli.Flag{
	&cli.BoolFlag{
		Name:    "verbose",
		Usage:   "Enable verbose logging",
		EnvVars: []string{"AGENT_VERBOSE"},
	},
	&cli.BoolFlag{
		Name:  "no-ansi",
		Usage: "Disable ANSI colors",
	},
}

// Execute runs the CLI.
func Execute() {
	app := &cli.App{
		Name:    "agent-runner",
		Usage:   "AI-driven UI testing agent for mobile and web apps",
		Version: Version,
		Description: `Agent Runner performs natural-language UI testing tasks against
iOS, Android, and web applications. A language model decides each step
from the live page source and screenshot; the runner executes it.

Examples:
  agent-runner run prompt.txt tasks.json config.yaml
  agent-runner run prompt.txt tasks.json config.yaml --appium-url http://localhost:4723
  agent-runner run prompt.txt tasks.json web.yaml --oracle-url http://localhost:11434`,
		Flags: GlobalFlags,
		Commands: []*cli.Command{
			runCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
