package main

import "github.com/devicelab-dev/agent-runner/pkg/cli"

func main() {
	cli.Execute()
}
