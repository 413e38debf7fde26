package main

import (
	"os"
	"runtime"

	"github.com/cybernilsen/cyberwatch/commands"
	"github.com/cybernilsen/cyberwatch/config"
	"github.com/urfave/cli"
)

// Entry point of cyberwatch
func main() {
	app := cli.NewApp()
	app.Name = "cyberwatch"
	app.Usage = "Watch a host's live network connections for suspicious activity."

	app.Version = config.Version

	// Define commands used with this application
	app.Commands = commands.Commands()

	runtime.GOMAXPROCS(runtime.NumCPU())
	app.Run(os.Args)
}
