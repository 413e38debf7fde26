package commands

import (
	"github.com/cybernilsen/cyberwatch/pkg/geo"
	"github.com/cybernilsen/cyberwatch/pkg/monitor"
	"github.com/cybernilsen/cyberwatch/pkg/sampler"
	"github.com/cybernilsen/cyberwatch/pkg/stats"
	"github.com/cybernilsen/cyberwatch/pkg/threat"
	"github.com/cybernilsen/cyberwatch/resources"
	"github.com/urfave/cli"
)

var allCommands []cli.Command

//bootstrapCommands registers a command to be returned by Commands()
func bootstrapCommands(commands ...cli.Command) {
	allCommands = append(allCommands, commands...)
}

//Commands provides all of the defined commands to the front end
func Commands() []cli.Command {
	return allCommands
}

//ConfigFlag specifies an alternate config file to be used
var ConfigFlag = cli.StringFlag{
	Name:  "config, c",
	Usage: "specify a config file to be used",
	Value: "",
}

//humanFlag selects tablewriter output over delimited output
var humanFlag = cli.BoolFlag{
	Name:  "human-readable, H",
	Usage: "print a formatted table instead of csv",
}

//delimFlag sets the delimiter for non-human output
var delimFlag = cli.StringFlag{
	Name:  "delimiter, D",
	Usage: "change the delimiter of the output",
	Value: ",",
}

//limitFlag bounds how many connection rows are shown
var limitFlag = cli.IntFlag{
	Name:  "limit, l",
	Usage: "limit the number of rows printed, 0 prints everything",
	Value: 0,
}

func getConfigFilePath(c *cli.Context) string {
	return c.String("config")
}

//newMonitor builds the full monitoring pipeline from loaded resources
func newMonitor(res *resources.Resources) *monitor.Monitor {
	smp := sampler.NewSampler(
		sampler.SystemEnumerator{},
		sampler.SystemProcessNamer{},
		res.Config.R.Filtering.InternalIPBlocks,
		res.Log,
	)

	client := geo.NewClient(
		res.Config.R.Geo.APIFormatString,
		res.Config.R.Geo.LookupTimeout,
	)
	cache := geo.NewCache(res.Config, client.Lookup, res.Log)

	return monitor.NewMonitor(
		res.Config.R.Monitor.UpdateInterval,
		res.Log,
		smp,
		cache,
		threat.NewClassifier(res.Config),
		stats.NewAggregator(res.Config.R.Monitor.HistoryLength),
	)
}
