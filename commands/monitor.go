package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cybernilsen/cyberwatch/resources"
	"github.com/urfave/cli"
)

func init() {
	command := cli.Command{
		Name:  "monitor",
		Usage: "Continuously watch connections, printing a refreshed table every interval",
		Flags: []cli.Flag{
			ConfigFlag,
			limitFlag,
		},
		Action: runMonitor,
	}

	bootstrapCommands(command)
}

func runMonitor(c *cli.Context) error {
	res := resources.InitResources(getConfigFilePath(c))

	mon := newMonitor(res)
	id, events := mon.Subscribe()
	defer mon.Unsubscribe(id)

	mon.Start()
	res.Log.Info("Monitoring started")

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	limit := c.Int("limit")
	for {
		select {
		case event := <-events:
			if event.Err != nil {
				fmt.Fprintf(os.Stderr, "sample failed: %s\n", event.Err.Error())
				continue
			}
			// clear the terminal between refreshes
			fmt.Print("\033[2J\033[H")
			showSnapshotHuman(event.Snapshot, limitRecords(event.Snapshot.Records, limit))
			fmt.Println("Press Ctrl-C to stop.")
		case <-interrupt:
			mon.Stop()
			res.Log.Info("Monitoring stopped")
			return nil
		}
	}
}
