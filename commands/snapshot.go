package commands

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cybernilsen/cyberwatch/pkg/data"
	"github.com/cybernilsen/cyberwatch/resources"
	"github.com/cybernilsen/cyberwatch/util"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

func init() {
	command := cli.Command{
		Name:  "snapshot",
		Usage: "Take one sample of the current connections and print it",
		Flags: []cli.Flag{
			ConfigFlag,
			humanFlag,
			delimFlag,
			limitFlag,
		},
		Action: takeSnapshot,
	}

	bootstrapCommands(command)
}

func takeSnapshot(c *cli.Context) error {
	res := resources.InitResources(getConfigFilePath(c))

	mon := newMonitor(res)
	snapshot, err := mon.RefreshOnce()
	if err != nil {
		res.Log.Error(err)
		return cli.NewExitError(err, -1)
	}

	records := limitRecords(snapshot.Records, c.Int("limit"))

	if c.Bool("human-readable") {
		showSnapshotHuman(snapshot, records)
		return nil
	}
	showSnapshotDelim(snapshot, records, c.String("delimiter"))
	return nil
}

func limitRecords(records []data.RecordView, limit int) []data.RecordView {
	if limit <= 0 {
		return records
	}
	return records[:util.Min(limit, len(records))]
}

func showSnapshotHuman(snapshot *data.Snapshot, records []data.RecordView) {
	timestamp := snapshot.Timestamp.Format("15:04:05")

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(connectionHeader)
	for _, view := range records {
		table.Append(connectionRow(timestamp, view))
	}
	table.Render()

	fmt.Println(statsLine(snapshot.Stats))
}

func showSnapshotDelim(snapshot *data.Snapshot, records []data.RecordView, delim string) {
	timestamp := snapshot.Timestamp.Format(time.RFC3339)

	fmt.Println(strings.Join(connectionHeader, delim))
	for _, view := range records {
		fmt.Println(strings.Join(connectionRow(timestamp, view), delim))
	}
}
