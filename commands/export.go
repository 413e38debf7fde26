package commands

import (
	"fmt"
	"io/ioutil"
	"time"

	"github.com/cybernilsen/cyberwatch/pkg/data"
	"github.com/cybernilsen/cyberwatch/resources"
	"github.com/cybernilsen/cyberwatch/util"
	jsoniter "github.com/json-iterator/go"
	"github.com/urfave/cli"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func init() {
	command := cli.Command{
		Name:  "export",
		Usage: "Take one sample of the current connections and write it to a JSON file",
		Flags: []cli.Flag{
			ConfigFlag,
			cli.StringFlag{
				Name:  "file, f",
				Usage: "write output to `FILE` instead of a timestamped file name",
				Value: "",
			},
		},
		Action: exportSnapshot,
	}

	bootstrapCommands(command)
}

//exportedRecord is the JSON shape written for each connection
type exportedRecord struct {
	Timestamp     string `json:"timestamp"`
	Process       string `json:"process"`
	PID           int32  `json:"pid"`
	Protocol      string `json:"protocol"`
	LocalAddress  string `json:"local_address"`
	RemoteAddress string `json:"remote_address"`
	Status        string `json:"status"`
	Country       string `json:"country"`
	City          string `json:"city"`
	ISP           string `json:"isp"`
	ThreatLevel   string `json:"threat_level"`
	ThreatReasons []string `json:"threat_reasons,omitempty"`
}

func exportSnapshot(c *cli.Context) error {
	res := resources.InitResources(getConfigFilePath(c))

	mon := newMonitor(res)
	snapshot, err := mon.RefreshOnce()
	if err != nil {
		res.Log.Error(err)
		return cli.NewExitError(err, -1)
	}

	fileName := c.String("file")
	if fileName == "" {
		fileName = fmt.Sprintf("connections_%s.json", time.Now().Format(util.ExportTimeFormat))
	}

	exported := make([]exportedRecord, 0, len(snapshot.Records))
	timestamp := snapshot.Timestamp.Format(time.RFC3339)
	for _, view := range snapshot.Records {
		exported = append(exported, exportRecord(timestamp, view))
	}

	contents, err := json.MarshalIndent(exported, "", "  ")
	if err != nil {
		return cli.NewExitError(err, -1)
	}

	if err := ioutil.WriteFile(fileName, contents, 0644); err != nil {
		return cli.NewExitError(err, -1)
	}

	fmt.Printf("Exported %d connections to %s\n", len(exported), fileName)
	return nil
}

func exportRecord(timestamp string, view data.RecordView) exportedRecord {
	record := exportedRecord{
		Timestamp:     timestamp,
		Process:       view.Record.ProcessName,
		PID:           view.Record.PID,
		Protocol:      view.Record.Protocol.String(),
		LocalAddress:  formatAddress(view.Record.LocalAddress, view.Record.LocalPort),
		RemoteAddress: formatAddress(view.Record.RemoteAddress, view.Record.RemotePort),
		Status:        string(view.Record.State),
		Country:       "Unknown",
		City:          "Unknown",
		ISP:           "Unknown",
		ThreatLevel:   view.Threat.Level.String(),
		ThreatReasons: view.Threat.Reasons,
	}

	if view.Geo != nil && !view.Geo.Negative {
		record.Country = view.Geo.CountryName
		record.City = view.Geo.City
		record.ISP = view.Geo.ISP
	}
	return record
}
