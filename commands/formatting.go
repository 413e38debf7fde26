package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cybernilsen/cyberwatch/pkg/data"
	"github.com/cybernilsen/cyberwatch/pkg/geo"
)

var connectionHeader = []string{
	"Time", "Process", "PID", "Proto", "Local Address", "Remote Address",
	"State", "Country", "City", "ISP", "Threat",
}

//connectionRow flattens one enriched record into printable columns
func connectionRow(timestamp string, view data.RecordView) []string {
	country, city, isp := "Unknown", "Unknown", "Unknown ISP"
	if view.Geo != nil && !view.Geo.Negative {
		if view.Geo.CountryCode == geo.LocalCountryCode {
			country, city, isp = "Local", "Local", "Local Network"
		} else {
			country = fmt.Sprintf("%s %s", countryFlag(view.Geo.CountryCode), view.Geo.CountryName)
			city = view.Geo.City
			isp = view.Geo.ISP
		}
	}

	threatCol := view.Threat.Level.String()
	if len(view.Threat.Reasons) > 0 {
		threatCol += " (" + strings.Join(view.Threat.Reasons, ", ") + ")"
	}

	return []string{
		timestamp,
		view.Record.ProcessName,
		strconv.Itoa(int(view.Record.PID)),
		view.Record.Protocol.String(),
		formatAddress(view.Record.LocalAddress, view.Record.LocalPort),
		formatAddress(view.Record.RemoteAddress, view.Record.RemotePort),
		string(view.Record.State),
		country,
		city,
		isp,
		threatCol,
	}
}

func formatAddress(address string, port uint16) string {
	if address == "" {
		return ""
	}
	if strings.Contains(address, ":") {
		// IPv6 literals need brackets
		return fmt.Sprintf("[%s]:%d", address, port)
	}
	return fmt.Sprintf("%s:%d", address, port)
}

//countryFlag converts an ISO country code to its flag emoji
func countryFlag(countryCode string) string {
	if len(countryCode) != 2 {
		return "🌍"
	}

	var flag strings.Builder
	for _, char := range strings.ToUpper(countryCode) {
		if char < 'A' || char > 'Z' {
			return "🌍"
		}
		flag.WriteRune('🇦' + (char - 'A'))
	}
	return flag.String()
}

//statsLine renders the per-snapshot counters in a single line
func statsLine(view data.StatsView) string {
	return fmt.Sprintf(
		"%d connections | %d tcp | %d udp | %d established | %d unique remote IPs | %d countries | threats: %d high, %d medium, %d low",
		view.TotalConnections,
		view.TCPCount,
		view.UDPCount,
		view.EstablishedCount,
		view.UniqueRemoteIPs,
		len(view.CountryHistogram),
		view.ThreatHistogram[data.ThreatHigh],
		view.ThreatHistogram[data.ThreatMedium],
		view.ThreatHistogram[data.ThreatLow],
	)
}
