package commands

import (
	"strings"
	"testing"

	"github.com/cybernilsen/cyberwatch/pkg/data"
	"github.com/stretchr/testify/assert"
)

func TestFormatAddress(t *testing.T) {
	assert.Equal(t, "192.168.1.5:443", formatAddress("192.168.1.5", 443))
	assert.Equal(t, "[fe80::1]:8080", formatAddress("fe80::1", 8080))
	assert.Equal(t, "", formatAddress("", 0))
}

func TestCountryFlag(t *testing.T) {
	assert.Equal(t, "🇳🇴", countryFlag("NO"))
	assert.Equal(t, "🇺🇸", countryFlag("us"))
	assert.Equal(t, "🌍", countryFlag(""))
	assert.Equal(t, "🌍", countryFlag("USA"))
	assert.Equal(t, "🌍", countryFlag("1!"))
}

func TestConnectionRow(t *testing.T) {
	view := data.RecordView{
		Record: data.ConnectionRecord{
			LocalAddress:  "192.168.1.5",
			LocalPort:     55000,
			RemoteAddress: "104.16.0.1",
			RemotePort:    4444,
			Protocol:      data.ProtocolTCP,
			State:         data.StateEstablished,
			PID:           321,
			ProcessName:   "mystery",
		},
		Geo: &data.GeoInfo{
			CountryCode: "DE",
			CountryName: "Germany",
			City:        "Berlin",
			ISP:         "Example AG",
		},
		Threat: data.Assessment{
			Level:   data.ThreatHigh,
			Reasons: []string{"malicious-port"},
		},
	}

	row := connectionRow("12:00:00", view)
	assert.Len(t, row, len(connectionHeader))
	assert.Equal(t, "mystery", row[1])
	assert.Equal(t, "321", row[2])
	assert.Equal(t, "TCP", row[3])
	assert.Equal(t, "104.16.0.1:4444", row[5])
	assert.Equal(t, "ESTABLISHED", row[6])
	assert.True(t, strings.Contains(row[7], "Germany"))
	assert.Equal(t, "HIGH (malicious-port)", row[10])
}

func TestConnectionRowNegativeGeo(t *testing.T) {
	view := data.RecordView{
		Record: data.ConnectionRecord{
			RemoteAddress: "104.16.0.1",
			RemotePort:    443,
			Protocol:      data.ProtocolTCP,
			State:         data.StateEstablished,
		},
		Geo: &data.GeoInfo{Negative: true},
	}

	row := connectionRow("12:00:00", view)
	assert.Equal(t, "Unknown", row[7])
	assert.Equal(t, "Unknown ISP", row[9])
}

func TestStatsLine(t *testing.T) {
	view := data.StatsView{
		TotalConnections: 3,
		TCPCount:         2,
		UDPCount:         1,
		EstablishedCount: 2,
		UniqueRemoteIPs:  2,
		CountryHistogram: map[string]int{"US": 1, "DE": 1},
		ThreatHistogram:  map[data.ThreatLevel]int{data.ThreatHigh: 1},
	}

	line := statsLine(view)
	assert.True(t, strings.Contains(line, "3 connections"))
	assert.True(t, strings.Contains(line, "2 unique remote IPs"))
	assert.True(t, strings.Contains(line, "2 countries"))
	assert.True(t, strings.Contains(line, "1 high"))
}
