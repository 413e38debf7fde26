package threat

import (
	"testing"

	"github.com/cybernilsen/cyberwatch/config"
	"github.com/cybernilsen/cyberwatch/pkg/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClassifier(t *testing.T) *Classifier {
	conf, err := config.LoadTestingConfig()
	require.Nil(t, err)
	return NewClassifier(conf)
}

func established(remotePort uint16, process string) data.ConnectionRecord {
	return data.ConnectionRecord{
		LocalAddress:  "192.168.1.5",
		LocalPort:     55000,
		RemoteAddress: "104.16.0.1",
		RemotePort:    remotePort,
		Protocol:      data.ProtocolTCP,
		State:         data.StateEstablished,
		PID:           1000,
		ProcessName:   process,
	}
}

func TestClassifyCleanConnection(t *testing.T) {
	c := testClassifier(t)
	assessment := c.Classify(established(443, "firefox"), &data.GeoInfo{CountryCode: "US"})
	assert.Equal(t, data.ThreatNone, assessment.Level)
	assert.Empty(t, assessment.Reasons)
}

func TestClassifyMaliciousPort(t *testing.T) {
	c := testClassifier(t)
	// testing config marks 4444 as malicious
	assessment := c.Classify(established(4444, "firefox"), &data.GeoInfo{CountryCode: "US"})
	assert.Equal(t, data.ThreatHigh, assessment.Level)
	assert.Equal(t, []string{ReasonMaliciousPort}, assessment.Reasons)
}

func TestClassifySuspiciousPort(t *testing.T) {
	c := testClassifier(t)
	assessment := c.Classify(established(6667, "firefox"), &data.GeoInfo{CountryCode: "US"})
	assert.Equal(t, data.ThreatLow, assessment.Level)
	assert.Equal(t, []string{ReasonSuspiciousPort}, assessment.Reasons)
}

func TestClassifyLocalPortCounts(t *testing.T) {
	c := testClassifier(t)
	record := established(443, "sshd")
	record.LocalPort = 23
	assessment := c.Classify(record, nil)
	assert.Equal(t, data.ThreatLow, assessment.Level)
	assert.Contains(t, assessment.Reasons, ReasonSuspiciousPort)
}

func TestClassifyHighRiskCountry(t *testing.T) {
	c := testClassifier(t)
	assessment := c.Classify(established(443, "firefox"), &data.GeoInfo{CountryCode: "kp"})
	assert.Equal(t, data.ThreatMedium, assessment.Level)
	assert.Equal(t, []string{ReasonHighRiskCountry}, assessment.Reasons)

	// negative geo never triggers the country rule
	assessment = c.Classify(established(443, "firefox"), &data.GeoInfo{CountryCode: "KP", Negative: true})
	assert.Equal(t, data.ThreatNone, assessment.Level)
}

func TestClassifySuspiciousProcess(t *testing.T) {
	c := testClassifier(t)

	assessment := c.Classify(established(443, "NCAT"), &data.GeoInfo{CountryCode: "US"})
	assert.Equal(t, data.ThreatMedium, assessment.Level)
	assert.Equal(t, []string{ReasonSuspiciousProcess}, assessment.Reasons)

	assessment = c.Classify(established(443, "ncat.exe"), nil)
	assert.Equal(t, data.ThreatMedium, assessment.Level)

	// pattern matching must not catch unrelated names
	assessment = c.Classify(established(443, "rsync"), nil)
	assert.Equal(t, data.ThreatNone, assessment.Level)
}

func TestClassifyUnresolvedProcess(t *testing.T) {
	c := testClassifier(t)

	record := established(443, data.UnknownProcessName)
	assessment := c.Classify(record, &data.GeoInfo{CountryCode: "US"})
	assert.Equal(t, data.ThreatLow, assessment.Level)
	assert.Equal(t, []string{ReasonUnresolvedProcess}, assessment.Reasons)

	// local remotes are expected to be unattributable sometimes
	record.IsLocal = true
	assessment = c.Classify(record, nil)
	assert.Equal(t, data.ThreatNone, assessment.Level)

	// only live connections qualify
	record.IsLocal = false
	record.State = data.StateTimeWait
	assessment = c.Classify(record, nil)
	assert.Equal(t, data.ThreatNone, assessment.Level)
}

func TestClassifyReasonsAccumulate(t *testing.T) {
	c := testClassifier(t)

	record := established(4444, data.UnknownProcessName)
	assessment := c.Classify(record, &data.GeoInfo{CountryCode: "KP"})

	assert.Equal(t, data.ThreatHigh, assessment.Level)
	assert.Equal(t, []string{
		ReasonMaliciousPort,
		ReasonHighRiskCountry,
		ReasonUnresolvedProcess,
	}, assessment.Reasons)
}

func TestClassifyIsTotal(t *testing.T) {
	c := testClassifier(t)

	records := []data.ConnectionRecord{
		{},
		established(0, ""),
		established(65535, "System"),
		{Protocol: data.ProtocolUnknown, State: data.StateUnknown, ProcessName: data.UnknownProcessName},
	}
	geos := []*data.GeoInfo{
		nil,
		{},
		{Negative: true},
		{CountryCode: "LOCAL"},
		{CountryCode: "KP"},
	}

	for _, record := range records {
		for _, geoInfo := range geos {
			assessment := c.Classify(record, geoInfo)
			assert.True(t, assessment.Level >= data.ThreatNone)
			assert.True(t, assessment.Level <= data.ThreatHigh)
		}
	}
}
