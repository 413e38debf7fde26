package threat

import (
	"strings"

	"github.com/cybernilsen/cyberwatch/config"
	"github.com/cybernilsen/cyberwatch/pkg/data"
	"github.com/cybernilsen/cyberwatch/pkg/geo"
)

//Reason codes attached to assessments, in rule evaluation order
const (
	ReasonMaliciousPort     = "malicious-port"
	ReasonSuspiciousPort    = "suspicious-port"
	ReasonHighRiskCountry   = "high-risk-country"
	ReasonSuspiciousProcess = "suspicious-process"
	ReasonUnresolvedProcess = "unresolved-process"
)

//Classifier scores connections against the configured rule tables. It is
//pure and total: every (record, geo) pair maps to a defined Assessment.
type Classifier struct {
	suspiciousPorts   map[uint16]bool
	maliciousPorts    map[uint16]bool
	highRiskCountries map[string]bool
	processPatterns   []string
}

//NewClassifier builds a Classifier from the threat section of the config
func NewClassifier(conf *config.Config) *Classifier {
	return &Classifier{
		suspiciousPorts:   conf.R.Threat.SuspiciousPorts,
		maliciousPorts:    conf.R.Threat.MaliciousPorts,
		highRiskCountries: conf.R.Threat.HighRiskCountries,
		processPatterns:   conf.R.Threat.SuspiciousProcesses,
	}
}

//Classify evaluates every rule against the record. Multiple reasons may
//accumulate; the final level is the maximum severity triggered. Rules are
//recomputed every tick, never cached, since the rule tables and process
//context may change between samples.
func (c *Classifier) Classify(record data.ConnectionRecord, geoInfo *data.GeoInfo) data.Assessment {
	assessment := data.Assessment{Level: data.ThreatNone}

	// port rule
	if c.maliciousPorts[record.RemotePort] || c.maliciousPorts[record.LocalPort] {
		raise(&assessment, data.ThreatHigh, ReasonMaliciousPort)
	} else if c.suspiciousPorts[record.RemotePort] || c.suspiciousPorts[record.LocalPort] {
		raise(&assessment, data.ThreatLow, ReasonSuspiciousPort)
	}

	// country rule
	if geoInfo != nil && !geoInfo.Negative &&
		geoInfo.CountryCode != geo.LocalCountryCode &&
		c.highRiskCountries[strings.ToUpper(geoInfo.CountryCode)] {
		raise(&assessment, data.ThreatMedium, ReasonHighRiskCountry)
	}

	// process rule
	if c.matchesProcessPattern(record.ProcessName) {
		raise(&assessment, data.ThreatMedium, ReasonSuspiciousProcess)
	}

	// an established connection to a public address owned by a process we
	// cannot identify deserves a closer look
	if record.ProcessName == data.UnknownProcessName &&
		!record.IsLocal &&
		record.State == data.StateEstablished {
		raise(&assessment, data.ThreatLow, ReasonUnresolvedProcess)
	}

	return assessment
}

func (c *Classifier) matchesProcessPattern(processName string) bool {
	if processName == "" || processName == data.UnknownProcessName ||
		processName == data.SystemProcessName {
		return false
	}

	name := strings.ToLower(processName)
	for _, pattern := range c.processPatterns {
		if name == pattern {
			return true
		}
		// allow "nc" to cover "nc.exe" and "nc-1.10" without also
		// matching unrelated names like "rsync"
		if strings.HasPrefix(name, pattern) {
			switch name[len(pattern)] {
			case '.', '-', '_':
				return true
			}
		}
	}
	return false
}

func raise(assessment *data.Assessment, level data.ThreatLevel, reason string) {
	if level > assessment.Level {
		assessment.Level = level
	}
	assessment.Reasons = append(assessment.Reasons, reason)
}
