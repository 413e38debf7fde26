package config

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/blang/semver"
	"github.com/cybernilsen/cyberwatch/util"
)

type (
	//RunningCfg holds configuration options that are parsed at run time
	RunningCfg struct {
		Monitor   MonitorRunningCfg
		Geo       GeoRunningCfg
		Threat    ThreatRunningCfg
		Filtering FilteringRunningCfg
		Version   semver.Version
	}

	//MonitorRunningCfg holds parsed polling loop options
	MonitorRunningCfg struct {
		UpdateInterval time.Duration
		HistoryLength  int
	}

	//GeoRunningCfg holds parsed geolocation cache options
	GeoRunningCfg struct {
		APIFormatString    string
		PositiveTTL        time.Duration
		NegativeTTL        time.Duration
		RateLimitPerSecond int
		LookupTimeout      time.Duration
	}

	//ThreatRunningCfg holds the rule tables in their evaluated forms
	ThreatRunningCfg struct {
		SuspiciousPorts     map[uint16]bool
		MaliciousPorts      map[uint16]bool
		HighRiskCountries   map[string]bool
		SuspiciousProcesses []string
	}

	//FilteringRunningCfg holds the parsed internal address ranges
	FilteringRunningCfg struct {
		InternalIPBlocks []*net.IPNet
	}
)

//initRunningConfig uses the static config to build the running config,
//rejecting invalid option values before the monitor can be constructed
func initRunningConfig(static *StaticCfg, running *RunningCfg) error {
	if static.Monitor.UpdateIntervalSeconds <= 0 {
		return fmt.Errorf("config: Monitor.UpdateIntervalSeconds must be positive, got %d", static.Monitor.UpdateIntervalSeconds)
	}
	if static.Monitor.HistoryLength <= 0 {
		return fmt.Errorf("config: Monitor.HistoryLength must be positive, got %d", static.Monitor.HistoryLength)
	}
	running.Monitor.UpdateInterval = time.Duration(static.Monitor.UpdateIntervalSeconds) * time.Second
	running.Monitor.HistoryLength = static.Monitor.HistoryLength

	if static.Geo.PositiveTTLHours <= 0 || static.Geo.NegativeTTLSeconds <= 0 {
		return fmt.Errorf("config: geolocation cache TTLs must be positive")
	}
	if static.Geo.RateLimitPerSecond <= 0 {
		return fmt.Errorf("config: Geolocation.RateLimitPerSecond must be positive, got %d", static.Geo.RateLimitPerSecond)
	}
	if static.Geo.LookupTimeoutSeconds <= 0 {
		return fmt.Errorf("config: Geolocation.LookupTimeoutSeconds must be positive, got %d", static.Geo.LookupTimeoutSeconds)
	}
	if !strings.Contains(static.Geo.APIFormatString, "%s") {
		return fmt.Errorf("config: Geolocation.APIFormatString must contain a %%s placeholder for the address")
	}
	running.Geo.APIFormatString = static.Geo.APIFormatString
	running.Geo.PositiveTTL = time.Duration(static.Geo.PositiveTTLHours) * time.Hour
	running.Geo.NegativeTTL = time.Duration(static.Geo.NegativeTTLSeconds) * time.Second
	running.Geo.RateLimitPerSecond = static.Geo.RateLimitPerSecond
	running.Geo.LookupTimeout = time.Duration(static.Geo.LookupTimeoutSeconds) * time.Second

	var err error
	running.Threat.SuspiciousPorts, err = parsePortSet(static.Threat.SuspiciousPorts)
	if err != nil {
		return fmt.Errorf("config: Threat.SuspiciousPorts: %v", err)
	}
	running.Threat.MaliciousPorts, err = parsePortSet(static.Threat.MaliciousPorts)
	if err != nil {
		return fmt.Errorf("config: Threat.MaliciousPorts: %v", err)
	}

	running.Threat.HighRiskCountries = make(map[string]bool, len(static.Threat.HighRiskCountries))
	for _, country := range static.Threat.HighRiskCountries {
		running.Threat.HighRiskCountries[strings.ToUpper(country)] = true
	}

	// pattern matching is case insensitive, normalize once here
	for _, pattern := range static.Threat.SuspiciousProcesses {
		running.Threat.SuspiciousProcesses = append(
			running.Threat.SuspiciousProcesses, strings.ToLower(pattern),
		)
	}

	running.Filtering.InternalIPBlocks, err = util.ParseSubnets(static.Filtering.InternalSubnets)
	if err != nil {
		return fmt.Errorf("config: Filtering.InternalSubnets: %v", err)
	}

	// an unparseable version only disables the update check
	if version, err := semver.ParseTolerant(static.Version); err == nil {
		running.Version = version
	}

	return nil
}

func parsePortSet(ports []int) (map[uint16]bool, error) {
	set := make(map[uint16]bool, len(ports))
	for _, port := range ports {
		if port < 1 || port > 65535 {
			return nil, fmt.Errorf("port %d out of range", port)
		}
		set[uint16(port)] = true
	}
	return set, nil
}
