package config

import (
	"fmt"
	"io/ioutil"
	"os"
	"reflect"

	"github.com/creasty/defaults"
	yaml "gopkg.in/yaml.v2"
)

type (
	//StaticCfg is the container for other static config sections
	StaticCfg struct {
		Monitor    MonitorStaticCfg   `yaml:"Monitor"`
		Geo        GeoStaticCfg       `yaml:"Geolocation"`
		Threat     ThreatStaticCfg    `yaml:"Threat"`
		Filtering  FilteringStaticCfg `yaml:"Filtering"`
		Log        LogStaticCfg       `yaml:"LogConfig"`
		UserConfig UserCfgStaticCfg   `yaml:"UserConfig"`
		Version    string             `yaml:"-"`
	}

	//MonitorStaticCfg controls the polling loop
	MonitorStaticCfg struct {
		UpdateIntervalSeconds int `yaml:"UpdateIntervalSeconds" default:"2"`
		HistoryLength         int `yaml:"HistoryLength" default:"100"`
	}

	//GeoStaticCfg contains the means for contacting the geolocation API
	GeoStaticCfg struct {
		APIFormatString      string `yaml:"APIFormatString" default:"https://ipapi.co/%s/json/"`
		PositiveTTLHours     int    `yaml:"PositiveTTLHours" default:"24"`
		NegativeTTLSeconds   int    `yaml:"NegativeTTLSeconds" default:"300"`
		RateLimitPerSecond   int    `yaml:"RateLimitPerSecond" default:"5"`
		LookupTimeoutSeconds int    `yaml:"LookupTimeoutSeconds" default:"3"`
	}

	//ThreatStaticCfg holds the rule tables used to score connections.
	//These are policy data, not code; operators are expected to tune them.
	ThreatStaticCfg struct {
		SuspiciousPorts     []int    `yaml:"SuspiciousPorts" default:"[23,1337,3389,5900,6667,6697,9001,9030]"`
		MaliciousPorts      []int    `yaml:"MaliciousPorts" default:"[4444,5555,6666,12345,31337,54321]"`
		HighRiskCountries   []string `yaml:"HighRiskCountries" default:"[]"`
		SuspiciousProcesses []string `yaml:"SuspiciousProcesses" default:"[\"nc\",\"ncat\",\"netcat\",\"socat\",\"telnet\"]"`
	}

	//FilteringStaticCfg controls which remote addresses count as local
	FilteringStaticCfg struct {
		InternalSubnets []string `yaml:"InternalSubnets" default:"[\"10.0.0.0/8\",\"172.16.0.0/12\",\"192.168.0.0/16\",\"fc00::/7\"]"`
	}

	//LogStaticCfg contains the configuration for logging
	LogStaticCfg struct {
		LogLevel  int    `yaml:"LogLevel" default:"2"`
		LogPath   string `yaml:"LogPath" default:"$HOME/.cyberwatch/logs"`
		LogToFile bool   `yaml:"LogToFile" default:"false"`
	}

	//UserCfgStaticCfg contains
	UserCfgStaticCfg struct {
		UpdateCheckFrequency int `yaml:"UpdateCheckFrequency" default:"14"`
	}
)

//loadStaticConfig attempts to parse a config file
func loadStaticConfig(cfgPath string) (*StaticCfg, error) {
	var config = new(StaticCfg)

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		// a missing config file is not an error, the defaults stand in
		if err := parseStaticConfig(nil, config); err != nil {
			return config, err
		}
		return config, nil
	}

	cfgFile, err := ioutil.ReadFile(cfgPath)
	if err != nil {
		return config, err
	}

	if err := parseStaticConfig(cfgFile, config); err != nil {
		return config, fmt.Errorf("failed to read config %s: %v", cfgPath, err)
	}

	return config, nil
}

//parseStaticConfig loads the yaml into the provided config struct,
//initializing it with default values beforehand
func parseStaticConfig(data []byte, config *StaticCfg) error {
	// Initialize the static config to the default values
	if err := defaults.Set(config); err != nil {
		return err
	}

	if data != nil {
		if err := yaml.Unmarshal(data, config); err != nil {
			return err
		}
	}

	// expand env variables, config is a pointer
	// so we have to call elem on the reflect value
	expandConfig(reflect.ValueOf(config).Elem())

	// grab the version constants set by the build process
	config.Version = Version

	return nil
}
