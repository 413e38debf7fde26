package config

const testConfig = `
Monitor:
    UpdateIntervalSeconds: 1
    HistoryLength: 5
Geolocation:
    APIFormatString: "https://ipapi.co/%s/json/"
    PositiveTTLHours: 24
    NegativeTTLSeconds: 1
    RateLimitPerSecond: 100
    LookupTimeoutSeconds: 1
Threat:
    SuspiciousPorts: [23, 6667]
    MaliciousPorts: [4444, 31337]
    HighRiskCountries: ["KP"]
    SuspiciousProcesses: ["ncat", "evilproc"]
Filtering:
    InternalSubnets: ["10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16", "fc00::/7"]
LogConfig:
    LogLevel: 3
    LogToFile: false
`

//LoadTestingConfig loads the hard coded testing config
func LoadTestingConfig() (*Config, error) {
	config := &Config{}

	// Deserialize the yaml fixture into the static config
	if err := parseStaticConfig([]byte(testConfig), &config.S); err != nil {
		return nil, err
	}

	config.S.Version = "v0.0.0+testing"

	// Use the static config to initialize the running config
	if err := initRunningConfig(&config.S, &config.R); err != nil {
		return nil, err
	}

	return config, nil
}
