package config

import (
	"os"
	"os/user"
	"path"
	"reflect"
)

//Version is filled at compile time with the git version of cyberwatch
var Version = "undefined"

//ExactVersion is filled at compile time with the git version of cyberwatch
var ExactVersion = "undefined"

type (
	//Config holds the configuration for the running system
	Config struct {
		R RunningCfg
		S StaticCfg
	}
)

//LoadConfig retrieves a configuration in order of precedence
func LoadConfig(cfgPath string) (*Config, error) {
	if cfgPath != "" {
		return loadSystemConfig(cfgPath)
	}

	// Get the user's homedir
	user, err := user.Current()
	if err == nil {
		homeConf := path.Join(user.HomeDir, ".cyberwatch", "config.yaml")
		if _, err := os.Stat(homeConf); err == nil {
			return loadSystemConfig(homeConf)
		}
	}

	// If none of the other configs have worked, go for the global config
	return loadSystemConfig("/etc/cyberwatch/config.yaml")
}

//loadSystemConfig attempts to parse a config file
func loadSystemConfig(cfgPath string) (*Config, error) {
	var config = new(Config)

	static, err := loadStaticConfig(cfgPath)
	if err != nil {
		return config, err
	}
	config.S = *static

	if err := initRunningConfig(static, &config.R); err != nil {
		return config, err
	}

	return config, nil
}

//expandConfig expands environment variables in config strings
func expandConfig(reflected reflect.Value) {
	for i := 0; i < reflected.NumField(); i++ {
		f := reflected.Field(i)
		// process sub configs
		if f.Kind() == reflect.Struct {
			expandConfig(f)
		} else if f.Kind() == reflect.String {
			f.SetString(os.ExpandEnv(f.String()))
		} else if f.Kind() == reflect.Slice && f.Type().Elem().Kind() == reflect.String {
			strs := f.Interface().([]string)
			for i, str := range strs {
				strs[i] = os.ExpandEnv(str)
			}
			f.Set(reflect.ValueOf(strs))
		}
	}
}
