package resources

import (
	"io/ioutil"
	"testing"

	"github.com/cybernilsen/cyberwatch/config"
	log "github.com/sirupsen/logrus"
)

//InitTestResources creates a Resources object with the testing
//configuration and a silent logger
func InitTestResources(t *testing.T) *Resources {
	conf, err := config.LoadTestingConfig()
	if err != nil {
		t.Fatalf("could not load testing config: %v", err)
	}

	logger := log.New()
	logger.Out = ioutil.Discard

	return &Resources{
		Config: conf,
		Log:    logger,
	}
}
