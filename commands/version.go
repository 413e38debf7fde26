package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/blang/semver"
	"github.com/cybernilsen/cyberwatch/resources"
	"github.com/google/go-github/github"
	"github.com/urfave/cli"
)

//informFmtStr is used for informing the user of a new version
var informFmtStr = "\nThere's a new %s version of cyberwatch %s available at:\nhttps://github.com/cybernilsen/cyberwatch/releases\n"

var versionClasses = []string{"Major", "Minor", "Patch"}

func init() {
	command := cli.Command{
		Name:  "version",
		Usage: "Show cyberwatch version",
		Flags: []cli.Flag{
			ConfigFlag,
		},
		Action: showVersion,
	}

	bootstrapCommands(command)
}

func showVersion(c *cli.Context) error {
	res := resources.InitResources(getConfigFilePath(c))
	fmt.Println(res.Config.S.Version)

	// the update check is an opt-out courtesy, never an error
	if res.Config.S.UserConfig.UpdateCheckFrequency > 0 {
		fmt.Print(updateCheck(res))
	}
	return nil
}

//updateCheck compares the running version against the newest release tag
//and returns a notice string if an upgrade is available
func updateCheck(res *resources.Resources) string {
	localVersion := res.Config.R.Version
	if len(localVersion.Build) > 0 || localVersion.Equals(semver.Version{}) {
		// dev builds have nothing meaningful to compare against
		return ""
	}

	remoteVersion, err := getRemoteVersion()
	if err != nil {
		return ""
	}

	if remoteVersion.GT(localVersion) {
		return fmt.Sprintf(informFmtStr,
			versionClasses[versionDiffIndex(remoteVersion, localVersion)],
			remoteVersion)
	}
	return ""
}

// Returns the first index where v1 is greater than v2
func versionDiffIndex(v1 semver.Version, v2 semver.Version) int {
	if v1.Major > v2.Major {
		return 0
	}
	if v1.Minor > v2.Minor {
		return 1
	}
	return 2
}

func getRemoteVersion() (semver.Version, error) {
	client := github.NewClient(nil)
	refs, _, err := client.Git.GetRefs(context.Background(), "cybernilsen", "cyberwatch", "refs/tags/v")
	if err != nil || len(refs) == 0 {
		return semver.Version{}, err
	}

	tag := strings.TrimPrefix(*refs[len(refs)-1].Ref, "refs/tags/")
	return semver.ParseTolerant(tag)
}
