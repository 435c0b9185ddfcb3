package config

import (
	"fmt"
	"runtime"

	"github.com/sirupsen/logrus"
)

const clientName = "evmrpc"

// Build information, injected via `-ldflags "-X"` at build time.
var (
	Version   string
	GitCommit string
	BuildDate string
)

// ClientVersion returns the client version reported by `web3_clientVersion`, e.g.
// `evmrpc/v1.0.0-1a2b3c4d/linux-amd64/go1.22.5`.
func ClientVersion() string {
	version := Version
	if len(version) == 0 {
		version = "unknown"
	}

	if len(GitCommit) >= 8 {
		version = fmt.Sprintf("%v-%v", version, GitCommit[:8])
	}

	return fmt.Sprintf("%v/%v/%v-%v/%v", clientName, version, runtime.GOOS, runtime.GOARCH, runtime.Version())
}

func DumpVersionInfo() {
	strFormat := "%-12v%v\n"

	logrus.Infof(strFormat, "Version:", Version)
	logrus.Infof(strFormat, "Git Commit:", GitCommit)
	logrus.Infof(strFormat, "Build OS:", runtime.GOOS)
	logrus.Infof(strFormat, "Build Arch:", runtime.GOARCH)
	logrus.Infof(strFormat, "Build Date:", BuildDate)
	logrus.Infof(strFormat, "Go Version:", runtime.Version())
}
