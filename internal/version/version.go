// Package version provides build-time version information.
//
// Variables are set at build time via ldflags:
//
//	go build -ldflags "-X github.com/rl1809/nft-marketplace/internal/version.Version=1.0.0 \
//	                   -X github.com/rl1809/nft-marketplace/internal/version.Commit=$(git rev-parse --short HEAD)"
package version

var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func String() string {
	return Version + " (" + Commit + ") built " + BuildTime
}
