package version

// Version is the server version, set at build time with
// -ldflags "-X github.com/cloudposse/specls/pkg/version.Version=<version>".
var Version = "0.0.0-dev"
