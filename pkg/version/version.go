package version

// Version is set during build via ldflags:
//
//	go build -ldflags "-X restpki-batch/pkg/version.Version=1.2.0" ./cmd/service
var Version = "dev"
