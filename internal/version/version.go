package version

// Set at build time via -ldflags.
var (
	AppName = "parakeet"
	Version = "dev"
)
