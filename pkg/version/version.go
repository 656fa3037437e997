package version

// Version holds the build identifier, injected via -ldflags. Default "dev".
var Version = "dev"
