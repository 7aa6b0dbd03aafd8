package common

// Version is the release version reported by the CLI and the service.
const Version = "0.1.0"
