package version

// Version contains the version number of the backend.
var Version = "1.0.0"

// MinimumLXDVersion is the oldest daemon able to run virtual machines the way the backend expects.
var MinimumLXDVersion = "4.0"
