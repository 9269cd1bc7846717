package version

var (
	// SnowbridgeVerMajor is the major version of Snowbridge
	SnowbridgeVerMajor = 0
	// SnowbridgeVerMinor is the minor version of Snowbridge
	SnowbridgeVerMinor = 1
	// SnowbridgeVerPatch is the patch version of Snowbridge
	SnowbridgeVerPatch = 0
	// SnowbridgeVerName is an alternative name of the version
	SnowbridgeVerName = "Snowbridge"
	// GitHash is the current git commit hash
	GitHash = "Unknown"
	// GitRef is the current git reference name (branch or tag)
	GitRef = "Unknown"
)
