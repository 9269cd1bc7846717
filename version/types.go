package version

import (
	"fmt"
	"runtime"
)

// SnowbridgeVersion is the semver of Snowbridge
type SnowbridgeVersion struct {
	major int
	minor int
	patch int
	name  string
}

// NewSnowbridgeVersion creates a SnowbridgeVersion object
func NewSnowbridgeVersion() *SnowbridgeVersion {
	return &SnowbridgeVersion{
		major: SnowbridgeVerMajor,
		minor: SnowbridgeVerMinor,
		patch: SnowbridgeVerPatch,
		name:  SnowbridgeVerName,
	}
}

// Name returns the alternave name of SnowbridgeVersion
func (v *SnowbridgeVersion) Name() string {
	return v.name
}

// SemVer returns SnowbridgeVersion in semver format
func (v *SnowbridgeVersion) SemVer() string {
	return fmt.Sprintf("%d.%d.%d", v.major, v.minor, v.patch)
}

// String converts SnowbridgeVersion to a string
func (v *SnowbridgeVersion) String() string {
	return fmt.Sprintf("%s %s\n%s", v.SemVer(), v.name, NewSnowbridgeBuildInfo())
}

// SnowbridgeBuild is the info of building environment
type SnowbridgeBuild struct {
	GitHash   string `json:"gitHash"`
	GitRef    string `json:"gitRef"`
	GoVersion string `json:"goVersion"`
}

// NewSnowbridgeBuildInfo creates a SnowbridgeBuild object
func NewSnowbridgeBuildInfo() *SnowbridgeBuild {
	return &SnowbridgeBuild{
		GitHash:   GitHash,
		GitRef:    GitRef,
		GoVersion: runtime.Version(),
	}
}

// String converts SnowbridgeBuild to a string
func (v *SnowbridgeBuild) String() string {
	return fmt.Sprintf("Go Version: %s\nGit Ref: %s\nGitHash: %s", v.GoVersion, v.GitRef, v.GitHash)
}
