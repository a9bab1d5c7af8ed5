package strex

const (
	// Name is the tool name.
	Name = "strex"

	// Description is a short description of the tool.
	Description = "String extractor and AI translator for Kotlin Multiplatform / Compose Multiplatform apps"

	// Repository is the source code repository URL.
	Repository = "https://github.com/FunnySaltyFish/android-kmp-cmp-string-extractor"
)

// Build-time information, set via ldflags:
//
//	go build -ldflags "-X .../android-kmp-cmp-string-extractor.Version=1.0.0"
var (
	// Version is the semantic version.
	Version = "0.2.0"

	// GitCommit is the git commit hash.
	GitCommit = "unknown"

	// BuildDate is the build timestamp.
	BuildDate = "unknown"
)

// FullVersion returns the version string with optional build info.
func FullVersion() string {
	v := Version
	if GitCommit != "unknown" && GitCommit != "" {
		short := GitCommit
		if len(short) > 7 {
			short = short[:7]
		}
		v += "+" + short
	}
	return v
}
