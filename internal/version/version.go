package version

// version is injected at build time via -ldflags.
var version string

// Value returns the build version, defaulting when no tag was injected.
func Value() string {
	if version == "" {
		return "v0.0.0"
	}
	return version
}
