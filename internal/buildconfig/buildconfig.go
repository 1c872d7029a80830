package buildconfig

// Build-time variables injected via ldflags
var (
	version = "dev"
	commit  = "unknown"
)

// Info identifies the running build.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
}

func Get() Info {
	return Info{Version: version, Commit: commit}
}
