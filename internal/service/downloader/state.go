package downloader

// State is a step of a download run.
type State int

// States of a run, in the order they are entered.
const (
	StateStart State = iota
	StateResolving
	StateResolved
	StateResolveFailed
	StateDownloading
	StateDone
	StateDownloadFailed
)

//nolint:gochecknoglobals // Read-only names for State.String.
var stateNames = map[State]string{
	StateStart:          "START",
	StateResolving:      "RESOLVING",
	StateResolved:       "RESOLVED",
	StateResolveFailed:  "RESOLVE_FAILED",
	StateDownloading:    "DOWNLOADING",
	StateDone:           "DONE",
	StateDownloadFailed: "DOWNLOAD_FAILED",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}

	return "UNKNOWN"
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateResolveFailed || s == StateDone || s == StateDownloadFailed
}
