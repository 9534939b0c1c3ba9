package platform

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// Platform identifies a snapshot build target.
type Platform int

const (
	// Unknown is the zero value and never valid for a download.
	Unknown Platform = iota
	// Mac selects the macOS snapshots.
	Mac
	// Linux selects the Linux snapshots.
	Linux
)

// ErrUnsupported is returned when no snapshot target matches the input.
var ErrUnsupported = errors.New("platform not supported")

// descriptor holds the fixed per-platform constants.
type descriptor struct {
	// name is the lowercase configuration value.
	name string
	// segment is the directory under the remote root.
	segment string
	// archive is the fixed archive filename for the platform.
	archive string
}

//nolint:gochecknoglobals // Closed lookup table for the enum.
var descriptors = map[Platform]descriptor{
	Mac:   {name: "mac", segment: "Mac", archive: "chrome-mac.zip"},
	Linux: {name: "linux", segment: "Linux", archive: "chrome-linux.zip"},
}

// Detect resolves the platform of the running build.
func Detect() (Platform, error) {
	return fromGOOS(runtime.GOOS)
}

// Parse converts a configuration value into a Platform.
// Both "mac" and "darwin" select Mac.
func Parse(s string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mac", "darwin":
		return Mac, nil
	case "linux":
		return Linux, nil
	default:
		return Unknown, fmt.Errorf("%q: %w", s, ErrUnsupported)
	}
}

// All returns every supported platform in a stable order.
func All() []Platform {
	return []Platform{Mac, Linux}
}

// String returns the lowercase configuration name.
func (p Platform) String() string {
	if d, ok := descriptors[p]; ok {
		return d.name
	}

	return "unknown"
}

// Segment returns the remote path segment, e.g. "Linux".
func (p Platform) Segment() string {
	return descriptors[p].segment
}

// ArchiveFilename returns the archive name published for the platform.
func (p Platform) ArchiveFilename() string {
	return descriptors[p].archive
}

// Valid reports whether p is one of the supported platforms.
func (p Platform) Valid() bool {
	_, ok := descriptors[p]
	return ok
}

// MarshalText implements encoding.TextMarshaler.
func (p Platform) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("marshal platform %d: %w", int(p), ErrUnsupported)
	}

	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Platform) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}

	*p = parsed

	return nil
}

func fromGOOS(goos string) (Platform, error) {
	switch goos {
	case "darwin":
		return Mac, nil
	case "linux":
		return Linux, nil
	default:
		return Unknown, fmt.Errorf("%s: %w", goos, ErrUnsupported)
	}
}
