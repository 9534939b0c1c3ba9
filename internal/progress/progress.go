package progress

import (
	"errors"
	"fmt"
	"io"
)

// Styles accepted by New.
const (
	StylePercent = "percent"
	StyleBar     = "bar"
	StyleNone    = "none"
)

// ErrUnknownStyle is returned by New for an unsupported style.
var ErrUnknownStyle = errors.New("unknown progress style")

// Reporter receives progress ticks during one transfer.
type Reporter interface {
	// Tick reports cumulative bytes received and the expected total.
	Tick(downloaded, total int64)
	// Finish ends the rendering after the transfer returns.
	Finish()
}

// New returns the reporter for the given style writing to w.
//
//nolint:ireturn // Factory over the renderer implementations.
func New(style string, w io.Writer) (Reporter, error) {
	switch style {
	case StylePercent, "":
		return NewPercent(w), nil
	case StyleBar:
		return NewBar(w), nil
	case StyleNone:
		return None{}, nil
	default:
		return nil, fmt.Errorf("%q: %w", style, ErrUnknownStyle)
	}
}

// Ratio returns downloaded/total, or false when total is unknown.
func Ratio(downloaded, total int64) (float64, bool) {
	if total <= 0 {
		return 0, false
	}

	return float64(downloaded) / float64(total), true
}

// None discards every tick.
type None struct{}

// Tick does nothing.
func (None) Tick(int64, int64) {}

// Finish does nothing.
func (None) Finish() {}
