package progress

import (
	"fmt"
	"io"
)

// percentFormat is the single progress line, rewritten in place with a carriage return.
const percentFormat = "Downloading Chromium... Total progress: %.1f%%\r"

// Percent renders a one-decimal percentage on a single line.
type Percent struct {
	w io.Writer
	// last is the most recently written line, used to skip identical redraws.
	last string
	// rendered is true once anything has been written.
	rendered bool
}

// NewPercent returns a Percent writing to w.
func NewPercent(w io.Writer) *Percent {
	return &Percent{w: w}
}

// Tick renders the percentage unless the total is unknown or the line is unchanged.
func (p *Percent) Tick(downloaded, total int64) {
	ratio, ok := Ratio(downloaded, total)
	if !ok {
		return
	}

	line := fmt.Sprintf(percentFormat, 100*ratio)
	if p.rendered && line == p.last {
		return
	}

	p.last = line
	p.rendered = true

	_, _ = io.WriteString(p.w, line)
}

// Finish moves past the progress line so later output starts on a fresh line.
func (p *Percent) Finish() {
	if !p.rendered {
		return
	}

	_, _ = io.WriteString(p.w, "\n")
}
