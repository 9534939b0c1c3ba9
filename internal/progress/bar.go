package progress

import (
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

// barThrottle limits redraws of the bar.
const barThrottle = 65 * time.Millisecond

// Bar renders a byte-counting bar. An unknown total renders a spinner.
type Bar struct {
	w   io.Writer
	bar *progressbar.ProgressBar
	// total is the size the bar was created with.
	total int64
}

// NewBar returns a Bar writing to w. The underlying bar is created on the first tick,
// when the total is known.
func NewBar(w io.Writer) *Bar {
	return &Bar{w: w}
}

// Tick advances the bar to downloaded bytes.
func (b *Bar) Tick(downloaded, total int64) {
	if b.bar == nil || total != b.total {
		b.reset(total)
	}

	_ = b.bar.Set64(downloaded)
}

// Finish completes the bar and terminates its line.
func (b *Bar) Finish() {
	if b.bar == nil {
		return
	}

	_ = b.bar.Finish()
	_, _ = io.WriteString(b.w, "\n")
}

func (b *Bar) reset(total int64) {
	limit := total
	if limit <= 0 {
		limit = -1
	}

	b.total = total
	b.bar = progressbar.NewOptions64(limit,
		progressbar.OptionSetWriter(b.w),
		progressbar.OptionSetDescription("Downloading Chromium..."),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(barThrottle),
		progressbar.OptionSetPredictTime(false),
	)
}
