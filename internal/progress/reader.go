package progress

import "io"

// Reader counts bytes read from r and reports a tick after every read that returned data.
type Reader struct {
	r        io.Reader
	total    int64
	read     int64
	reporter Reporter
}

// NewReader wraps r. A nil reporter disables ticks.
func NewReader(r io.Reader, total int64, reporter Reporter) *Reader {
	if reporter == nil {
		reporter = None{}
	}

	return &Reader{r: r, total: total, reporter: reporter}
}

func (p *Reader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.read += int64(n)
		p.reporter.Tick(p.read, p.total)
	}

	return n, err
}

// BytesRead returns the cumulative count.
func (p *Reader) BytesRead() int64 {
	return p.read
}
