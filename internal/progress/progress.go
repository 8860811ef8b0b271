// Package progress observes bytes flowing through a reader without changing them.
package progress

import (
	"io"
	"log/slog"
)

// Observer is told how many bytes a single Read returned.
// It must be cheap and must not panic.
type Observer func(n int)

// Nop ignores every observation.
func Nop(int) {}

// Reader forwards reads to an underlying reader and reports each non-empty
// read to an Observer. Bytes, counts, errors and EOF are passed through as-is.
type Reader struct {
	r       io.Reader
	observe Observer
	total   int64
}

// NewReader wraps r. A nil observer behaves like Nop.
func NewReader(r io.Reader, observe Observer) *Reader {
	if observe == nil {
		observe = Nop
	}
	return &Reader{r: r, observe: observe}
}

func (p *Reader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.total += int64(n)
		p.observe(n)
	}
	return n, err
}

// Total returns the number of bytes read so far.
func (p *Reader) Total() int64 {
	return p.total
}

// Dots writes a single '.' to w every step bytes. Write errors are ignored.
// CI systems that kill silent jobs are kept alive by it.
func Dots(w io.Writer, step int64) Observer {
	return every(step, func(int64) {
		_, _ = io.WriteString(w, ".")
	})
}

// Log emits a debug record to logger every step bytes.
func Log(logger *slog.Logger, step int64) Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return every(step, func(total int64) {
		logger.Debug("downloading", slog.Int64("bytes", total))
	})
}

func every(step int64, fn func(total int64)) Observer {
	if step <= 0 {
		step = 1
	}
	var total, next int64 = 0, step
	return func(n int) {
		total += int64(n)
		for total >= next {
			fn(total)
			next += step
		}
	}
}
