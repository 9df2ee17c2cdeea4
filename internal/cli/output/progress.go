package output

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

const barWidth = 30

// ProgressBar draws byte progress on one terminal line. It is an
// io.Writer so it can sit behind an io.TeeReader.
type ProgressBar struct {
	mu    sync.Mutex
	w     io.Writer
	label string
	total int64
	done  int64
	shown int // last drawn percentage or byte-count bucket
}

// NewProgressBar creates a bar for total bytes. A total of zero or less
// shows a running byte count instead of a bar.
func NewProgressBar(w io.Writer, label string, total int64) *ProgressBar {
	return &ProgressBar{w: w, label: label, total: total, shown: -1}
}

// Write counts len(p) bytes. It never fails.
func (p *ProgressBar) Write(b []byte) (int, error) {
	p.Add(int64(len(b)))
	return len(b), nil
}

// Add counts n bytes and redraws when the visible value changed.
func (p *ProgressBar) Add(n int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done += n
	if step := p.step(); step != p.shown {
		p.shown = step
		p.draw()
	}
}

// Current returns the bytes counted so far.
func (p *ProgressBar) Current() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Finish draws the final state and ends the line.
func (p *ProgressBar) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.total > 0 {
		p.done = p.total
	}
	p.draw()
	fmt.Fprintln(p.w)
}

// Reader returns r with every read counted.
func (p *ProgressBar) Reader(r io.Reader) io.Reader {
	return io.TeeReader(r, p)
}

// step is what the bar currently shows: a percentage, or KiB read when the
// total is unknown.
func (p *ProgressBar) step() int {
	if p.total <= 0 {
		return int(p.done / 1024)
	}
	return int(min(p.done*100/p.total, 100))
}

func (p *ProgressBar) draw() {
	if p.total <= 0 {
		fmt.Fprintf(p.w, "\r%s %s", p.label, formatBytes(p.done))
		return
	}
	pct := min(float64(p.done)/float64(p.total), 1)
	filled := int(pct * barWidth)
	fmt.Fprintf(p.w, "\r%s [%s%s] %3.0f%% (%s/%s)", p.label,
		strings.Repeat("█", filled), strings.Repeat("░", barWidth-filled),
		pct*100, formatBytes(p.done), formatBytes(p.total))
}

// formatBytes renders b with binary units: 512 B, 1.5 KB, 2.0 MB.
func formatBytes(b int64) string {
	if b < 1024 {
		return fmt.Sprintf("%d B", b)
	}
	v := float64(b)
	units := "KMGTPE"
	i := -1
	for v >= 1024 && i < len(units)-1 {
		v /= 1024
		i++
	}
	return fmt.Sprintf("%.1f %cB", v, units[i])
}
