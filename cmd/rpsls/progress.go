package main

import (
	"fmt"
	"io"
	"sync"
	"time"
)

const progressDots = 40

// dotProgress prints a fixed-width row of dots as matches complete.
type dotProgress struct {
	mu          sync.Mutex
	out         io.Writer
	dotsPrinted int
	startTime   time.Time
}

func newDotProgress(out io.Writer) *dotProgress {
	return &dotProgress{out: out, startTime: time.Now()}
}

// Update is called from simulator workers.
func (p *dotProgress) Update(done, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if total <= 0 {
		total = 1
	}
	target := done * progressDots / total
	for ; p.dotsPrinted < target; p.dotsPrinted++ {
		fmt.Fprint(p.out, ".")
	}
	if done == total {
		elapsed := time.Since(p.startTime)
		fmt.Fprintf(p.out, " %d matches in %.1fs (%.0f/sec)\n", total, elapsed.Seconds(), float64(total)/elapsed.Seconds())
	}
}
