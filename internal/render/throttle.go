package render

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"gpt-cli/internal/logger"
)

// DefaultInterval is the minimum spacing between two redraws.
const DefaultInterval = 100 * time.Millisecond

// Throttle coalesces a stream of text updates into at most one draw per
// interval. The first update of a quiet period draws immediately; later ones
// only replace the pending text and a single trailing draw is scheduled for
// when the limiter allows it.
type Throttle struct {
	mu sync.Mutex

	limiter *rate.Limiter
	draw    func(string) error
	log     *logger.LogEntry

	latest string
	dirty  bool
	timer  *time.Timer
	gen    uint64
}

func NewThrottle(interval time.Duration, draw func(string) error) *Throttle {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Throttle{
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		draw:    draw,
		log:     logger.Named("render"),
	}
}

// Update records text as the latest content and draws it now if the limiter
// has a token, otherwise leaves it for the trailing draw.
func (t *Throttle) Update(text string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.latest = text
	t.dirty = true
	if t.timer != nil {
		return nil
	}
	if t.limiter.Allow() {
		return t.drawLocked()
	}
	delay := t.limiter.Reserve().Delay()
	gen := t.gen
	t.timer = time.AfterFunc(delay, func() { t.trailing(gen) })
	return nil
}

// Flush cancels any scheduled draw and draws the latest text if it has not
// been drawn yet. It must be called once the stream of updates has ended.
func (t *Throttle) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.cancelLocked()
	if !t.dirty {
		return nil
	}
	return t.drawLocked()
}

// Stop cancels any scheduled draw without drawing.
func (t *Throttle) Stop() {
	t.mu.Lock()
	t.cancelLocked()
	t.dirty = false
	t.mu.Unlock()
}

func (t *Throttle) trailing(gen uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if gen != t.gen {
		return
	}
	t.timer = nil
	if !t.dirty {
		return
	}
	if err := t.drawLocked(); err != nil {
		t.log.Warnf("trailing redraw failed: %v", err)
	}
}

func (t *Throttle) cancelLocked() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.gen++
}

func (t *Throttle) drawLocked() error {
	t.dirty = false
	if t.draw == nil {
		return nil
	}
	return t.draw(t.latest)
}
