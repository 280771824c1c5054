package ratelimit

import (
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Manual collection triggers run a full ingestion cycle, so they consume
// more of the caller's budget than a plain read or workflow write.
const collectCost = 10

type window struct {
	count   int
	started time.Time
}

// Limiter applies a fixed-window request budget per actor. The key is the
// authenticated user when present, the client IP otherwise.
type Limiter struct {
	mu       sync.Mutex
	windows  map[string]*window
	max      int
	duration time.Duration
	logger   *zap.Logger
	stop     chan struct{}
}

type Config struct {
	MaxRequestsPerMinute int
	WindowDuration       time.Duration
	Logger               *zap.Logger
}

func New(cfg Config) *Limiter {
	if cfg.MaxRequestsPerMinute == 0 {
		cfg.MaxRequestsPerMinute = 120
	}
	if cfg.WindowDuration == 0 {
		cfg.WindowDuration = time.Minute
	}

	l := &Limiter{
		windows:  make(map[string]*window),
		max:      cfg.MaxRequestsPerMinute,
		duration: cfg.WindowDuration,
		logger:   cfg.Logger,
		stop:     make(chan struct{}),
	}
	go l.sweep()
	return l
}

func (l *Limiter) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		if path == "/api/v1/health" || path == "/api/v1/ready" || path == "/metrics" {
			return c.Next()
		}

		key := c.Get("X-User-ID")
		if key == "" {
			key = c.IP()
		}

		cost := 1
		if strings.Contains(path, "/collect/") {
			cost = collectCost
		}

		if !l.allow(key, cost) {
			if l.logger != nil {
				l.logger.Warn("Rate limit exceeded",
					zap.String("key", key),
					zap.String("path", path),
				)
			}
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Rate limit exceeded. Please try again later.",
			})
		}

		return c.Next()
	}
}

func (l *Limiter) allow(key string, cost int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	w, ok := l.windows[key]
	if !ok || now.Sub(w.started) >= l.duration {
		w = &window{started: now}
		l.windows[key] = w
	}

	if w.count+cost > l.max {
		return false
	}
	w.count += cost
	return true
}

// sweep drops windows that aged out so idle keys do not accumulate.
func (l *Limiter) sweep() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.mu.Lock()
			now := time.Now()
			for key, w := range l.windows {
				if now.Sub(w.started) >= 2*l.duration {
					delete(l.windows, key)
				}
			}
			l.mu.Unlock()
		}
	}
}

func (l *Limiter) Stop() {
	close(l.stop)
}
