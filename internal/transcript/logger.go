// Package transcript provides NDJSON dialogue transcript logging.
package transcript

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Event is one logged dialogue message.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Identity  string    `json:"identity"`
	Direction string    `json:"direction"` // "inbound" | "outbound"
	Category  string    `json:"category,omitempty"`
	Text      string    `json:"text"`
}

// Config controls transcript logging. The global stream, when enabled,
// appends every learner's events to one shared file in addition to the
// per-learner files.
type Config struct {
	Enabled       bool
	Dir           string
	QueueSize     int
	GlobalEnabled bool
	GlobalPath    string
}

// Logger appends dialogue events to one NDJSON file per learner. Writes are
// queued and flushed by a background goroutine so logging never blocks
// message delivery; events are dropped (and counted) when the queue is full.
type Logger struct {
	cfg     Config
	log     *slog.Logger
	queue   chan Event
	done    chan struct{}
	wg      sync.WaitGroup
	dropped int64
	mu      sync.Mutex
}

// NewLogger creates a transcript logger. When disabled, Log is a no-op.
func NewLogger(cfg Config, log *slog.Logger) (*Logger, error) {
	if log == nil {
		log = slog.Default()
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1000
	}

	l := &Logger{
		cfg:  cfg,
		log:  log,
		done: make(chan struct{}),
	}

	if !cfg.Enabled {
		return l, nil
	}

	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return nil, fmt.Errorf("create transcript directory: %w", err)
	}
	if cfg.GlobalEnabled {
		if err := os.MkdirAll(filepath.Dir(cfg.GlobalPath), 0755); err != nil {
			return nil, fmt.Errorf("create global transcript directory: %w", err)
		}
	}

	l.queue = make(chan Event, cfg.QueueSize)
	l.wg.Add(1)
	go l.run()

	return l, nil
}

// Log queues an event for writing. Never blocks.
func (l *Logger) Log(event Event) {
	if !l.cfg.Enabled {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case l.queue <- event:
	default:
		l.mu.Lock()
		l.dropped++
		dropped := l.dropped
		l.mu.Unlock()
		if dropped%100 == 1 {
			l.log.Warn("Transcript queue full, dropping events", "dropped_total", dropped)
		}
	}
}

func (l *Logger) run() {
	defer l.wg.Done()
	for {
		select {
		case event := <-l.queue:
			l.write(event)
		case <-l.done:
			// Drain what is already queued before exiting.
			for {
				select {
				case event := <-l.queue:
					l.write(event)
				default:
					return
				}
			}
		}
	}
}

func (l *Logger) write(event Event) {
	line, err := json.Marshal(event)
	if err != nil {
		l.log.Warn("Failed to marshal transcript event", "error", err)
		return
	}
	line = append(line, '\n')

	l.appendLine(filepath.Join(l.cfg.Dir, event.Identity+".ndjson"), line)
	if l.cfg.GlobalEnabled {
		l.appendLine(l.cfg.GlobalPath, line)
	}
}

func (l *Logger) appendLine(path string, line []byte) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		l.log.Warn("Failed to open transcript file", "error", err, "path", path)
		return
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			l.log.Warn("Failed to close transcript file", "error", closeErr, "path", path)
		}
	}()

	if _, err := f.Write(line); err != nil {
		l.log.Warn("Failed to write transcript event", "error", err, "path", path)
	}
}

// Close stops the writer after draining queued events.
func (l *Logger) Close() error {
	if !l.cfg.Enabled {
		return nil
	}
	close(l.done)
	l.wg.Wait()
	return nil
}
