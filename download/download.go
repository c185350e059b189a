// Package download streams files to disk concurrently, reporting progress as
// events on a channel the interaction loop consumes.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"skiff/fetch"
)

// Status is a download task state.
type Status int

const (
	StatusQueued Status = iota
	StatusInProgress
	StatusCompleted
	StatusFailed
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusQueued:
		return "queued"
	case StatusInProgress:
		return "downloading"
	case StatusCompleted:
		return "done"
	case StatusFailed:
		return "failed"
	case StatusCancelled:
		return "cancelled"
	}
	return "unknown"
}

// Terminal reports whether the status is final.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// Event is a task state change or progress update.
type Event struct {
	ID       string
	URL      string
	Dest     string
	Status   Status
	Received int64
	Total    int64 // -1 when the server sent no length
	Err      string
}

// Manager runs download transfers. Task lifetime is independent of the tab
// that started the task.
type Manager struct {
	client *fetch.Client
	dir    string
	sem    *semaphore.Weighted
	events chan Event

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

// NewManager creates a manager writing into dir, running at most concurrent
// transfers at once.
func NewManager(client *fetch.Client, dir string, concurrent int64) *Manager {
	if concurrent < 1 {
		concurrent = 3
	}
	return &Manager{
		client:  client,
		dir:     dir,
		sem:     semaphore.NewWeighted(concurrent),
		events:  make(chan Event, 64),
		cancels: make(map[string]context.CancelFunc),
	}
}

// Events returns the channel state changes and progress are posted on.
func (m *Manager) Events() <-chan Event { return m.events }

// Enqueue starts a download of the URL and returns the task id. The transfer
// runs in the background; all state, including the initial Queued, arrives as
// events posted from the transfer goroutine, so the caller never blocks on
// the event channel.
func (m *Manager) Enqueue(rawURL string, proxy bool) string {
	id := uuid.NewString()
	dest := filepath.Join(m.dir, fetch.Filename(rawURL))

	ctx, cancel := context.WithCancel(context.Background())
	m.mu.Lock()
	m.cancels[id] = cancel
	m.mu.Unlock()

	go m.run(ctx, id, rawURL, dest, proxy)
	return id
}

// post delivers a state transition. May block the transfer goroutine until
// the consumer drains; transitions are never dropped.
func (m *Manager) post(ev Event) {
	m.events <- ev
}

// postProgress delivers a progress update, dropping it when the buffer is
// full. Progress is advisory; a later update or the terminal event carries
// the byte count.
func (m *Manager) postProgress(ev Event) {
	select {
	case m.events <- ev:
	default:
	}
}

// Cancel requests cancellation of a task. The transfer observes it at its
// next read and reports Cancelled; cancelling an unknown or finished task is
// a no-op.
func (m *Manager) Cancel(id string) {
	m.mu.Lock()
	cancel, ok := m.cancels[id]
	m.mu.Unlock()
	if ok {
		cancel()
	}
}

func (m *Manager) finish(id string, ev Event) {
	m.mu.Lock()
	if cancel, ok := m.cancels[id]; ok {
		cancel()
		delete(m.cancels, id)
	}
	m.mu.Unlock()
	m.post(ev)
}

func (m *Manager) run(ctx context.Context, id, rawURL, dest string, proxy bool) {
	m.post(Event{ID: id, URL: rawURL, Dest: dest, Status: StatusQueued, Total: -1})

	if err := m.sem.Acquire(ctx, 1); err != nil {
		m.finish(id, Event{ID: id, URL: rawURL, Dest: dest, Status: StatusCancelled, Total: -1})
		return
	}
	defer m.sem.Release(1)

	received, total, err := m.transfer(ctx, id, rawURL, dest, proxy)
	if err != nil {
		// Half-written files are useless: remove the partial output.
		os.Remove(dest)
		status := StatusFailed
		if errors.Is(err, context.Canceled) {
			status = StatusCancelled
		}
		m.finish(id, Event{
			ID: id, URL: rawURL, Dest: dest, Status: status,
			Received: received, Total: total, Err: err.Error(),
		})
		return
	}

	m.finish(id, Event{
		ID: id, URL: rawURL, Dest: dest, Status: StatusCompleted,
		Received: received, Total: total,
	})
}

// transfer streams the response body to dest chunk by chunk, posting progress
// along the way. The payload is never held in memory.
func (m *Manager) transfer(ctx context.Context, id, rawURL, dest string, proxy bool) (received, total int64, err error) {
	total = -1

	resp, err := m.client.Stream(ctx, rawURL, proxy)
	if err != nil {
		return 0, total, err
	}
	defer resp.Body.Close()
	if resp.ContentLength > 0 {
		total = resp.ContentLength
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return 0, total, fmt.Errorf("creating download directory: %w", err)
	}
	out, err := os.Create(dest)
	if err != nil {
		return 0, total, fmt.Errorf("creating %s: %w", dest, err)
	}
	defer out.Close()

	m.post(Event{ID: id, URL: rawURL, Dest: dest, Status: StatusInProgress, Total: total})

	buf := make([]byte, 32*1024)
	for {
		if err := ctx.Err(); err != nil {
			return received, total, err
		}
		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := out.Write(buf[:n]); werr != nil {
				return received, total, fmt.Errorf("writing %s: %w", dest, werr)
			}
			received += int64(n)
			m.postProgress(Event{ID: id, URL: rawURL, Dest: dest, Status: StatusInProgress, Received: received, Total: total})
		}
		if rerr == io.EOF {
			return received, total, nil
		}
		if rerr != nil {
			if cerr := ctx.Err(); cerr != nil {
				return received, total, cerr
			}
			return received, total, fmt.Errorf("reading %s: %w", rawURL, rerr)
		}
	}
}
