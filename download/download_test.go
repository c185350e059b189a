package download

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"skiff/fetch"
)

func newManager(t *testing.T, dir string) *Manager {
	t.Helper()
	client, err := fetch.NewClient(fetch.Options{})
	if err != nil {
		t.Fatal(err)
	}
	return NewManager(client, dir, 2)
}

// waitFor drains the event stream until cond is satisfied or the test times
// out.
func waitFor(t *testing.T, events <-chan Event, cond func(Event) bool) Event {
	t.Helper()
	deadline := time.After(10 * time.Second)
	for {
		select {
		case ev := <-events:
			if cond(ev) {
				return ev
			}
		case <-deadline:
			t.Fatal("timed out waiting for download event")
		}
	}
}

func TestDownloadCompletes(t *testing.T) {
	payload := []byte("file contents here")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer srv.Close()

	dir := t.TempDir()
	mgr := newManager(t, dir)
	id := mgr.Enqueue(srv.URL+"/data.bin", false)

	ev := waitFor(t, mgr.Events(), func(ev Event) bool {
		return ev.ID == id && ev.Status.Terminal()
	})
	if ev.Status != StatusCompleted {
		t.Fatalf("terminal status = %v (%s)", ev.Status, ev.Err)
	}
	if ev.Received != int64(len(payload)) {
		t.Errorf("received = %d, want %d", ev.Received, len(payload))
	}

	got, err := os.ReadFile(filepath.Join(dir, "data.bin"))
	if err != nil {
		t.Fatalf("reading downloaded file: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("file contents = %q", got)
	}
}

func TestDownloadCancelRemovesPartialFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "1000000")
		w.Write(make([]byte, 64*1024))
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		<-r.Context().Done()
	}))
	defer srv.Close()

	dir := t.TempDir()
	mgr := newManager(t, dir)
	id := mgr.Enqueue(srv.URL+"/big.bin", false)

	// Wait until bytes are flowing, then cancel mid-transfer.
	waitFor(t, mgr.Events(), func(ev Event) bool {
		return ev.ID == id && ev.Status == StatusInProgress && ev.Received > 0
	})
	mgr.Cancel(id)

	ev := waitFor(t, mgr.Events(), func(ev Event) bool {
		return ev.ID == id && ev.Status.Terminal()
	})
	if ev.Status != StatusCancelled {
		t.Fatalf("terminal status = %v, want cancelled", ev.Status)
	}

	if _, err := os.Stat(filepath.Join(dir, "big.bin")); !os.IsNotExist(err) {
		t.Error("partial file left on disk after cancel")
	}
}

func TestDownloadHTTPErrorFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	mgr := newManager(t, t.TempDir())
	id := mgr.Enqueue(srv.URL+"/gone.zip", false)

	ev := waitFor(t, mgr.Events(), func(ev Event) bool {
		return ev.ID == id && ev.Status.Terminal()
	})
	if ev.Status != StatusFailed {
		t.Fatalf("terminal status = %v, want failed", ev.Status)
	}
	if ev.Err == "" {
		t.Error("failed event carries no reason")
	}
}

func TestEnqueueReturnsWithoutConsumer(t *testing.T) {
	// Far more chunks than the event buffer holds, and nobody reading the
	// events channel. Enqueue must still return immediately for every task.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(make([]byte, 8*1024*1024))
	}))
	defer srv.Close()

	mgr := newManager(t, t.TempDir())

	done := make(chan struct{})
	go func() {
		for i := 0; i < 4; i++ {
			mgr.Enqueue(srv.URL+"/blob.bin", false)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Enqueue blocked on a full event channel")
	}

	// The transfers still report completion once someone drains.
	waitFor(t, mgr.Events(), func(ev Event) bool {
		return ev.Status == StatusCompleted
	})
}

func TestCancelUnknownTaskIsNoop(t *testing.T) {
	mgr := newManager(t, t.TempDir())
	mgr.Cancel("no-such-id") // must not panic
}

func TestListApplyAndDismiss(t *testing.T) {
	l := NewList()

	l.Apply(Event{ID: "a", URL: "u1", Dest: "d1", Status: StatusQueued, Total: -1})
	l.Apply(Event{ID: "b", URL: "u2", Dest: "d2", Status: StatusQueued, Total: -1})
	l.Apply(Event{ID: "a", Status: StatusInProgress, Received: 10, Total: 100})
	l.Apply(Event{ID: "b", Status: StatusCompleted, Received: 5})

	tasks := l.Tasks()
	if len(tasks) != 2 {
		t.Fatalf("got %d tasks", len(tasks))
	}
	if tasks[0].ID != "a" || tasks[1].ID != "b" {
		t.Error("tasks out of enqueue order")
	}
	if tasks[0].Received != 10 || tasks[0].Total != 100 {
		t.Errorf("progress not folded in: %+v", tasks[0])
	}

	// Dismiss removes only terminal tasks.
	l.Dismiss()
	tasks = l.Tasks()
	if len(tasks) != 1 || tasks[0].ID != "a" {
		t.Fatalf("after dismiss: %+v", tasks)
	}

	l.Apply(Event{ID: "a", Status: StatusCancelled})
	l.Dismiss()
	if l.Len() != 0 {
		t.Errorf("cancelled task survived dismiss")
	}
}

func TestListActive(t *testing.T) {
	l := NewList()
	if l.Active() {
		t.Error("empty list reports active")
	}
	l.Apply(Event{ID: "a", Status: StatusQueued, Total: -1})
	if !l.Active() {
		t.Error("queued task not active")
	}
	l.Apply(Event{ID: "a", Status: StatusFailed})
	if l.Active() {
		t.Error("failed task still active")
	}
}

func TestStatusStrings(t *testing.T) {
	if StatusInProgress.String() != "downloading" || StatusCancelled.String() != "cancelled" {
		t.Error("status strings wrong")
	}
	if StatusQueued.Terminal() || !StatusCompleted.Terminal() {
		t.Error("terminal classification wrong")
	}
}
