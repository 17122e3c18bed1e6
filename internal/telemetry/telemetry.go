// Package telemetry writes local JSONL observability events and carries turn ids.
//
// Events never contain prompt text, model output or tool payloads; only sizes,
// counts, names and timings are recorded.
package telemetry

import (
	"bufio"
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const eventsFile = "events.jsonl"

// writeMu serialises appends from the UI goroutine and the turn worker.
var writeMu sync.Mutex

// Event is one decoded line of the events file.
type Event map[string]any

func (e Event) Name() string {
	s, _ := e["event"].(string)
	return s
}

func (e Event) TurnID() string {
	s, _ := e["turn_id"].(string)
	return s
}

// EventsPath is the file events are appended to.
func EventsPath() string {
	return filepath.Join(ArtifactsDir(), eventsFile)
}

// Emit appends one event when observation is enabled. The caller's map is not
// modified. Failures are reported on stderr and otherwise ignored.
func Emit(name string, fields map[string]any) {
	if !ObserveEnabled() {
		return
	}
	line, err := encodeEvent(name, fields, time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "telemetry: encode %s: %v\n", name, err)
		return
	}
	if err := appendLine(EventsPath(), line); err != nil {
		fmt.Fprintf(os.Stderr, "telemetry: %v\n", err)
	}
}

func encodeEvent(name string, fields map[string]any, now time.Time) ([]byte, error) {
	rec := make(map[string]any, len(fields)+2)
	maps.Copy(rec, fields)
	rec["time"] = now.UTC().Format(time.RFC3339Nano)
	rec["event"] = name
	b, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

func appendLine(path string, line []byte) error {
	writeMu.Lock()
	defer writeMu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	if _, err := f.Write(line); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// ReadEvents decodes every non-blank line of an events file in order.
func ReadEvents(path string) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []Event
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for n := 1; sc.Scan(); n++ {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var ev Event
		if err := json.Unmarshal(line, &ev); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, n, err)
		}
		out = append(out, ev)
	}
	return out, sc.Err()
}
