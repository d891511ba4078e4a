package monitor

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

var (
	ErrWriterUnavailable = errors.New("monitor: record writer unavailable")
)

const (
	hourLayout = "2006-01-02-15"
	dateLayout = "2006-01-02 15:04:05"
)

// recordWriter appends one JSON object per line to hour-bucketed files.
type recordWriter struct {
	mtx sync.Mutex
	dir string
}

func (w *recordWriter) append(subdir string, file string, record map[string]any) error {
	w.mtx.Lock()
	defer w.mtx.Unlock()

	dir := filepath.Join(w.dir, subdir)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create %s: %w", ErrWriterUnavailable, dir, err)
	}

	f, err := os.OpenFile(filepath.Join(dir, file), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("%w: open %s: %w", ErrWriterUnavailable, file, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(record); err != nil {
		return fmt.Errorf("monitor: write record: %w", err)
	}

	return nil
}

// recordFile names the bucket for kind. llm records share one file per hour;
// agent and tool records are split by source too.
func recordFile(kind string, source string, now time.Time) (string, string) {
	hour := now.UTC().Format(hourLayout)

	if kind == kindLLM {
		return "llm_invocation", fmt.Sprintf("llm_%s.jsonl", hour)
	}

	return kind + "_invocation", fmt.Sprintf("%s_%s_%s.jsonl", kind, safeName(source), hour)
}

func safeName(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}
		return r
	}, s)
}
