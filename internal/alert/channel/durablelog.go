package channel

import (
	"bufio"
	"encoding/json"
	"os"
	"sync"

	"github.com/manvi18ux/assistive-har-system/internal/alert"
	"github.com/manvi18ux/assistive-har-system/internal/errors"
)

const logFilePerm = 0o644

// JSONLog appends accepted alerts to a file, one JSON object per line.
type JSONLog struct {
	path string
	mu   sync.Mutex
}

func NewJSONLog(path string) (*JSONLog, error) {
	if path == "" {
		return nil, errors.New().New(ErrEmptyEndpoint)
	}
	return &JSONLog{path: path}, nil
}

// Append writes the event as a single JSON line.
func (l *JSONLog) Append(event alert.Event) error {
	errFactory := errors.New()

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, logFilePerm)
	if err != nil {
		return errFactory.Wrap(ErrLogOpen, err)
	}
	defer f.Close()

	line, err := json.Marshal(event)
	if err != nil {
		return errFactory.Wrap(ErrEncodePayload, err)
	}

	if _, err := f.Write(append(line, '\n')); err != nil {
		return errFactory.Wrap(ErrLogWrite, err)
	}

	return nil
}

// Read returns up to limit entries from the end of the log. Malformed
// lines are skipped, not fatal. A missing log file yields no entries.
func (l *JSONLog) Read(limit int) ([]json.RawMessage, error) {
	errFactory := errors.New()

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errFactory.Wrap(ErrLogRead, err)
	}
	defer f.Close()

	var entries []json.RawMessage
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if !json.Valid(line) {
			continue
		}
		entries = append(entries, json.RawMessage(append([]byte(nil), line...)))
	}
	if err := scanner.Err(); err != nil {
		return nil, errFactory.Wrap(ErrLogRead, err)
	}

	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}

	return entries, nil
}
