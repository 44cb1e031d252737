package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"mipy/internal/constants"
	"mipy/internal/router"
)

// Entry is one line of the operation journal.
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	OpID      string    `json:"op_id"`
	Operation string    `json:"operation"`
	Identity  string    `json:"identity,omitempty"`
	ChatID    int64     `json:"chat_id,omitempty"`
	Outcome   string    `json:"outcome"`
	ErrorKind string    `json:"error_kind,omitempty"`
	Message   string    `json:"message,omitempty"`
}

const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
)

// Journal appends operator operations as JSON lines. A nil *Journal
// discards everything.
type Journal struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
	path   string
}

// Open creates or appends to today's journal in the per-OS log directory.
func Open() (*Journal, error) {
	logDir, err := getLogDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get log directory: %w", err)
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	logFile := filepath.Join(logDir, fmt.Sprintf("journal-%s.log", time.Now().Format("2006-01-02")))

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return &Journal{w: file, closer: file, path: logFile}, nil
}

// New journals to w; used by tests and the console.
func New(w io.Writer) *Journal {
	return &Journal{w: w}
}

func getLogDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	var logDir string
	switch runtime.GOOS {
	case "windows":
		logDir = filepath.Join(homeDir, "AppData", "Local", constants.AppName, "logs")
	case "darwin":
		logDir = filepath.Join(homeDir, "Library", "Logs", constants.AppName)
	default: // linux and others
		logDir = filepath.Join(homeDir, ".local", "share", constants.AppName, "logs")
		if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
			logDir = filepath.Join(xdgData, constants.AppName, "logs")
		}
	}

	return logDir, nil
}

// Begin starts an operation record with a fresh id.
func (j *Journal) Begin(operation, identity string, chatID int64) *Op {
	return &Op{j: j, id: uuid.NewString(), operation: operation, identity: identity, chatID: chatID}
}

func (j *Journal) write(e Entry) {
	if j == nil {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	e.Timestamp = time.Now()
	json.NewEncoder(j.w).Encode(e)
}

func (j *Journal) Close() error {
	if j == nil || j.closer == nil {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.closer.Close()
}

func (j *Journal) Path() string {
	if j == nil {
		return ""
	}
	return j.path
}

// Op is one in-flight journal record.
type Op struct {
	j         *Journal
	id        string
	operation string
	identity  string
	chatID    int64
}

func (o *Op) ID() string {
	return o.id
}

// Done records the outcome of the operation; err may be nil.
func (o *Op) Done(message string, err error) {
	e := Entry{
		OpID:      o.id,
		Operation: o.operation,
		Identity:  o.identity,
		ChatID:    o.chatID,
		Outcome:   OutcomeOK,
		Message:   message,
	}
	if err != nil {
		e.Outcome = OutcomeFailed
		e.ErrorKind = router.KindOf(err).String()
		if e.Message == "" {
			e.Message = err.Error()
		}
	}
	o.j.write(e)
}
