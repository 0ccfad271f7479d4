// Package scanlog keeps an append-only JSONL audit trail of scan
// lifecycle events. Each scan run appends entries as it moves through
// discovery, enrichment, and finalization, so a crashed run leaves a
// readable trace of how far it got.
package scanlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EventType defines the type of scan log event
type EventType string

const (
	EventScanQueued    EventType = "scan_queued"
	EventScanStarted   EventType = "scan_started"
	EventTaskStarted   EventType = "task_started"
	EventTaskCompleted EventType = "task_completed"
	EventTaskFailed    EventType = "task_failed"
	EventStageCompleted EventType = "stage_completed"
	EventStageFailed   EventType = "stage_failed"
	EventScanCompleted EventType = "scan_completed"
	EventScanFailed    EventType = "scan_failed"
)

// Entry is a single scan log event
type Entry struct {
	Timestamp time.Time       `json:"timestamp"`
	Sequence  int64           `json:"sequence"`
	Type      EventType       `json:"type"`
	ScanID    string          `json:"scan_id"`
	Data      json.RawMessage `json:"data,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// Log provides append-only scan event logging
type Log struct {
	mu       sync.Mutex
	file     *os.File
	writer   *bufio.Writer
	sequence int64
	dir      string
}

// Open creates or opens a scan log in the specified directory
func Open(dir string) (*Log, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create scan log directory: %w", err)
	}

	// Timestamp in filename for rotation
	filename := fmt.Sprintf("finlens-%s.log", time.Now().Format("20060102-150405"))
	path := filepath.Join(dir, filename)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open scan log file: %w", err)
	}

	return &Log{
		file:   file,
		writer: bufio.NewWriter(file),
		dir:    dir,
	}, nil
}

// Close flushes and closes the log
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.writer.Flush(); err != nil {
		return err
	}
	return l.file.Close()
}

// Append adds an event to the log
func (l *Log) Append(eventType EventType, scanID string, data interface{}) error {
	return l.append(eventType, scanID, data, nil)
}

// AppendError adds a failure event to the log
func (l *Log) AppendError(eventType EventType, scanID string, data interface{}, cause error) error {
	return l.append(eventType, scanID, data, cause)
}

func (l *Log) append(eventType EventType, scanID string, data interface{}, cause error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.sequence++

	var jsonData json.RawMessage
	if data != nil {
		encoded, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("failed to marshal data: %w", err)
		}
		jsonData = encoded
	}

	entry := Entry{
		Timestamp: time.Now(),
		Sequence:  l.sequence,
		Type:      eventType,
		ScanID:    scanID,
		Data:      jsonData,
	}
	if cause != nil {
		entry.Error = cause.Error()
	}

	return l.writeEntry(entry)
}

func (l *Log) writeEntry(entry Entry) error {
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	if _, err := l.writer.Write(line); err != nil {
		return fmt.Errorf("failed to write entry: %w", err)
	}

	if _, err := l.writer.WriteString("\n"); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	// Flush immediately for durability
	if err := l.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush: %w", err)
	}

	return l.file.Sync()
}

// Reader replays scan log files entry by entry
type Reader struct {
	scanner *bufio.Scanner
	file    *os.File
}

// NewReader creates a reader for the specified log file
func NewReader(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open scan log file: %w", err)
	}

	return &Reader{
		scanner: bufio.NewScanner(file),
		file:    file,
	}, nil
}

// Next reads the next entry
func (r *Reader) Next() (*Entry, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}

	var entry Entry
	if err := json.Unmarshal(r.scanner.Bytes(), &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal entry: %w", err)
	}

	return &entry, nil
}

// Close closes the reader
func (r *Reader) Close() error {
	return r.file.Close()
}

// Replay invokes handler for every event after `since` across all log
// files in the directory, oldest file first.
func Replay(dir string, since time.Time, handler func(*Entry) error) error {
	files, err := filepath.Glob(filepath.Join(dir, "finlens-*.log"))
	if err != nil {
		return fmt.Errorf("failed to list scan log files: %w", err)
	}

	for _, file := range files {
		if err := replayFile(file, since, handler); err != nil {
			return err
		}
	}
	return nil
}

func replayFile(path string, since time.Time, handler func(*Entry) error) error {
	reader, err := NewReader(path)
	if err != nil {
		return err
	}
	defer reader.Close()

	for {
		entry, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		if entry.Timestamp.After(since) {
			if err := handler(entry); err != nil {
				return err
			}
		}
	}
}
