package scanlog

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendAndReplay(t *testing.T) {
	dir := t.TempDir()

	log, err := Open(dir)
	require.NoError(t, err)

	require.NoError(t, log.Append(EventScanQueued, "scan-1", nil))
	require.NoError(t, log.Append(EventScanStarted, "scan-1", map[string]int{"tasks": 12}))
	require.NoError(t, log.AppendError(EventTaskFailed, "scan-1",
		map[string]string{"region": "us-east-1", "type": "EC2"}, io.ErrUnexpectedEOF))
	require.NoError(t, log.Append(EventScanCompleted, "scan-1", nil))
	require.NoError(t, log.Close())

	var entries []*Entry
	err = Replay(dir, time.Time{}, func(e *Entry) error {
		entries = append(entries, e)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, entries, 4)

	assert.Equal(t, EventScanQueued, entries[0].Type)
	assert.Equal(t, int64(1), entries[0].Sequence)
	assert.Equal(t, EventTaskFailed, entries[2].Type)
	assert.Equal(t, "unexpected EOF", entries[2].Error)
	assert.Equal(t, int64(4), entries[3].Sequence)
}

func TestReplaySinceFiltersOldEntries(t *testing.T) {
	dir := t.TempDir()

	log, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, log.Append(EventScanStarted, "scan-1", nil))
	require.NoError(t, log.Close())

	count := 0
	err = Replay(dir, time.Now().Add(time.Hour), func(e *Entry) error {
		count++
		return nil
	})
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestReaderEOF(t *testing.T) {
	dir := t.TempDir()

	log, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, log.Append(EventScanStarted, "scan-1", nil))
	require.NoError(t, log.Close())

	files, err := filepath.Glob(filepath.Join(dir, "finlens-*.log"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	reader, err := NewReader(files[0])
	require.NoError(t, err)
	defer reader.Close()

	_, err = reader.Next()
	require.NoError(t, err)
	_, err = reader.Next()
	assert.Equal(t, io.EOF, err)
}
