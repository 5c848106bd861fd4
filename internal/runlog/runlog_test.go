package runlog

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord(runID string) Record {
	return Record{
		RunID:      runID,
		Query:      "What is OTIF?",
		Intent:     "DEFINITION",
		ToolCalls:  []string{"dictionary_lookup"},
		Sources:    []string{"data/scm_dictionary.json"},
		Confidence: 0.95,
		Answer:     "OTIF: On Time In Full.",
		CreatedAt:  time.Now().UTC().Truncate(time.Second),
	}
}

func TestSQLiteLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "runs.db")

	logger, err := NewSQLiteLogger(path)
	require.NoError(t, err)
	defer logger.Close()

	ctx := context.Background()
	require.NoError(t, logger.Log(ctx, sampleRecord("run-1")))
	second := sampleRecord("run-2")
	second.CreatedAt = second.CreatedAt.Add(time.Second)
	require.NoError(t, logger.Log(ctx, second))

	records, err := logger.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "run-2", records[0].RunID)
	assert.Equal(t, "run-1", records[1].RunID)
	assert.Equal(t, []string{"dictionary_lookup"}, records[1].ToolCalls)
	assert.Equal(t, []string{"data/scm_dictionary.json"}, records[1].Sources)
	assert.InDelta(t, 0.95, records[1].Confidence, 1e-9)
}

func TestSQLiteLoggerDuplicateRunID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")

	logger, err := NewSQLiteLogger(path)
	require.NoError(t, err)
	defer logger.Close()

	ctx := context.Background()
	require.NoError(t, logger.Log(ctx, sampleRecord("run-1")))
	assert.Error(t, logger.Log(ctx, sampleRecord("run-1")))
}

func TestJSONLLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "runs.jsonl")

	logger, err := NewJSONLLogger(path)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, logger.Log(ctx, sampleRecord("run-1")))
	require.NoError(t, logger.Log(ctx, sampleRecord("run-2")))
	require.NoError(t, logger.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec Record
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
		records = append(records, rec)
	}
	require.NoError(t, scanner.Err())

	require.Len(t, records, 2)
	assert.Equal(t, "run-1", records[0].RunID)
	assert.Equal(t, "run-2", records[1].RunID)
	assert.Equal(t, "What is OTIF?", records[0].Query)
}

func TestNopLogger(t *testing.T) {
	logger := NewNopLogger()
	assert.NoError(t, logger.Log(context.Background(), sampleRecord("run-1")))
	assert.NoError(t, logger.Close())
}
