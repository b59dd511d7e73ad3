package shared

import (
	"context"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAndGetTraceID(t *testing.T) {
	t.Parallel()

	ctx := SetTraceID(context.Background())
	traceID := GetTraceID(ctx)

	require.NotEmpty(t, traceID, "SetTraceID should attach a trace ID")
	assert.Len(t, traceID, TraceIDLength*2, "trace ID should be a 32-character hex string")

	_, err := hex.DecodeString(traceID)
	assert.NoError(t, err, "trace ID should be valid hex")
}

func TestGetTraceIDWithoutValue(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", GetTraceID(context.Background()),
		"missing trace ID should read as an empty string")
}

func TestTraceIDsAreUnique(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		traceID := GetTraceID(SetTraceID(context.Background()))
		if seen[traceID] {
			t.Fatalf("duplicate trace ID generated: %s", traceID)
		}
		seen[traceID] = true
	}
}
