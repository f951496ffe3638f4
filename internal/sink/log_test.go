package sink_test

import (
	"testing"

	"github.com/YouSangSon/shardwatch/internal/sink"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogSink_Emit(t *testing.T) {
	// Arrange
	core, logs := observer.New(zapcore.DebugLevel)
	s := sink.NewLogSink(zap.New(core), zapcore.InfoLevel)

	// Act
	err := s.Emit(sampleRecord())

	// Assert
	require.NoError(t, err)
	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "shard bulk request completed", entries[0].Message)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)

	fields := entries[0].ContextMap()
	assert.Equal(t, "orders", fields["index"])
	assert.EqualValues(t, 3, fields["shard"])
	assert.Equal(t, "primary", fields["role"])
	assert.EqualValues(t, 7, fields["item_count"])
	assert.EqualValues(t, 12, fields["elapsed_ms"])
	assert.Equal(t, false, fields["failed"])
}

func TestLogSink_LevelFiltered(t *testing.T) {
	// Arrange
	core, logs := observer.New(zapcore.WarnLevel)
	s := sink.NewLogSink(zap.New(core), zapcore.DebugLevel)

	// Act
	err := s.Emit(sampleRecord())

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, 0, logs.Len())
}
