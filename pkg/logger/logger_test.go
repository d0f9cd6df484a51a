package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	prev := zapLogger
	t.Cleanup(func() { zapLogger = prev })

	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	return logs
}

func TestPackageHelpers(t *testing.T) {
	logs := observe(t)

	Info("customer created", "customer_id", "c1")
	Warn("sms transport disabled")

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)
	assert.Equal(t, "customer created", entries[0].Message)
	assert.Equal(t, "c1", entries[0].ContextMap()["customer_id"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
}

func TestWithAttachesFields(t *testing.T) {
	logs := observe(t)

	l := GetLogger().With("user_id", "u1").Named("ledger")
	l.Error("record failed", "kind", "debt")

	entries := logs.AllUntimed()
	require.Len(t, entries, 1)
	assert.Equal(t, "ledger", entries[0].LoggerName)
	fields := entries[0].ContextMap()
	assert.Equal(t, "u1", fields["user_id"])
	assert.Equal(t, "debt", fields["kind"])
}
