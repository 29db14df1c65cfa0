package logging

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

// newBufferLogger builds a zap-backed Logger writing JSON to a buffer so
// tests can assert on the emitted entries.
func newBufferLogger() (Logger, *zaptest.Buffer) {
	buf := &zaptest.Buffer{}
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), buf, zapcore.DebugLevel)
	return &zapLogger{z: zap.New(core)}, buf
}

func TestNewLoggerJSONFormat(t *testing.T) {
	l, err := NewLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestNewLoggerConsoleFormat(t *testing.T) {
	l, err := NewLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestNewLoggerInvalidOutputPath(t *testing.T) {
	_, err := NewLogger(LogConfig{OutputPaths: []string{"scheme://nope"}})
	assert.Error(t, err)
}

func TestLevels(t *testing.T) {
	l, buf := newBufferLogger()

	l.Debug("debug msg")
	l.Info("info msg")
	l.Warn("warn msg")
	l.Error("error msg")

	out := buf.String()
	assert.Contains(t, out, `"level":"debug"`)
	assert.Contains(t, out, `"level":"info"`)
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, `"level":"error"`)
}

func TestParseLevelUnknownDefaultsToInfo(t *testing.T) {
	assert.Equal(t, zapcore.InfoLevel, parseLevel("verbose"))
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("ERROR"))
}

func TestWithAddsFields(t *testing.T) {
	l, buf := newBufferLogger()
	l.With(String("case_id", "c-1")).Info("analyzed")
	assert.Contains(t, buf.String(), `"case_id":"c-1"`)
}

func TestNamedPrefixesLoggerName(t *testing.T) {
	l, buf := newBufferLogger()
	l.Named("brain").Info("msg")
	assert.Contains(t, buf.String(), `"logger":"brain"`)
}

func TestFieldConversion(t *testing.T) {
	l, buf := newBufferLogger()
	l.Info("typed fields",
		String("s", "v"),
		Int("i", 7),
		Int64("i64", 9),
		Float64("f", 0.5),
		Bool("b", true),
		Duration("d", 2*time.Second),
		Err(errors.New("boom")),
	)

	out := buf.String()
	assert.Contains(t, out, `"s":"v"`)
	assert.Contains(t, out, `"i":7`)
	assert.Contains(t, out, `"i64":9`)
	assert.Contains(t, out, `"f":0.5`)
	assert.Contains(t, out, `"b":true`)
	assert.Contains(t, out, `"d":2`)
	assert.Contains(t, out, `"error":"boom"`)
}

func TestErrNil(t *testing.T) {
	f := Err(nil)
	assert.Equal(t, "error", f.Key)
	assert.Equal(t, "<nil>", f.Value)
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	l.Debug("msg")
	l.Info("msg")
	l.Warn("msg")
	l.Error("msg")
	l.Fatal("msg")
	assert.Equal(t, l, l.With(String("k", "v")))
	assert.Equal(t, l, l.Named("sub"))
}
