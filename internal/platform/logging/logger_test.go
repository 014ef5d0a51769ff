package logging

import (
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// captureLogOutput captures a single log entry emitted by logFn and returns it as a map.
func captureLogOutput(t *testing.T, setup func(), logFn func(*zap.Logger)) map[string]any {
	t.Helper()

	resetLoggerForTest()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	defer func() { _ = r.Close() }()

	origStdout := os.Stdout
	origStderr := os.Stderr
	os.Stdout = w
	os.Stderr = w
	defer func() {
		os.Stdout = origStdout
		os.Stderr = origStderr
	}()

	if setup != nil {
		setup()
	}
	logger := Logger()
	logFn(logger)
	_ = logger.Sync()

	if closeErr := w.Close(); closeErr != nil {
		t.Fatalf("failed to close writer: %v", closeErr)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("failed to read log output: %v", err)
	}

	line := strings.TrimSpace(string(data))
	if line == "" {
		t.Fatalf("expected log output, got empty string")
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(line), &payload); err != nil {
		t.Fatalf("failed to unmarshal log JSON: %v", err)
	}
	return payload
}

func resetLoggerForTest() {
	loggerOnce = sync.Once{}
	baseLogger = nil
	loggerErr = nil
	serviceMu.Lock()
	serviceLogger = nil
	serviceMu.Unlock()
}

func TestLoggerStructuredOutput(t *testing.T) {
	payload := captureLogOutput(t, nil, func(l *zap.Logger) {
		l.Info("GET /")
	})

	if got := payload["severity"]; got != "INFO" {
		t.Fatalf("expected severity INFO, got %v", got)
	}
	if got := payload["message"]; got != "GET /" {
		t.Fatalf("expected message 'GET /', got %v", got)
	}
	ts, ok := payload["timestamp"].(string)
	if !ok {
		t.Fatalf("expected timestamp string, got %T", payload["timestamp"])
	}
	if _, err := time.Parse(RFC3339Micros, ts); err != nil {
		t.Fatalf("timestamp %q not in RFC3339Micros: %v", ts, err)
	}
	if _, ok := payload["caller"]; !ok {
		t.Fatalf("expected caller field, got %v", payload)
	}
	if _, ok := payload["serviceContext"]; ok {
		t.Fatalf("unexpected serviceContext without SetService: %v", payload)
	}
}

func TestSetServiceAddsServiceContext(t *testing.T) {
	payload := captureLogOutput(t, func() { SetService("counter", "1.2.3") }, func(l *zap.Logger) {
		l.Warn("tagged")
	})

	if got := payload["severity"]; got != "WARNING" {
		t.Fatalf("expected severity WARNING, got %v", got)
	}
	sc, ok := payload["serviceContext"].(map[string]any)
	if !ok {
		t.Fatalf("expected serviceContext object, got %T", payload["serviceContext"])
	}
	if sc["service"] != "counter" || sc["version"] != "1.2.3" {
		t.Fatalf("unexpected serviceContext: %v", sc)
	}
}

func TestSetServiceEmptyNameClearsContext(t *testing.T) {
	payload := captureLogOutput(t, func() {
		SetService("hash", "dev")
		SetService("", "")
	}, func(l *zap.Logger) {
		l.Info("untagged")
	})
	if _, ok := payload["serviceContext"]; ok {
		t.Fatalf("expected serviceContext to be cleared, got %v", payload)
	}
}

func TestEncodeSeverityMapping(t *testing.T) {
	tests := []struct {
		level zapcore.Level
		want  string
	}{
		{zapcore.DebugLevel, "DEBUG"},
		{zapcore.InfoLevel, "INFO"},
		{zapcore.WarnLevel, "WARNING"},
		{zapcore.ErrorLevel, "ERROR"},
		{zapcore.DPanicLevel, "CRITICAL"},
		{zapcore.PanicLevel, "ALERT"},
		{zapcore.FatalLevel, "EMERGENCY"},
		{zapcore.Level(42), "DEFAULT"},
	}
	for _, tt := range tests {
		enc := &captureArrayEncoder{}
		encodeSeverity(tt.level, enc)
		if len(enc.values) != 1 || enc.values[0] != tt.want {
			t.Errorf("encodeSeverity(%v) = %v, want %s", tt.level, enc.values, tt.want)
		}
	}
}

func TestEncodeTimeMicrosUTC(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	ts := time.Date(2024, 1, 15, 13, 30, 0, 123456789, loc)

	enc := &captureArrayEncoder{}
	encodeTimeMicros(ts, enc)

	if len(enc.values) != 1 || enc.values[0] != "2024-01-15T10:30:00.123456Z" {
		t.Fatalf("unexpected encoded time: %v", enc.values)
	}
}

func TestLoggerSingleton(t *testing.T) {
	resetLoggerForTest()
	if Logger() != Logger() {
		t.Fatal("expected Logger to return the same instance")
	}
	if err := Err(); err != nil {
		t.Fatalf("unexpected init error: %v", err)
	}
}

type captureArrayEncoder struct {
	values []string
}

func (c *captureArrayEncoder) AppendBool(bool)             {}
func (c *captureArrayEncoder) AppendByteString([]byte)     {}
func (c *captureArrayEncoder) AppendComplex128(complex128) {}
func (c *captureArrayEncoder) AppendComplex64(complex64)   {}
func (c *captureArrayEncoder) AppendFloat64(float64)       {}
func (c *captureArrayEncoder) AppendFloat32(float32)       {}
func (c *captureArrayEncoder) AppendInt(int)               {}
func (c *captureArrayEncoder) AppendInt64(int64)           {}
func (c *captureArrayEncoder) AppendInt32(int32)           {}
func (c *captureArrayEncoder) AppendInt16(int16)           {}
func (c *captureArrayEncoder) AppendInt8(int8)             {}
func (c *captureArrayEncoder) AppendString(s string)       { c.values = append(c.values, s) }
func (c *captureArrayEncoder) AppendUint(uint)             {}
func (c *captureArrayEncoder) AppendUint64(uint64)         {}
func (c *captureArrayEncoder) AppendUint32(uint32)         {}
func (c *captureArrayEncoder) AppendUint16(uint16)         {}
func (c *captureArrayEncoder) AppendUint8(uint8)           {}
func (c *captureArrayEncoder) AppendUintptr(uintptr)       {}
