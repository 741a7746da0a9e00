// 指示: miu200521358
package mlogging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/miu200521358/mu_shape_resolver/pkg/shared/base/logging"
)

func TestLoggerWritesToConsoleAndBuffer(t *testing.T) {
	var console bytes.Buffer
	logger := NewLogger(&console)
	logger.SetLevel(logging.LOG_LEVEL_INFO)

	logger.Info("ブレンド完了: candidates=%d", 3)

	if !strings.Contains(console.String(), "candidates=3") {
		t.Fatalf("console output missing message: %s", console.String())
	}
	lines := logger.MessageBuffer().Lines()
	if len(lines) != 1 {
		t.Fatalf("buffer lines mismatch: got=%d want=1", len(lines))
	}
	if !strings.Contains(lines[0], "ブレンド完了") {
		t.Fatalf("buffer line missing message: %s", lines[0])
	}
	if !strings.HasPrefix(lines[0], "INFO") {
		t.Fatalf("buffer line missing level prefix: %s", lines[0])
	}
}

func TestLoggerLevelFiltersDebug(t *testing.T) {
	logger := NewLogger(&bytes.Buffer{})
	logger.SetLevel(logging.LOG_LEVEL_INFO)

	logger.Debug("除外されるデバッグ行")
	logger.Info("残る情報行")

	lines := logger.MessageBuffer().Lines()
	if len(lines) != 1 {
		t.Fatalf("buffer lines mismatch: got=%d want=1", len(lines))
	}
	if strings.Contains(lines[0], "デバッグ行") {
		t.Fatalf("debug line should be filtered: %s", lines[0])
	}
}

func TestLoggerVerboseChannelGate(t *testing.T) {
	logger := NewLogger(&bytes.Buffer{})
	logger.SetLevel(logging.LOG_LEVEL_INFO)

	logger.Verbose(logging.VERBOSE_INDEX_STREAM, "無効チャネル行")
	if got := len(logger.MessageBuffer().Lines()); got != 0 {
		t.Fatalf("disabled channel should emit nothing: got=%d want=0", got)
	}

	logger.SetVerboseEnabled(logging.VERBOSE_INDEX_STREAM, true)
	if !logger.IsVerboseEnabled(logging.VERBOSE_INDEX_STREAM) {
		t.Fatalf("stream channel should be enabled")
	}
	logger.Verbose(logging.VERBOSE_INDEX_STREAM, "有効チャネル行: key=%s", "waistWidth")

	lines := logger.MessageBuffer().Lines()
	if len(lines) != 1 {
		t.Fatalf("buffer lines mismatch: got=%d want=1", len(lines))
	}
	if !strings.Contains(lines[0], "key=waistWidth") {
		t.Fatalf("verbose line missing payload: %s", lines[0])
	}
}

func TestLoggerBufferClear(t *testing.T) {
	logger := NewLogger(&bytes.Buffer{})
	logger.Info("一行目")
	logger.MessageBuffer().Clear()
	if got := len(logger.MessageBuffer().Lines()); got != 0 {
		t.Fatalf("buffer should be empty after clear: got=%d want=0", got)
	}
}
