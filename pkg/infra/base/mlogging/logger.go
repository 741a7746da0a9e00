// 指示: miu200521358
package mlogging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	slogmulti "github.com/samber/slog-multi"

	"github.com/miu200521358/mu_shape_resolver/pkg/shared/base/logging"
)

// slogLevelVerbose は詳細トレース用のslogレベルを表す。
const slogLevelVerbose = slog.LevelDebug - 4

// Logger は slog ベースの logging.ILogger 実装を表す。
// コンソール出力と検証用メッセージバッファへ同じレコードを分配する。
type Logger struct {
	mu             sync.Mutex
	level          logging.LogLevel
	levelVar       *slog.LevelVar
	verboseEnabled map[logging.VerboseIndex]bool
	slogLogger     *slog.Logger
	buffer         *MessageBuffer
}

var _ logging.ILogger = (*Logger)(nil)

// NewLogger はロガーを生成する。out が nil の場合は標準エラー出力へ書き込む。
func NewLogger(out io.Writer) *Logger {
	if out == nil {
		out = os.Stderr
	}
	levelVar := &slog.LevelVar{}
	levelVar.Set(slog.LevelInfo)
	buffer := &MessageBuffer{}
	consoleHandler := slog.NewTextHandler(out, &slog.HandlerOptions{Level: levelVar})
	bufferHandler := &messageBufferHandler{buffer: buffer, levelVar: levelVar}
	return &Logger{
		level:          logging.LOG_LEVEL_INFO,
		levelVar:       levelVar,
		verboseEnabled: map[logging.VerboseIndex]bool{},
		slogLogger:     slog.New(slogmulti.Fanout(consoleHandler, bufferHandler)),
		buffer:         buffer,
	}
}

// SetLevel は出力レベルを設定する。
func (l *Logger) SetLevel(level logging.LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
	l.levelVar.Set(toSlogLevel(level))
}

// Level は現在の出力レベルを返す。
func (l *Logger) Level() logging.LogLevel {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// SetVerboseEnabled は詳細ログチャネルの有効状態を設定する。
func (l *Logger) SetVerboseEnabled(index logging.VerboseIndex, enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.verboseEnabled[index] = enabled
}

// IsVerboseEnabled は詳細ログチャネルが有効かを返す。
func (l *Logger) IsVerboseEnabled(index logging.VerboseIndex) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.verboseEnabled[index]
}

// MessageBuffer は検証用のメッセージバッファを返す。
func (l *Logger) MessageBuffer() *MessageBuffer {
	return l.buffer
}

// Verbose は有効化されたチャネルのみ INFO 相当で出力する。
func (l *Logger) Verbose(index logging.VerboseIndex, format string, params ...any) {
	if !l.IsVerboseEnabled(index) {
		return
	}
	l.slogLogger.Info(fmt.Sprintf(format, params...), slog.String("channel", string(index)))
}

// Debug はデバッグログを出力する。
func (l *Logger) Debug(format string, params ...any) {
	l.slogLogger.Debug(fmt.Sprintf(format, params...))
}

// Info は情報ログを出力する。
func (l *Logger) Info(format string, params ...any) {
	l.slogLogger.Info(fmt.Sprintf(format, params...))
}

// Warn は警告ログを出力する。
func (l *Logger) Warn(format string, params ...any) {
	l.slogLogger.Warn(fmt.Sprintf(format, params...))
}

// Error はエラーログを出力する。
func (l *Logger) Error(format string, params ...any) {
	l.slogLogger.Error(fmt.Sprintf(format, params...))
}

// toSlogLevel は logging.LogLevel を slog.Level へ変換する。
func toSlogLevel(level logging.LogLevel) slog.Level {
	switch level {
	case logging.LOG_LEVEL_VERBOSE:
		return slogLevelVerbose
	case logging.LOG_LEVEL_DEBUG:
		return slog.LevelDebug
	case logging.LOG_LEVEL_WARN:
		return slog.LevelWarn
	case logging.LOG_LEVEL_ERROR:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// MessageBuffer は出力済みメッセージを保持する検証用バッファを表す。
type MessageBuffer struct {
	mu    sync.Mutex
	lines []string
}

// Lines は保持中のメッセージ行の複製を返す。
func (b *MessageBuffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.lines...)
}

// Clear は保持中のメッセージ行を破棄する。
func (b *MessageBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = nil
}

// appendLine はメッセージ行を追加する。
func (b *MessageBuffer) appendLine(line string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = append(b.lines, line)
}

// messageBufferHandler はレコードを MessageBuffer へ書き込む slog.Handler を表す。
type messageBufferHandler struct {
	buffer   *MessageBuffer
	levelVar *slog.LevelVar
}

// Enabled は指定レベルのレコードを受理するかを返す。
func (h *messageBufferHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.levelVar.Level()
}

// Handle はレコードをバッファへ追記する。
func (h *messageBufferHandler) Handle(_ context.Context, record slog.Record) error {
	h.buffer.appendLine(fmt.Sprintf("%s %s", record.Level.String(), record.Message))
	return nil
}

// WithAttrs は属性を無視して同一ハンドラを返す。
func (h *messageBufferHandler) WithAttrs(_ []slog.Attr) slog.Handler {
	return h
}

// WithGroup はグループを無視して同一ハンドラを返す。
func (h *messageBufferHandler) WithGroup(_ string) slog.Handler {
	return h
}
