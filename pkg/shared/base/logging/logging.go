// 指示: miu200521358
package logging

import "sync"

// LogLevel はログ出力レベルを表す。
type LogLevel int

const (
	// LOG_LEVEL_VERBOSE は詳細トレースレベルを表す。
	LOG_LEVEL_VERBOSE LogLevel = iota
	// LOG_LEVEL_DEBUG はデバッグレベルを表す。
	LOG_LEVEL_DEBUG
	// LOG_LEVEL_INFO は情報レベルを表す。
	LOG_LEVEL_INFO
	// LOG_LEVEL_WARN は警告レベルを表す。
	LOG_LEVEL_WARN
	// LOG_LEVEL_ERROR はエラーレベルを表す。
	LOG_LEVEL_ERROR
)

// VerboseIndex は詳細ログの出力チャネルを表す。
type VerboseIndex string

const (
	// VERBOSE_INDEX_STREAM はストリーム適用の逐次ログチャネルを表す。
	VERBOSE_INDEX_STREAM VerboseIndex = "stream"
	// VERBOSE_INDEX_BLEND はブレンド計算の逐次ログチャネルを表す。
	VERBOSE_INDEX_BLEND VerboseIndex = "blend"
)

// ILogger はログ出力契約を表す。
type ILogger interface {
	Verbose(index VerboseIndex, format string, params ...any)
	Debug(format string, params ...any)
	Info(format string, params ...any)
	Warn(format string, params ...any)
	Error(format string, params ...any)
	IsVerboseEnabled(index VerboseIndex) bool
	SetVerboseEnabled(index VerboseIndex, enabled bool)
	SetLevel(level LogLevel)
	Level() LogLevel
}

var (
	defaultLoggerMu sync.RWMutex
	defaultLogger   ILogger
)

// DefaultLogger は既定ロガーを返す。未設定の場合は nil を返す。
func DefaultLogger() ILogger {
	defaultLoggerMu.RLock()
	defer defaultLoggerMu.RUnlock()
	return defaultLogger
}

// SetDefaultLogger は既定ロガーを差し替える。
func SetDefaultLogger(logger ILogger) {
	defaultLoggerMu.Lock()
	defer defaultLoggerMu.Unlock()
	defaultLogger = logger
}
