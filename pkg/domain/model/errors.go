// 指示: miu200521358
package model

import "fmt"

// InvalidMappingError は性別マッピング表の構造不正を表す致命エラー。
// 読込段階で検出し、処理を継続しない。
type InvalidMappingError struct {
	message string
	err     error
}

// NewInvalidMapping は InvalidMappingError を生成する。
func NewInvalidMapping(format string, err error, params ...any) error {
	return &InvalidMappingError{message: fmt.Sprintf(format, params...), err: err}
}

// Error はエラーメッセージを返す。
func (e *InvalidMappingError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.message, e.err)
	}
	return e.message
}

// Unwrap は原因エラーを返す。
func (e *InvalidMappingError) Unwrap() error { return e.err }

// EmptyCandidatesError は合成対象の候補が1件もない状態を表す致命エラー。
type EmptyCandidatesError struct {
	message string
	err     error
}

// NewEmptyCandidates は EmptyCandidatesError を生成する。
func NewEmptyCandidates(format string, err error, params ...any) error {
	return &EmptyCandidatesError{message: fmt.Sprintf(format, params...), err: err}
}

// Error はエラーメッセージを返す。
func (e *EmptyCandidatesError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.message, e.err)
	}
	return e.message
}

// Unwrap は原因エラーを返す。
func (e *EmptyCandidatesError) Unwrap() error { return e.err }

// SchemaValidationError は補正サービス応答のスキーマ違反を表す致命エラー。
// 違反応答へのフォールバックは行わない。
type SchemaValidationError struct {
	message string
	err     error
}

// NewSchemaValidation は SchemaValidationError を生成する。
func NewSchemaValidation(format string, err error, params ...any) error {
	return &SchemaValidationError{message: fmt.Sprintf(format, params...), err: err}
}

// Error はエラーメッセージを返す。
func (e *SchemaValidationError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.message, e.err)
	}
	return e.message
}

// Unwrap は原因エラーを返す。
func (e *SchemaValidationError) Unwrap() error { return e.err }

// ConfigError はボーン設定等の構成ファイル不備を表す致命エラー。
// 式の構文不正もこの型で返し、更新時ではなく読込時に露見させる。
type ConfigError struct {
	message string
	err     error
}

// NewConfigError は ConfigError を生成する。
func NewConfigError(format string, err error, params ...any) error {
	return &ConfigError{message: fmt.Sprintf(format, params...), err: err}
}

// Error はエラーメッセージを返す。
func (e *ConfigError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.message, e.err)
	}
	return e.message
}

// Unwrap は原因エラーを返す。
func (e *ConfigError) Unwrap() error { return e.err }

// ResolutionSupersededError は後続の解決開始により結果が破棄されたことを表す。
// 呼び出し側はこのエラーを異常扱いせず、適用スキップの合図として扱う。
type ResolutionSupersededError struct {
	message string
}

// NewResolutionSuperseded は ResolutionSupersededError を生成する。
func NewResolutionSuperseded(format string, params ...any) error {
	return &ResolutionSupersededError{message: fmt.Sprintf(format, params...)}
}

// Error はエラーメッセージを返す。
func (e *ResolutionSupersededError) Error() string { return e.message }
