// 指示: miu200521358
package minteractor

import "github.com/miu200521358/mu_shape_resolver/pkg/shared/base/logging"

// logPolicyInfo はポリシー構築のINFOログを出力する。
func logPolicyInfo(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Info(format, params...)
}

// logResolveInfo は解決パイプラインのINFOログを出力する。
func logResolveInfo(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Info(format, params...)
}

// logResolveWarn は解決パイプラインの警告ログを出力する。
func logResolveWarn(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Warn(format, params...)
}

// logResolveDebug は解決パイプラインのデバッグログを出力する。
func logResolveDebug(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Debug(format, params...)
}

// logBlendVerbose はブレンド計算の逐次ログを出力する。
func logBlendVerbose(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Verbose(logging.VERBOSE_INDEX_BLEND, format, params...)
}

// logStreamVerbose はストリーム適用の逐次ログを出力する。
func logStreamVerbose(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Verbose(logging.VERBOSE_INDEX_STREAM, format, params...)
}
