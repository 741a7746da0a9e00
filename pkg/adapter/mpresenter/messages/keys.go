// 指示: miu200521358
// Package messages は利用側表示に使うメッセージキーを提供する。
package messages

// メッセージキー一覧。
const (
	HelpUsageTitle = "使い方"
	HelpUsage      = "使い方説明"

	LabelFile            = "ファイル"
	LabelCandidatePath   = "候補文書入力"
	LabelMappingPath     = "性別マッピング設定"
	LabelBoneScalingPath = "ボーンスケーリング設定"
	LabelOutputPath      = "結果出力"
	LabelResolve         = "解決開始"

	MessageLoadFailed        = "候補体型文書の読み込みに失敗しました"
	MessageConfigFailed      = "設定の読み込みに失敗しました"
	MessageResolveFailed     = "体型解決に失敗しました"
	MessageSaveFailed        = "結果の保存に失敗しました"
	MessageInputRequired     = "候補体型文書を指定してください"
	MessageRefinementSkipped = "補正サービスに接続できなかったため、ブレンド結果で確定しました"
	MessageSuperseded        = "後続の解決開始により破棄されました"

	LogLoadSuccess    = "候補体型文書読み込み成功: %s"
	LogResolveSuccess = "体型解決成功: resolution=%s refined=%t"
	LogSaveSuccess    = "結果保存成功: %s"
)
