// 指示: miu200521358
package model

const (
	// ShapeWarningMetadataKey は解決結果メタデータで警告ID集合を保持するキー。
	ShapeWarningMetadataKey = "MU_SHAPE_RESOLVER_warnings"

	// ShapeWarningKeyRejected は許可リスト外キー破棄警告。
	ShapeWarningKeyRejected = "ShapeWarningKeyRejected"
	// ShapeWarningBannedKeyForced は禁止キーの 0.0 強制警告。
	ShapeWarningBannedKeyForced = "ShapeWarningBannedKeyForced"
	// ShapeWarningValueClamped は値域 clamp 警告。
	ShapeWarningValueClamped = "ShapeWarningValueClamped"
	// ShapeWarningOptionalKeyDefaulted は欠損キーの既定値補完警告。
	ShapeWarningOptionalKeyDefaulted = "ShapeWarningOptionalKeyDefaulted"
	// ShapeWarningRefinementSkipped は補正サービス不達によるフォールバック警告。
	ShapeWarningRefinementSkipped = "ShapeWarningRefinementSkipped"
	// ShapeWarningStreamSuperseded は後続解決による配信中断警告。
	ShapeWarningStreamSuperseded = "ShapeWarningStreamSuperseded"
	// ShapeWarningGateClamped はボーン全体ゲート値の clamp 警告。
	ShapeWarningGateClamped = "ShapeWarningGateClamped"
)
