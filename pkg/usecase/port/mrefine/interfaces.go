// 指示: miu200521358
package mrefine

import (
	"context"

	"github.com/miu200521358/mu_shape_resolver/pkg/domain/model"
)

// IRefinementService は外部補正サービス呼び出しの契約を表す。
// パイプラインで唯一の非同期中断点。応答のスキーマ検証は実装側で
// 完結させ、違反応答は model.SchemaValidationError として返す。
type IRefinementService interface {
	// Refine は補正依頼を送り、スキーマ検証済みの応答を返す。
	Refine(ctx context.Context, request *model.RefinementRequest) (*model.RefinementResponse, error)
}
