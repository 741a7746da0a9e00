// 指示: miu200521358
// Package mgateway は外部補正サービスへのHTTPゲートウェイを提供する。
package mgateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/miu200521358/mu_shape_resolver/pkg/domain/model"
	"github.com/miu200521358/mu_shape_resolver/pkg/shared/base/logging"
	"github.com/miu200521358/mu_shape_resolver/pkg/usecase/port/mrefine"
)

const (
	refineDefaultTimeout = 15 * time.Second

	refineInfoDoneFormat = "補正サービス応答受理: request=%s keys=%d clamped=%d confidence=%v"
)

// refineWireRequest は補正依頼のJSON表現を表す。
type refineWireRequest struct {
	RequestID           string                    `json:"requestId"`
	Gender              string                    `json:"gender"`
	BlendedShapeValues  map[string]float64        `json:"blendedShapeValues"`
	BlendedLimbMasses   map[string]float64        `json:"blendedLimbMasses"`
	MappingVersion      string                    `json:"mappingVersion"`
	StructuralEnvelope  map[string]refineWireSpan `json:"structuralEnvelope,omitempty"`
	ClassificationHints []string                  `json:"classificationHints,omitempty"`
	Measurements        map[string]float64        `json:"measurements,omitempty"`
}

// refineWireSpan はエンベロープ1区間のJSON表現を表す。
type refineWireSpan struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// refineWireResponse は補正応答のJSON表現を表す。
// 欠落検出のため全フィールドをポインタで受け、信用前に全量検証する。
type refineWireResponse struct {
	Refined          *bool               `json:"refined"`
	FinalShapeValues map[string]*float64 `json:"finalShapeValues"`
	FinalLimbMasses  map[string]*float64 `json:"finalLimbMasses"`
	ClampedKeys      *[]string           `json:"clampedKeys"`
	OutOfRangeCount  *int                `json:"outOfRangeCount"`
	ActiveKeysCount  *int                `json:"activeKeysCount"`
	MappingVersion   *string             `json:"mappingVersion"`
	Confidence       *float64            `json:"confidence"`
}

// RefineClient は補正サービスのHTTP JSONクライアントを表す。
// スキーマ違反は model.SchemaValidationError、転送障害は通常のエラーとして
// 区別して返す。フォールバック判断は呼び出し側の責務とする。
type RefineClient struct {
	endpoint   string
	httpClient *http.Client
}

var _ mrefine.IRefinementService = (*RefineClient)(nil)

// NewRefineClient はRefineClientを生成する。timeout 0 は既定値15秒。
func NewRefineClient(endpoint string, timeout time.Duration) *RefineClient {
	if timeout <= 0 {
		timeout = refineDefaultTimeout
	}
	return &RefineClient{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Refine は補正依頼を送信し、スキーマ検証済みの応答を返す。
func (c *RefineClient) Refine(ctx context.Context, request *model.RefinementRequest) (*model.RefinementResponse, error) {
	if request == nil {
		return nil, fmt.Errorf("補正依頼が未指定です")
	}
	body, err := json.Marshal(buildWireRequest(request))
	if err != nil {
		return nil, fmt.Errorf("補正依頼の直列化に失敗しました: %w", err)
	}
	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("補正依頼の作成に失敗しました: %w", err)
	}
	httpRequest.Header.Set("Content-Type", "application/json")

	httpResponse, err := c.httpClient.Do(httpRequest)
	if err != nil {
		return nil, fmt.Errorf("補正サービスへの送信に失敗しました: %w", err)
	}
	defer httpResponse.Body.Close()
	if httpResponse.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("補正サービスが異常ステータスを返しました: status=%d", httpResponse.StatusCode)
	}
	payload, err := io.ReadAll(httpResponse.Body)
	if err != nil {
		return nil, fmt.Errorf("補正応答の読み取りに失敗しました: %w", err)
	}

	response, err := decodeAndValidateResponse(payload)
	if err != nil {
		return nil, err
	}
	logGatewayInfo(refineInfoDoneFormat, request.RequestID,
		len(response.FinalShapeValues), len(response.ClampedKeys), confidenceForLog(response.Confidence))
	return response, nil
}

// buildWireRequest はドメイン依頼をJSON表現へ写す。
func buildWireRequest(request *model.RefinementRequest) refineWireRequest {
	wire := refineWireRequest{
		RequestID:           request.RequestID,
		Gender:              request.Gender.String(),
		BlendedShapeValues:  request.BlendedShapeValues,
		BlendedLimbMasses:   request.BlendedLimbMasses,
		MappingVersion:      request.MappingVersion,
		ClassificationHints: request.ClassificationHints,
		Measurements:        request.Measurements,
	}
	if len(request.StructuralEnvelope) > 0 {
		wire.StructuralEnvelope = make(map[string]refineWireSpan, len(request.StructuralEnvelope))
		for key, valueRange := range request.StructuralEnvelope {
			wire.StructuralEnvelope[key] = refineWireSpan{Min: valueRange.Min, Max: valueRange.Max}
		}
	}
	return wire
}

// decodeAndValidateResponse は応答を復号し、値を信用する前に全量検証する。
// 違反は model.SchemaValidationError とし、部分適用は行わない。
func decodeAndValidateResponse(payload []byte) (*model.RefinementResponse, error) {
	wire := refineWireResponse{}
	if err := json.Unmarshal(payload, &wire); err != nil {
		return nil, model.NewSchemaValidation("補正応答の解析に失敗しました", err)
	}
	if wire.Refined == nil {
		return nil, model.NewSchemaValidation("refined が欠落しています", nil)
	}
	// refined=false は意図的に一律で契約違反とする。補正サービスに
	// 「未補正で成功」の応答形は無く、false を通すと未補正値の混入経路になる。
	if !*wire.Refined {
		return nil, model.NewSchemaValidation("refined=false の応答は契約違反です", nil)
	}
	finalShapeValues, err := validateValueMap("finalShapeValues", wire.FinalShapeValues)
	if err != nil {
		return nil, err
	}
	finalLimbMasses, err := validateValueMap("finalLimbMasses", wire.FinalLimbMasses)
	if err != nil {
		return nil, err
	}
	if wire.ClampedKeys == nil {
		return nil, model.NewSchemaValidation("clampedKeys が欠落しています", nil)
	}
	if wire.OutOfRangeCount == nil || *wire.OutOfRangeCount < 0 {
		return nil, model.NewSchemaValidation("outOfRangeCount が欠落または負数です", nil)
	}
	if wire.ActiveKeysCount == nil || *wire.ActiveKeysCount < 0 {
		return nil, model.NewSchemaValidation("activeKeysCount が欠落または負数です", nil)
	}
	if wire.MappingVersion == nil || *wire.MappingVersion == "" {
		return nil, model.NewSchemaValidation("mappingVersion が欠落しています", nil)
	}
	if wire.Confidence != nil && !isFinite(*wire.Confidence) {
		return nil, model.NewSchemaValidation("confidence が有限値ではありません: %v", nil, *wire.Confidence)
	}
	return &model.RefinementResponse{
		Refined:          true,
		FinalShapeValues: finalShapeValues,
		FinalLimbMasses:  finalLimbMasses,
		ClampedKeys:      *wire.ClampedKeys,
		OutOfRangeCount:  *wire.OutOfRangeCount,
		ActiveKeysCount:  *wire.ActiveKeysCount,
		MappingVersion:   *wire.MappingVersion,
		Confidence:       wire.Confidence,
	}, nil
}

// validateValueMap は値マップの非空・全値有限を検証する。
func validateValueMap(fieldName string, values map[string]*float64) (map[string]float64, error) {
	if len(values) == 0 {
		return nil, model.NewSchemaValidation("%s が空です", nil, fieldName)
	}
	validated := make(map[string]float64, len(values))
	for key, value := range values {
		if value == nil || !isFinite(*value) {
			return nil, model.NewSchemaValidation("%s に非有限値が含まれています: key=%s", nil, fieldName, key)
		}
		validated[key] = *value
	}
	return validated, nil
}

// isFinite は有限値かを返す。
func isFinite(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}

// confidenceForLog はログ表示用の確信度表現を返す。
func confidenceForLog(confidence *float64) any {
	if confidence == nil {
		return "none"
	}
	return *confidence
}

// logGatewayInfo はゲートウェイのINFOログを出力する。
func logGatewayInfo(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Info(format, params...)
}
