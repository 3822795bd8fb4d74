package catalog

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/model"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/common/validation"
)

// DecodeRequirement: YAML/JSON 에서 읽은 범용 맵을 Requirement 로 변환하고 검증한다.
// 알 수 없는 키는 에러로 처리한다.
func DecodeRequirement(raw map[string]any) (model.Requirement, error) {
	var req model.Requirement
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &req,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return model.Requirement{}, fmt.Errorf("create decoder failed: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return model.Requirement{}, fmt.Errorf("decode requirement failed: %w", err)
	}
	if err := validation.Struct(req); err != nil {
		return model.Requirement{}, fmt.Errorf("invalid requirement: %w", err)
	}
	return req, nil
}
