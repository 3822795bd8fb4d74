package service

import (
	"sort"

	aerrors "github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/errors"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/common/validation"
)

// validateInput: validator 태그 검증 결과를 ValidationErrors 로 변환한다.
func validateInput(v any) error {
	err := validation.Struct(v)
	if err == nil {
		return nil
	}
	fields, ok := validation.AsFieldErrors(err)
	if !ok {
		return err
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(aerrors.ValidationErrors, 0, len(names))
	for _, name := range names {
		out = append(out, aerrors.ValidationError{Field: name, Message: "failed " + fields[name]})
	}
	return out
}
