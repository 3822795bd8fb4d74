package catalog

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// NormalizeLabel: 라벨을 비교용 키로 정규화한다. (NFC + case fold + 공백 정리)
func NormalizeLabel(label string) string {
	trimmed := strings.Join(strings.Fields(label), " ")
	return cases.Fold().String(norm.NFC.String(trimmed))
}
