// Package mark 메신저 메시지에 붙이는 이모지 상수를 중앙 관리하는 패키지입니다.
package mark

import "strings"

// Mark 이모지 상수를 위한 타입입니다.
type Mark string

const (
	// 극심한 위험 (Extreme)
	Extreme Mark = "🚨"

	// 심각한 위험 (Severe)
	Severe Mark = "🔴"

	// 보통 위험 (Moderate)
	Moderate Mark = "🟠"

	// 경미한 위험 (Minor)
	Minor Mark = "🟡"

	// 심각도 미상 또는 기타
	Warning Mark = "⚠️"

	// 경보 해제 (msgType: Cancel)
	Cancel Mark = "✅"
)

// ForAlert 경보의 메시지 유형과 심각도(CAP 표기)에 맞는 마크를 반환합니다.
// 대소문자는 구분하지 않으며, 해제 메시지는 심각도와 관계없이 Cancel을 반환합니다.
func ForAlert(msgType, severity string) Mark {
	if strings.EqualFold(msgType, "Cancel") {
		return Cancel
	}

	switch strings.ToLower(severity) {
	case "extreme":
		return Extreme
	case "severe":
		return Severe
	case "moderate":
		return Moderate
	case "minor":
		return Minor
	default:
		return Warning
	}
}

// WithSpace 마크(이모지) 뒤에 구분용 공백을 추가하여 반환합니다.
func (m Mark) WithSpace() string {
	if m == "" {
		return ""
	}
	return string(m) + " "
}

// String 마크의 순수 이모지 값을 문자열로 반환합니다.
func (m Mark) String() string {
	return string(m)
}
