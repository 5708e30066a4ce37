package mark

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

// TestMarks_Integrity 정의된 마크 상수가 비어 있지 않고, 공백 없는 올바른 UTF-8인지 검증합니다.
func TestMarks_Integrity(t *testing.T) {
	t.Parallel()

	for _, m := range []Mark{Extreme, Severe, Moderate, Minor, Warning, Cancel} {
		assert.NotEmpty(t, m.String())
		assert.Equal(t, strings.TrimSpace(m.String()), m.String())
		assert.True(t, utf8.ValidString(m.String()))
	}
}

func TestForAlert(t *testing.T) {
	t.Parallel()

	tests := []struct {
		msgType  string
		severity string
		want     Mark
	}{
		{msgType: "Alert", severity: "Extreme", want: Extreme},
		{msgType: "Update", severity: "severe", want: Severe},
		{msgType: "Alert", severity: "MODERATE", want: Moderate},
		{msgType: "Alert", severity: "Minor", want: Minor},
		{msgType: "Alert", severity: "Unknown", want: Warning},
		{msgType: "", severity: "", want: Warning},
		{msgType: "cancel", severity: "Extreme", want: Cancel},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ForAlert(tt.msgType, tt.severity), "msgType=%q severity=%q", tt.msgType, tt.severity)
	}
}

func TestMark_WithSpace(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "🚨 ", Extreme.WithSpace())
	assert.Equal(t, "", Mark("").WithSpace())
}
