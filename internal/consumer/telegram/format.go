package telegram

import (
	"fmt"
	"html"
	"strings"

	"github.com/darkkaiser/warn-bridge/internal/pkg/mark"
	"github.com/darkkaiser/warn-bridge/internal/service/alert"
	"github.com/darkkaiser/warn-bridge/pkg/strutil"
)

// formatAlert 경보 요약 메시지를 만듭니다.
func formatAlert(a *alert.PushAlert) string {
	var sb strings.Builder

	m := mark.ForAlert(deref(a.MsgType, ""), deref(a.Severity, ""))
	fmt.Fprintf(&sb, "%s<b>%s</b>\n", m.WithSpace(), html.EscapeString(deref(a.Headline, "(제목 없음)")))
	fmt.Fprintf(&sb, "발행: %s", html.EscapeString(a.ProviderName()))
	if a.Severity != nil && *a.Severity != "" {
		fmt.Fprintf(&sb, " / 심각도: %s", html.EscapeString(*a.Severity))
	}

	return sb.String()
}

// formatEvent 이벤트 상세 메시지를 만듭니다. withHeadline이면 제목을 함께 넣습니다.
func formatEvent(e *alert.EventDetail, withHeadline bool) string {
	var sb strings.Builder

	if withHeadline && e.Headline != nil {
		fmt.Fprintf(&sb, "%s<b>%s</b>\n\n", mark.Warning.WithSpace(), html.EscapeString(*e.Headline))
	}
	if e.Description != nil && *e.Description != "" {
		sb.WriteString(html.EscapeString(plainText(*e.Description)))
		sb.WriteString("\n\n")
	}
	if e.Instruction != nil && *e.Instruction != "" {
		fmt.Fprintf(&sb, "<b>Handlungsempfehlung</b>\n%s\n\n", html.EscapeString(plainText(*e.Instruction)))
	}
	fmt.Fprintf(&sb, `<a href="%s">%s</a>`, html.EscapeString(e.Link), html.EscapeString(e.Link))

	return sb.String()
}

// plainText 백엔드가 내려주는 HTML 조각을 텔레그램에 보낼 평문으로 바꿉니다.
func plainText(s string) string {
	return strutil.NormalizeMultiLineSpaces(strutil.StripHTMLTags(s))
}

func deref(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}
