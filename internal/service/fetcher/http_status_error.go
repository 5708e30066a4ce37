package fetcher

import (
	"fmt"
	"net/http"
)

// HTTPStatusError 허용되지 않은 HTTP 상태 코드를 수신했을 때 응답 정보를 담는 구조화된 에러입니다.
//
// 호출자는 errors.As로 꺼내어 상태 코드별로 분기할 수 있습니다.
// (예: 구독 설정 조회 시 404는 "아직 설정되지 않음"을 의미)
type HTTPStatusError struct {
	StatusCode int
	Status     string

	// URL 민감한 정보가 마스킹된 요청 URL
	URL string

	// Header 인증 관련 헤더가 마스킹된 응답 헤더
	Header http.Header

	// BodySnippet 응답 본문의 앞부분 (최대 4KB)
	BodySnippet string

	// Cause 에러 분류를 위한 apperrors 원인 에러
	Cause error
}

// Error 표준 error 인터페이스를 구현합니다.
func (e *HTTPStatusError) Error() string {
	msg := fmt.Sprintf("HTTP %d (%s)", e.StatusCode, e.Status)
	if e.URL != "" {
		msg += fmt.Sprintf(" URL: %s", e.URL)
	}
	if e.BodySnippet != "" {
		msg += fmt.Sprintf(", Body: %s", e.BodySnippet)
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

// Unwrap 원인 에러를 반환합니다.
func (e *HTTPStatusError) Unwrap() error {
	return e.Cause
}
