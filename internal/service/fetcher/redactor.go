package fetcher

import (
	"net/http"
	"net/url"
	"strings"
)

// sensitiveQueryKeys 로그나 에러 메시지에 원문을 남기지 않을 쿼리 파라미터 이름 목록입니다.
var sensitiveQueryKeys = []string{"token", "key", "password", "secret"}

// redactURL URL에 포함된 사용자 정보의 비밀번호와 민감한 쿼리 파라미터 값을 마스킹합니다.
func redactURL(u *url.URL) string {
	if u == nil {
		return ""
	}

	redacted := *u
	if redacted.User != nil {
		if _, hasPassword := redacted.User.Password(); hasPassword {
			redacted.User = url.UserPassword(redacted.User.Username(), "xxxxx")
		}
	}

	if redacted.RawQuery != "" {
		query := redacted.Query()
		for key := range query {
			for _, sensitive := range sensitiveQueryKeys {
				if strings.Contains(strings.ToLower(key), sensitive) {
					query.Set(key, "xxxxx")
					break
				}
			}
		}
		redacted.RawQuery = query.Encode()
	}

	return redacted.String()
}

// redactHeaders 인증 관련 헤더 값을 마스킹한 복사본을 반환합니다.
func redactHeaders(h http.Header) http.Header {
	if h == nil {
		return nil
	}

	redacted := h.Clone()
	for _, key := range []string{"Authorization", "Proxy-Authorization", "Cookie", "Set-Cookie"} {
		if redacted.Get(key) != "" {
			redacted.Set(key, "***")
		}
	}
	return redacted
}
