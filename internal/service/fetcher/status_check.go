package fetcher

import (
	"io"
	"net/http"
	"slices"
	"strings"

	apperrors "github.com/darkkaiser/warn-bridge/internal/pkg/errors"
)

// maxBodySnippetBytes 에러 메시지에 포함할 응답 본문의 최대 크기 (4KB)
const maxBodySnippetBytes = 4 * 1024

// StatusCodeFetcher 허용되지 않은 HTTP 상태 코드를 HTTPStatusError로 변환하는 미들웨어입니다.
//
// 허용 상태 코드를 지정하지 않으면 2xx 전체를 성공으로 간주합니다.
type StatusCodeFetcher struct {
	delegate        Fetcher
	allowedStatuses []int
}

// 컴파일 타임에 인터페이스 구현 여부를 검증합니다.
var _ Fetcher = (*StatusCodeFetcher)(nil)

// NewStatusCodeFetcher 2xx 응답만 통과시키는 StatusCodeFetcher를 생성합니다.
func NewStatusCodeFetcher(delegate Fetcher) *StatusCodeFetcher {
	return &StatusCodeFetcher{delegate: delegate}
}

// NewStatusCodeFetcherWithOptions 지정된 상태 코드만 통과시키는 StatusCodeFetcher를 생성합니다.
func NewStatusCodeFetcherWithOptions(delegate Fetcher, allowedStatuses ...int) *StatusCodeFetcher {
	return &StatusCodeFetcher{
		delegate:        delegate,
		allowedStatuses: allowedStatuses,
	}
}

// Do HTTP 요청을 수행하고 응답 상태 코드를 검사합니다.
func (f *StatusCodeFetcher) Do(req *http.Request) (*http.Response, error) {
	resp, err := f.delegate.Do(req)
	if err != nil {
		return resp, err
	}

	if statusErr := checkResponseStatus(req, resp, f.allowedStatuses...); statusErr != nil {
		drainAndCloseBody(resp.Body)
		return nil, statusErr
	}

	return resp, nil
}

// checkResponseStatus 응답 상태 코드가 허용 범위를 벗어나면 본문 일부를 포함한 HTTPStatusError를 반환합니다.
func checkResponseStatus(req *http.Request, resp *http.Response, allowedStatuses ...int) error {
	if len(allowedStatuses) == 0 {
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}
	} else if slices.Contains(allowedStatuses, resp.StatusCode) {
		return nil
	}

	var bodySnippet string
	if resp.Body != nil {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodySnippetBytes))
		bodySnippet = strings.TrimSpace(string(b))
	}

	return &HTTPStatusError{
		StatusCode:  resp.StatusCode,
		Status:      resp.Status,
		URL:         redactURL(req.URL),
		Header:      redactHeaders(resp.Header),
		BodySnippet: bodySnippet,
		Cause:       apperrors.Newf(apperrors.Gateway, "HTTP 요청이 실패했습니다. 상태 코드: %d", resp.StatusCode),
	}
}
