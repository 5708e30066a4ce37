package fetcher

import (
	"io"
	"mime"
	"net/http"
	"strings"

	"golang.org/x/net/html/charset"
)

// CharsetFetcher Content-Type 헤더에 UTF-8이 아닌 문자셋이 명시된 응답 본문을 UTF-8로 변환하는 미들웨어입니다.
type CharsetFetcher struct {
	delegate Fetcher
}

// 컴파일 타임에 인터페이스 구현 여부를 검증합니다.
var _ Fetcher = (*CharsetFetcher)(nil)

// NewCharsetFetcher 새로운 CharsetFetcher를 생성합니다.
func NewCharsetFetcher(delegate Fetcher) *CharsetFetcher {
	return &CharsetFetcher{delegate: delegate}
}

// Do HTTP 요청을 수행하고, 필요하면 응답 본문을 UTF-8 디코딩 Reader로 감쌉니다.
func (f *CharsetFetcher) Do(req *http.Request) (*http.Response, error) {
	resp, err := f.delegate.Do(req)
	if err != nil {
		return resp, err
	}

	contentType := resp.Header.Get("Content-Type")
	if !needsTranscoding(contentType) {
		return resp, nil
	}

	r, err := charset.NewReader(resp.Body, contentType)
	if err != nil {
		// 알 수 없는 문자셋은 원문 그대로 전달합니다.
		return resp, nil
	}

	resp.Body = struct {
		io.Reader
		io.Closer
	}{r, resp.Body}
	resp.Header.Del("Content-Length")
	resp.ContentLength = -1

	return resp, nil
}

// needsTranscoding Content-Type의 charset 파라미터가 UTF-8 이외의 값인지 확인합니다.
func needsTranscoding(contentType string) bool {
	if contentType == "" {
		return false
	}

	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	cs := strings.ToLower(strings.TrimSpace(params["charset"]))
	return cs != "" && cs != "utf-8" && cs != "utf8"
}
