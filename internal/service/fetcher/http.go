package fetcher

import (
	"net"
	"net/http"
	"time"
)

const (
	// defaultTimeout 요청 전체(응답 본문 수신 포함)에 대한 기본 타임아웃입니다.
	defaultTimeout = 30 * time.Second

	// defaultUserAgent 백엔드에 전달하는 User-Agent 헤더 값입니다.
	defaultUserAgent = "warn-bridge/1 (+https://warnung.bund.de)"
)

// HTTPFetcher 타임아웃과 User-Agent 자동 추가 기능이 내장된 HTTP 클라이언트 구현체입니다.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

// 컴파일 타임에 인터페이스 구현 여부를 검증합니다.
var _ Fetcher = (*HTTPFetcher)(nil)

// NewHTTPFetcher 주어진 타임아웃(0 이하이면 30초)이 적용된 HTTPFetcher를 생성합니다.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext
	transport.TLSHandshakeTimeout = 10 * time.Second
	transport.ResponseHeaderTimeout = timeout

	return &HTTPFetcher{
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		userAgent: defaultUserAgent,
	}
}

// Do HTTP 요청을 실행합니다. User-Agent 헤더가 없으면 기본값을 추가합니다.
func (h *HTTPFetcher) Do(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", h.userAgent)
	}
	return h.client.Do(req)
}
