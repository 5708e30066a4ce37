package fetcher

import (
	"time"
)

// Config Fetcher 체인을 구성하기 위한 설정입니다.
type Config struct {
	// Timeout HTTP 요청 전체(응답 본문 수신 포함)에 대한 타임아웃 (0 이하: 기본값 30초)
	Timeout time.Duration

	// MaxRetries 최대 재시도 횟수 (0: 재시도 안 함, 최대 10)
	MaxRetries int

	MinRetryDelay time.Duration
	MaxRetryDelay time.Duration

	// MaxBytes 응답 본문 최대 크기 (0: 기본값 16MB, NoLimit: 제한 없음)
	MaxBytes int64
}

// New 설정에 따라 다음 순서로 감싼 Fetcher 체인을 생성합니다. (바깥쪽부터)
//
//	RetryFetcher -> MaxBytesFetcher -> CharsetFetcher -> StatusCodeFetcher -> HTTPFetcher
func New(cfg Config) Fetcher {
	var f Fetcher = NewHTTPFetcher(cfg.Timeout)
	f = NewStatusCodeFetcher(f)
	f = NewCharsetFetcher(f)
	f = NewMaxBytesFetcher(f, cfg.MaxBytes)
	f = NewRetryFetcher(f, cfg.MaxRetries, cfg.MinRetryDelay, cfg.MaxRetryDelay)
	return f
}
