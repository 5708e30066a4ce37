package fetcher

import (
	"context"
	"crypto/x509"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff"
	apperrors "github.com/darkkaiser/warn-bridge/internal/pkg/errors"
	applog "github.com/darkkaiser/warn-bridge/pkg/log"
)

const (
	// maxAllowedRetries 허용 가능한 최대 재시도 횟수입니다.
	maxAllowedRetries = 10

	defaultMinRetryDelay = 1 * time.Second
	defaultMaxRetryDelay = 30 * time.Second
)

// RetryFetcher HTTP 요청 실패 시 지수 백오프로 재시도하는 미들웨어입니다.
//
// 재시도 대상:
//   - 네트워크 오류 (연결 실패, 응답 헤더 타임아웃 등)
//   - 5xx 서버 에러 (501/505/511 제외), 429, 408
//
// 비멱등 메서드(POST, PATCH)와 본문을 재생성할 수 없는 요청은 재시도하지 않습니다.
// 서버가 Retry-After 헤더를 보내면 그 값을 대기 시간으로 사용하며, 최대 대기 시간을 넘으면 즉시 실패합니다.
type RetryFetcher struct {
	delegate Fetcher

	maxRetries    int
	minRetryDelay time.Duration
	maxRetryDelay time.Duration
}

// 컴파일 타임에 인터페이스 구현 여부를 검증합니다.
var _ Fetcher = (*RetryFetcher)(nil)

// NewRetryFetcher 새로운 RetryFetcher를 생성합니다. 범위를 벗어난 값은 보정됩니다.
func NewRetryFetcher(delegate Fetcher, maxRetries int, minRetryDelay, maxRetryDelay time.Duration) *RetryFetcher {
	maxRetries = max(0, min(maxRetries, maxAllowedRetries))

	if minRetryDelay <= 0 {
		minRetryDelay = defaultMinRetryDelay
	}
	if maxRetryDelay <= 0 {
		maxRetryDelay = defaultMaxRetryDelay
	}
	if maxRetryDelay < minRetryDelay {
		maxRetryDelay = minRetryDelay
	}

	return &RetryFetcher{
		delegate:      delegate,
		maxRetries:    maxRetries,
		minRetryDelay: minRetryDelay,
		maxRetryDelay: maxRetryDelay,
	}
}

// retryAfterBackOff 서버가 지정한 Retry-After 값이 있으면 지수 백오프 대신 그 값을 한 번 사용합니다.
type retryAfterBackOff struct {
	backoff.BackOff
	next time.Duration
	set  bool
}

func (b *retryAfterBackOff) NextBackOff() time.Duration {
	d := b.BackOff.NextBackOff()
	if d == backoff.Stop {
		return d
	}
	if b.set {
		d, b.set = b.next, false
	}
	return d
}

func (b *retryAfterBackOff) Reset() {
	b.set = false
	b.BackOff.Reset()
}

// Do HTTP 요청을 수행하며, 실패 시 설정된 정책에 따라 재시도합니다.
//
// 요청 객체의 Body가 있으면 재시도를 위해 GetBody가 설정되어 있어야 합니다.
func (f *RetryFetcher) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	maxRetries := f.maxRetries
	if !isIdempotentMethod(req.Method) {
		maxRetries = 0
	}
	if req.Body != nil && req.Body != http.NoBody && req.GetBody == nil && maxRetries > 0 {
		applog.WithComponentAndFields(component, applog.Fields{
			"url":    redactURL(req.URL),
			"method": req.Method,
		}).Warn("재시도 비활성화: 요청 본문 재생성 불가 (GetBody nil)")

		maxRetries = 0
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = f.minRetryDelay
	eb.MaxInterval = f.maxRetryDelay
	eb.MaxElapsedTime = 0

	ra := &retryAfterBackOff{BackOff: eb}
	policy := backoff.WithContext(backoff.WithMaxRetries(ra, uint64(maxRetries)), ctx)

	var (
		resp     *http.Response
		finalErr error
		attempt  int
	)

	operation := func() error {
		attempt++

		r := req
		if attempt > 1 && req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				finalErr = newErrGetBodyFailed(err)
				return nil
			}
			r = req.Clone(ctx)
			r.Body = body
		}

		res, err := f.delegate.Do(r)
		if err == nil {
			resp, finalErr = res, nil
			return nil
		}
		if res != nil {
			drainAndCloseBody(res.Body)
		}

		if !isRetriable(ctx, err) {
			finalErr = err
			return nil
		}

		if d, ok := retryAfterOf(err); ok {
			if d > f.maxRetryDelay {
				finalErr = newErrRetryAfterExceeded(d.String(), f.maxRetryDelay.String())
				return nil
			}
			ra.next, ra.set = d, true
		}

		finalErr = err
		return err
	}

	notify := func(err error, delay time.Duration) {
		fields := applog.Fields{
			"url":         redactURL(req.URL),
			"method":      req.Method,
			"attempt":     attempt,
			"max_retries": maxRetries,
			"delay":       delay.String(),
			"error":       err.Error(),
		}

		var statusErr *HTTPStatusError
		if errors.As(err, &statusErr) {
			fields["status_code"] = statusErr.StatusCode
		}

		applog.WithComponentAndFields(component, fields).Warn("재시도 대기 중: 일시적 오류로 인해 요청 재시도를 준비합니다")
	}

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if maxRetries == 0 {
			return nil, err
		}
		return nil, newErrMaxRetriesExceeded(err)
	}

	if finalErr != nil {
		return nil, finalErr
	}

	return resp, nil
}

// isIdempotentMethod 재시도해도 서버 상태가 중복 변경되지 않는 메서드인지 확인합니다.
func isIdempotentMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete, http.MethodOptions, http.MethodTrace:
		return true
	default:
		return false
	}
}

// isRetriable 발생한 에러가 일시적인 장애로 간주되어 재시도할 가치가 있는지 판단합니다.
func isRetriable(ctx context.Context, err error) bool {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return false
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return isRetriableStatus(statusErr.StatusCode)
	}

	// 체인 내부 미들웨어가 만든 도메인 에러(크기 제한 초과 등)는 재시도해도 결과가 같습니다.
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return false
	}

	var certErr *x509.UnknownAuthorityError
	if errors.As(err, &certErr) {
		return false
	}
	var hostErr x509.HostnameError
	if errors.As(err, &hostErr) {
		return false
	}

	return true
}

func isRetriableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests, http.StatusRequestTimeout:
		return true
	case http.StatusNotImplemented, http.StatusHTTPVersionNotSupported, http.StatusNetworkAuthenticationRequired:
		return false
	}
	return code >= 500
}

// retryAfterOf HTTPStatusError의 Retry-After 헤더(초 단위 또는 HTTP 날짜)를 대기 시간으로 변환합니다.
func retryAfterOf(err error) (time.Duration, bool) {
	var statusErr *HTTPStatusError
	if !errors.As(err, &statusErr) || statusErr.Header == nil {
		return 0, false
	}
	return parseRetryAfter(statusErr.Header.Get("Retry-After"))
}

func parseRetryAfter(value string) (time.Duration, bool) {
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}
	if t, err := http.ParseTime(value); err == nil {
		return max(0, time.Until(t)), true
	}
	return 0, false
}
