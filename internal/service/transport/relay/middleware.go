package relay

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"runtime"
	"strconv"
	"sync"
	"time"

	apperrors "github.com/darkkaiser/warn-bridge/internal/pkg/errors"
	applog "github.com/darkkaiser/warn-bridge/pkg/log"
	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

const (
	// HeaderAppKey 릴레이가 요청마다 전달하는 공유 키 헤더
	HeaderAppKey = "X-App-Key"

	// stackBufferSize panic 발생 시 스택 트레이스 버퍼 크기 (4KB)
	stackBufferSize = 4 << 10

	// maxTrackedIPs 요청 제한 상태를 보관하는 최대 IP 개수
	maxTrackedIPs = 10000
)

// panicRecovery 핸들러의 panic을 복구하여 500 응답으로 바꿉니다.
func panicRecovery() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			defer func() {
				if r := recover(); r != nil {
					err, ok := r.(error)
					if !ok {
						err = apperrors.New(apperrors.Internal, fmt.Sprintf("%v", r))
					}

					stack := make([]byte, stackBufferSize)
					length := runtime.Stack(stack, false)

					applog.WithComponentAndFields(component, applog.Fields{
						"error":      err,
						"stack":      string(stack[:length]),
						"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
					}).Error("PANIC RECOVERED")

					c.Error(err)
				}
			}()
			return next(c)
		}
	}
}

// httpLogger 요청 1건마다 구조화된 접근 로그를 남깁니다.
func httpLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			if err := next(c); err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()
			latency := time.Since(start)

			applog.WithComponentAndFields(component, applog.Fields{
				"method":        req.Method,
				"path":          req.URL.Path,
				"remote_ip":     c.RealIP(),
				"status":        res.Status,
				"bytes_out":     strconv.FormatInt(res.Size, 10),
				"latency_human": latency.String(),
				"request_id":    res.Header().Get(echo.HeaderXRequestID),
			}).Debug("HTTP 요청")

			return nil
		}
	}
}

// ipRateLimiter IP 주소별 토큰 버킷을 관리합니다.
type ipRateLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

func newIPRateLimiter(requestsPerSecond float64, burst int) *ipRateLimiter {
	return &ipRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(requestsPerSecond),
		burst:    burst,
	}
}

func (i *ipRateLimiter) getLimiter(ip string) *rate.Limiter {
	i.mu.RLock()
	limiter, exists := i.limiters[ip]
	i.mu.RUnlock()

	if exists {
		return limiter
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if limiter, exists = i.limiters[ip]; exists {
		return limiter
	}

	// 추적 IP가 상한에 도달하면 처음부터 다시 채웁니다.
	if len(i.limiters) >= maxTrackedIPs {
		clear(i.limiters)
	}

	limiter = rate.NewLimiter(i.rate, i.burst)
	i.limiters[ip] = limiter

	return limiter
}

// rateLimiting IP 기반 요청 제한 미들웨어를 반환합니다.
//
// Panics:
//   - requestsPerSecond 또는 burst가 0 이하인 경우
func rateLimiting(requestsPerSecond float64, burst int) echo.MiddlewareFunc {
	if requestsPerSecond <= 0 {
		panic("[rateLimiting] requestsPerSecond는 양수여야 합니다")
	}
	if burst <= 0 {
		panic("[rateLimiting] burst는 양수여야 합니다")
	}

	limiter := newIPRateLimiter(requestsPerSecond, burst)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			if !limiter.getLimiter(ip).Allow() {
				applog.WithComponentAndFields(component, applog.Fields{
					"remote_ip": ip,
					"path":      c.Request().URL.Path,
				}).Warn("Rate limit 초과")

				c.Response().Header().Set("Retry-After", "1")
				return echo.NewHTTPError(http.StatusTooManyRequests, "요청이 너무 많습니다. 잠시 후 다시 시도해 주세요")
			}
			return next(c)
		}
	}
}

// appKeyAuth X-App-Key 헤더를 검사합니다. appKey가 비어 있으면 인증을 생략합니다.
func appKeyAuth(appKey string) echo.MiddlewareFunc {
	expected := []byte(appKey)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if len(expected) == 0 {
				return next(c)
			}

			got := []byte(c.Request().Header.Get(HeaderAppKey))
			if subtle.ConstantTimeCompare(got, expected) != 1 {
				applog.WithComponentAndFields(component, applog.Fields{
					"remote_ip": c.RealIP(),
					"app_key":   applog.MaskSensitiveData(string(got)),
				}).Warn("유효하지 않은 앱 키로 접근이 거부되었습니다")

				return echo.NewHTTPError(http.StatusUnauthorized, "유효하지 않은 앱 키입니다")
			}
			return next(c)
		}
	}
}
