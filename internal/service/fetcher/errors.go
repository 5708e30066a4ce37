package fetcher

import (
	"fmt"

	apperrors "github.com/darkkaiser/warn-bridge/internal/pkg/errors"
)

var (
	// ErrMaxRetriesExceeded 재시도 가능한 오류가 최대 재시도 횟수를 넘어서까지 계속되었을 때의 원인 에러입니다.
	ErrMaxRetriesExceeded = apperrors.New(apperrors.Gateway, "최대 재시도 횟수를 초과했습니다")
)

func newErrInvalidRequest(url string, err error) error {
	return apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("HTTP 요청 객체를 생성할 수 없습니다: '%s'", url))
}

func newErrReadBody(url string, err error) error {
	return apperrors.Wrap(err, apperrors.Gateway, fmt.Sprintf("응답 본문을 읽는 중 오류가 발생했습니다: '%s'", url))
}

func newErrGetBodyFailed(err error) error {
	return apperrors.Wrap(err, apperrors.Internal, "재시도를 위한 요청 본문 재생성에 실패했습니다")
}

func newErrRetryAfterExceeded(retryAfter, maxDelay string) error {
	return apperrors.Newf(apperrors.Gateway, "서버가 요구한 재시도 대기 시간(%s)이 허용 최대값(%s)을 초과합니다", retryAfter, maxDelay)
}

func newErrMaxRetriesExceeded(lastErr error) error {
	return apperrors.Wrap(lastErr, apperrors.Gateway, ErrMaxRetriesExceeded.Error())
}

// NewErrResponseBodyTooLarge 응답 본문을 읽는 도중 크기 제한을 초과했을 때의 에러를 생성합니다.
func NewErrResponseBodyTooLarge(limit int64) error {
	return apperrors.Newf(apperrors.Gateway, "응답 본문 크기가 제한(%d 바이트)을 초과했습니다", limit)
}

func newErrResponseBodyTooLargeByContentLength(contentLength, limit int64) error {
	return apperrors.Newf(apperrors.Gateway, "응답 본문 크기(Content-Length: %d)가 제한(%d 바이트)을 초과했습니다", contentLength, limit)
}
