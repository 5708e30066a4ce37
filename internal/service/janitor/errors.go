package janitor

import (
	apperrors "github.com/darkkaiser/warn-bridge/internal/pkg/errors"
)

var (
	// ErrNilPruner 정리 대상 저장소 없이 Janitor를 생성하려 할 때 반환됩니다.
	ErrNilPruner = apperrors.New(apperrors.Internal, "정리 대상 저장소가 지정되지 않았습니다")

	// ErrInvalidRetention 보관 기간이 0 이하일 때 반환됩니다.
	ErrInvalidRetention = apperrors.New(apperrors.InvalidInput, "보관 기간은 1일 이상이어야 합니다")
)

func newErrInvalidTimeSpec(spec string, err error) error {
	return apperrors.Wrapf(err, apperrors.InvalidInput, "잘못된 정리 스케줄입니다: '%s'", spec)
}
