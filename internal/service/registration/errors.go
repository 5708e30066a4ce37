package registration

import (
	apperrors "github.com/darkkaiser/warn-bridge/internal/pkg/errors"
)

var (
	// ErrAlreadyRunning Run이 이미 실행 중일 때 반환됩니다.
	ErrAlreadyRunning = apperrors.New(apperrors.Internal, "등록 컨트롤러가 이미 실행 중입니다")
)

func newErrTransportCreate(err error) error {
	return apperrors.Wrap(err, apperrors.Internal, "푸시 전송 계층을 생성하지 못했습니다")
}

func newErrTransportStart(err error) error {
	return apperrors.Wrap(err, apperrors.Internal, "푸시 메시지 수신을 시작하지 못했습니다")
}
