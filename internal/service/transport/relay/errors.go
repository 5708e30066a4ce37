package relay

import (
	apperrors "github.com/darkkaiser/warn-bridge/internal/pkg/errors"
)

var (
	// ErrNotListening Start 이전에 푸시 메시지가 전달되었을 때 반환됩니다.
	ErrNotListening = apperrors.New(apperrors.Internal, "아직 푸시 메시지를 수신할 준비가 되지 않았습니다")

	// ErrAlreadyStarted Start가 두 번 이상 호출되었을 때 반환됩니다.
	ErrAlreadyStarted = apperrors.New(apperrors.Internal, "푸시 메시지 수신이 이미 시작되었습니다")

	// ErrNilHandler 메시지 처리 함수 없이 Start가 호출되었을 때 반환됩니다.
	ErrNilHandler = apperrors.New(apperrors.Internal, "푸시 메시지 처리 함수가 지정되지 않았습니다")
)

func newErrRegisterCanceled(err error) error {
	return apperrors.Wrap(err, apperrors.Registration, "릴레이로부터 푸시 토큰을 받기 전에 대기가 중단되었습니다")
}

func newErrCredentialsRejected(err error) error {
	return apperrors.Wrap(err, apperrors.System, "회전된 자격 증명을 저장하지 못했습니다")
}

func newErrListenFailed(addr string, err error) error {
	return apperrors.Wrapf(err, apperrors.System, "릴레이 서버를 '%s'에 바인딩할 수 없습니다", addr)
}
