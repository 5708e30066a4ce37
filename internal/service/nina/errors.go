package nina

import (
	"fmt"

	apperrors "github.com/darkkaiser/warn-bridge/internal/pkg/errors"
)

var (
	// ErrEmptyToken 푸시 토큰 없이 구독 설정을 시도했을 때 반환됩니다.
	ErrEmptyToken = apperrors.New(apperrors.InvalidInput, "푸시 토큰이 비어 있습니다")

	// ErrEmptyClientID 클라이언트 식별자 없이 구독 설정을 시도했을 때 반환됩니다.
	ErrEmptyClientID = apperrors.New(apperrors.InvalidInput, "클라이언트 식별자가 비어 있습니다")

	// ErrNilRemoteConfig 인증 정보(RemoteConfig) 없이 구독 설정을 시도했을 때 반환됩니다.
	ErrNilRemoteConfig = apperrors.New(apperrors.InvalidInput, "원격 설정(RemoteConfig)이 없습니다")
)

func newErrGatewayRequest(what string, err error) error {
	return apperrors.Wrap(err, apperrors.Gateway, fmt.Sprintf("%s 요청이 실패했습니다", what))
}

func newErrGatewayMalformed(what, details string) error {
	return apperrors.Newf(apperrors.Gateway, "%s 응답 형식이 올바르지 않습니다: %s", what, details)
}

func newErrRegistrationFailed(err error) error {
	return apperrors.Wrap(err, apperrors.Registration, "푸시 주소 등록에 실패했습니다")
}

func newErrPreferenceUpdateFailed(err error) error {
	return apperrors.Wrap(err, apperrors.PreferenceUpdate, "구독 설정 갱신에 실패했습니다")
}

func newErrInvalidRemoteConfig(missing []string) error {
	return apperrors.Newf(apperrors.ParsingFailed, "원격 설정에 필수 항목이 없습니다: %v", missing)
}
