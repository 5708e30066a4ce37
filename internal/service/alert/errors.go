package alert

import (
	apperrors "github.com/darkkaiser/warn-bridge/internal/pkg/errors"
)

var (
	// ErrMissingIdentifier 푸시 페이로드 또는 이벤트 문서에 식별자가 없을 때 반환됩니다.
	ErrMissingIdentifier = apperrors.New(apperrors.ParsingFailed, "식별자(id)가 없는 문서입니다")
)

func newErrMalformedPayload(err error) error {
	return apperrors.Wrap(err, apperrors.ParsingFailed, "푸시 페이로드가 올바른 JSON 형식이 아닙니다")
}

func newErrMalformedCustom() error {
	return apperrors.New(apperrors.ParsingFailed, "푸시 페이로드의 data.custom 필드가 올바른 JSON 문서가 아닙니다")
}

func newErrMalformedEvent() error {
	return apperrors.New(apperrors.ParsingFailed, "이벤트 문서가 올바른 JSON 객체가 아닙니다")
}

func newErrFieldNotString(path string) error {
	return apperrors.Newf(apperrors.ParsingFailed, "'%s' 필드는 문자열이어야 합니다", path)
}
