package telegram

import (
	apperrors "github.com/darkkaiser/warn-bridge/internal/pkg/errors"
)

var (
	// ErrEmptyInput 1번째 줄을 받기 전에 입력이 끝났을 때 반환됩니다.
	ErrEmptyInput = apperrors.New(apperrors.InvalidInput, "경보 요약(1번째 줄)을 받지 못했습니다")
)

func newErrBotInit(err error) error {
	return apperrors.Wrap(err, apperrors.InvalidInput, "텔레그램 봇 API 클라이언트 초기화에 실패했습니다. BotToken이 올바른지 확인해주세요")
}

func newErrSendFailed(err error) error {
	return apperrors.Wrap(err, apperrors.Gateway, "텔레그램 메시지 전송에 실패했습니다")
}

func newErrMalformedLine(line int, err error) error {
	return apperrors.Wrapf(err, apperrors.ParsingFailed, "%d번째 줄을 해석할 수 없습니다", line)
}
