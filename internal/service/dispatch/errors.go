package dispatch

import (
	apperrors "github.com/darkkaiser/warn-bridge/internal/pkg/errors"
)

var (
	// ErrEmptyCommand 실행할 명령줄이 지정되지 않았을 때 반환됩니다.
	ErrEmptyCommand = apperrors.New(apperrors.InvalidInput, "디스패치 명령줄이 비어 있습니다")
)

func newErrSpawnFailed(err error) error {
	return apperrors.Wrap(err, apperrors.System, "디스패치 프로세스를 실행할 수 없습니다")
}

func newErrWriteLine(line int, err error) error {
	return apperrors.Wrapf(err, apperrors.System, "디스패치 프로세스의 표준 입력에 %d번째 줄을 쓸 수 없습니다", line)
}

func newErrDetailFetch(err error) error {
	return apperrors.Wrap(err, apperrors.Gateway, "이벤트 상세 조회에 실패하여 두 번째 줄을 전달하지 못했습니다")
}

func newErrMalformedEvent(err error) error {
	return apperrors.Wrap(err, apperrors.Gateway, "이벤트 상세 문서를 한 줄로 변환할 수 없습니다")
}
