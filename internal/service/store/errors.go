package store

import (
	"fmt"

	apperrors "github.com/darkkaiser/warn-bridge/internal/pkg/errors"
)

var (
	// ErrUnsafeIdentifier 경보 식별자가 보관 디렉토리를 벗어나는 경로를 만들 때 반환됩니다.
	ErrUnsafeIdentifier = apperrors.New(apperrors.InvalidInput, "보관 파일명으로 사용할 수 없는 경보 식별자입니다")

	// ErrNilFetchFunc 원격 설정 조회 함수 없이 LoadOrFetchRemoteConfig를 호출했을 때 반환됩니다.
	ErrNilFetchFunc = apperrors.New(apperrors.Internal, "원격 설정 조회 함수가 지정되지 않았습니다")
)

func newErrCorruptState(filename string, err error) error {
	return apperrors.Wrap(err, apperrors.CorruptState, fmt.Sprintf("상태 파일이 손상되었습니다. 확인 후 삭제하면 다시 생성됩니다: '%s'", filename))
}

func newErrReadFailed(filename string, err error) error {
	return apperrors.Wrap(err, apperrors.System, fmt.Sprintf("파일을 읽을 수 없습니다: '%s'", filename))
}

func newErrWriteFailed(filename string, err error) error {
	return apperrors.Wrap(err, apperrors.System, fmt.Sprintf("파일을 저장할 수 없습니다: '%s'", filename))
}

func newErrDirectoryAccessFailed(dir string, err error) error {
	return apperrors.Wrap(err, apperrors.System, fmt.Sprintf("디렉토리에 접근할 수 없습니다: '%s'", dir))
}

func newErrInvalidRemoteConfig(err error) error {
	return apperrors.Wrap(err, apperrors.Gateway, "내려받은 원격 설정 문서가 필수 항목을 포함하지 않습니다")
}
