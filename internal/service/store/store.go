// Package store 재시작 후에도 유지되어야 하는 브리지 상태 파일을 관리합니다.
//
// 상태 디렉토리에는 다음 세 파일이 저장되며, 다른 컴포넌트는 이 파일들을 직접 읽거나 쓰지 않습니다.
//   - nina_id.json: 클라이언트 식별자 (JSON 문자열)
//   - nina_config.json: 원격 설정 문서 (원문 그대로, 들여쓰기 적용)
//   - fcm_credentials.json: 전송 계층 자격 증명 (JSON 객체, 회전 시 전체 교체)
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/darkkaiser/warn-bridge/internal/service/nina"
	"github.com/darkkaiser/warn-bridge/pkg/concurrency"
	applog "github.com/darkkaiser/warn-bridge/pkg/log"
	"github.com/google/uuid"
)

// component 상태 저장소 로깅용 컴포넌트 이름
const component = "store"

const (
	IdentityFilename    = "nina_id.json"
	ConfigFilename      = "nina_config.json"
	CredentialsFilename = "fcm_credentials.json"
)

// FetchFunc 원격 설정 문서를 내려받는 함수입니다.
type FetchFunc func(ctx context.Context) ([]byte, error)

// FileStore 상태 디렉토리에 JSON 파일로 상태를 저장하는 저장소입니다.
type FileStore struct {
	dir string

	// locks 같은 파일에 대한 동시 쓰기를 직렬화합니다. (자격 증명 회전 콜백 등)
	locks *concurrency.KeyedMutex[string]
}

// NewFileStore 상태 디렉토리를 준비하고 FileStore를 생성합니다. dir이 비어 있으면 현재 디렉토리를 사용합니다.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		dir = "."
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, newErrDirectoryAccessFailed(dir, err)
	}
	if err := os.MkdirAll(absDir, 0755); err != nil {
		return nil, newErrDirectoryAccessFailed(absDir, err)
	}

	cleanupStaleTempFiles(absDir)

	return &FileStore{
		dir:   absDir,
		locks: concurrency.NewKeyedMutex[string](),
	}, nil
}

// Dir 상태 디렉토리의 절대 경로를 반환합니다.
func (s *FileStore) Dir() string {
	return s.dir
}

// LoadOrCreateClientID 저장된 클라이언트 식별자를 반환합니다.
// 파일이 없으면 새 UUID를 생성하여 저장하고, 파일이 있지만 UUID로 해석할 수 없으면 CorruptState 에러를 반환합니다.
func (s *FileStore) LoadOrCreateClientID() (string, error) {
	filename := s.path(IdentityFilename)

	data, found, err := s.read(filename)
	if err != nil {
		return "", err
	}

	if found {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return "", newErrCorruptState(filename, err)
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return "", newErrCorruptState(filename, err)
		}

		applog.WithComponentAndFields(component, applog.Fields{
			"client_id": id.String(),
		}).Debug("저장된 클라이언트 식별자를 불러왔습니다")

		return id.String(), nil
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return "", newErrWriteFailed(filename, err)
	}

	data, _ = json.Marshal(id.String())
	if err := s.write(filename, data); err != nil {
		return "", err
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"client_id": id.String(),
		"file":      filename,
	}).Info("새 클라이언트 식별자를 생성했습니다")

	return id.String(), nil
}

// LoadOrFetchRemoteConfig 캐시된 원격 설정을 반환합니다.
//
// 캐시 파일이 있으면 다시 내려받지 않으며, 필수 항목이 빠져 있으면 CorruptState 에러를 반환합니다.
// 파일이 없으면 fetch로 내려받아 검증한 뒤 원문을 들여쓰기하여 저장합니다.
func (s *FileStore) LoadOrFetchRemoteConfig(ctx context.Context, fetch FetchFunc) (*nina.RemoteConfig, error) {
	filename := s.path(ConfigFilename)

	data, found, err := s.read(filename)
	if err != nil {
		return nil, err
	}

	if found {
		rc, err := nina.ParseRemoteConfig(data)
		if err != nil {
			return nil, newErrCorruptState(filename, err)
		}
		return rc, nil
	}

	if fetch == nil {
		return nil, ErrNilFetchFunc
	}

	applog.WithComponent(component).Info("원격 설정 캐시 파일이 없습니다. 원격 설정을 내려받습니다")

	data, err = fetch(ctx)
	if err != nil {
		return nil, err
	}

	rc, err := nina.ParseRemoteConfig(data)
	if err != nil {
		return nil, newErrInvalidRemoteConfig(err)
	}

	var indented bytes.Buffer
	if err := json.Indent(&indented, data, "", "    "); err != nil {
		return nil, newErrInvalidRemoteConfig(err)
	}
	if err := s.write(filename, indented.Bytes()); err != nil {
		return nil, err
	}

	return rc, nil
}

// LoadTransportCredentials 저장된 전송 계층 자격 증명을 반환합니다.
// 파일이 없으면 빈 객체({})를 파일로 저장하고 빈 맵을 반환합니다.
func (s *FileStore) LoadTransportCredentials() (map[string]any, error) {
	filename := s.path(CredentialsFilename)

	data, found, err := s.read(filename)
	if err != nil {
		return nil, err
	}

	if !found {
		if err := s.write(filename, []byte("{}")); err != nil {
			return nil, err
		}
		return map[string]any{}, nil
	}

	var creds map[string]any
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, newErrCorruptState(filename, err)
	}
	if creds == nil {
		// "null"
		creds = map[string]any{}
	}

	return creds, nil
}

// SaveTransportCredentials 전송 계층 자격 증명 전체를 덮어씁니다. (병합하지 않음)
func (s *FileStore) SaveTransportCredentials(creds map[string]any) error {
	filename := s.path(CredentialsFilename)

	if creds == nil {
		creds = map[string]any{}
	}
	data, err := json.MarshalIndent(creds, "", "    ")
	if err != nil {
		return newErrWriteFailed(filename, err)
	}

	if err := s.write(filename, data); err != nil {
		return err
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"keys": len(creds),
	}).Info("전송 계층 자격 증명을 저장했습니다")

	return nil
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, name)
}

// read 파일을 읽습니다. 파일이 없으면 found=false와 nil 에러를 반환합니다.
func (s *FileStore) read(filename string) (data []byte, found bool, err error) {
	err = s.locks.WithLock(filename, func() error {
		var readErr error
		data, readErr = os.ReadFile(filename)
		return readErr
	})
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, false, nil
	case err != nil:
		return nil, false, newErrReadFailed(filename, err)
	}
	return data, true, nil
}

func (s *FileStore) write(filename string, data []byte) error {
	err := s.locks.WithLock(filename, func() error {
		return writeAtomic(filename, data)
	})
	if err != nil {
		return newErrWriteFailed(filename, err)
	}
	return nil
}
