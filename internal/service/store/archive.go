package store

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/darkkaiser/warn-bridge/pkg/concurrency"
	applog "github.com/darkkaiser/warn-bridge/pkg/log"
)

const (
	pushFilePrefix  = "push_"
	eventFilePrefix = "event_"
	archiveFileExt  = ".json"
)

// Archive 수신한 푸시 문서와 이벤트 상세 문서를 received/ 디렉토리에 보관합니다.
type Archive struct {
	dir   string
	locks *concurrency.KeyedMutex[string]
}

// NewArchive 보관 디렉토리를 사용하는 Archive를 생성합니다. 디렉토리는 첫 저장 시 생성됩니다.
func NewArchive(dir string) (*Archive, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, newErrDirectoryAccessFailed(dir, err)
	}

	return &Archive{
		dir:   absDir,
		locks: concurrency.NewKeyedMutex[string](),
	}, nil
}

// Dir 보관 디렉토리의 절대 경로를 반환합니다.
func (a *Archive) Dir() string {
	return a.dir
}

// SavePush 푸시 문서를 push_{id}.json으로 저장합니다.
func (a *Archive) SavePush(id string, doc []byte) (string, error) {
	return a.save(pushFilePrefix, id, doc)
}

// SaveEvent 이벤트 상세 문서를 event_{id}.json으로 저장합니다.
func (a *Archive) SaveEvent(id string, doc []byte) (string, error) {
	return a.save(eventFilePrefix, id, doc)
}

func (a *Archive) save(prefix, id string, doc []byte) (string, error) {
	filename, err := a.resolveSafePath(prefix + id + archiveFileExt)
	if err != nil {
		return "", err
	}

	var indented bytes.Buffer
	if err := json.Indent(&indented, doc, "", "    "); err != nil {
		// JSON이 아니면 원문 그대로 보관합니다.
		indented.Reset()
		indented.Write(doc)
	}

	err = a.locks.WithLock(filename, func() error {
		return writeAtomic(filename, indented.Bytes())
	})
	if err != nil {
		return "", newErrWriteFailed(filename, err)
	}

	return filename, nil
}

// resolveSafePath 보관 디렉토리를 벗어나지 않는 파일 경로인지 검증합니다.
func (a *Archive) resolveSafePath(name string) (string, error) {
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") || strings.ContainsRune(name, 0) {
		return "", ErrUnsafeIdentifier
	}

	cleanPath := filepath.Clean(filepath.Join(a.dir, name))
	rel, err := filepath.Rel(a.dir, cleanPath)
	if err != nil || strings.HasPrefix(rel, "..") || filepath.Dir(cleanPath) != a.dir {
		return "", ErrUnsafeIdentifier
	}

	return cleanPath, nil
}

// Prune 수정 시각이 cutoff보다 오래된 보관 파일(push_*.json, event_*.json)을 삭제하고 삭제한 개수를 반환합니다.
// 보관 디렉토리가 아직 없으면 0을 반환합니다.
func (a *Archive) Prune(cutoff time.Time) (int, error) {
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, newErrDirectoryAccessFailed(a.dir, err)
	}

	removed := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !isArchiveFile(name) {
			continue
		}

		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}

		fullPath := filepath.Join(a.dir, name)
		if err := os.Remove(fullPath); err != nil {
			applog.WithComponentAndFields(component, applog.Fields{
				"file":  fullPath,
				"error": err,
			}).Warn("보관 파일 삭제 실패")
			continue
		}
		removed++
	}

	return removed, nil
}

func isArchiveFile(name string) bool {
	if !strings.HasSuffix(name, archiveFileExt) {
		return false
	}
	return strings.HasPrefix(name, pushFilePrefix) || strings.HasPrefix(name, eventFilePrefix)
}
