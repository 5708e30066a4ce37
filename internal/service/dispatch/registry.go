package dispatch

import (
	"sync"
	"time"
)

// defaultRegistrySize 진단용으로 보관하는 최근 프로세스 핸들 수
const defaultRegistrySize = 64

// Handle 디스패치로 실행된 프로세스의 진단 정보입니다.
type Handle struct {
	AlertID   string    `json:"alert_id"`
	PID       int       `json:"pid"`
	StartedAt time.Time `json:"started_at"`

	// ExitedAt 종료 시각 (실행 중이면 zero)
	ExitedAt time.Time `json:"exited_at,omitzero"`
	ExitCode int       `json:"exit_code"`
	Error    string    `json:"error,omitempty"`
}

// Running 프로세스가 아직 종료되지 않았는지 여부
func (h Handle) Running() bool {
	return h.ExitedAt.IsZero()
}

// Registry 최근 실행된 프로세스 핸들을 고정 크기로 보관합니다. 가득 차면 가장 오래된 핸들부터 밀려납니다.
type Registry struct {
	mu      sync.Mutex
	size    int
	handles []*Handle
}

// NewRegistry 최대 size개의 핸들을 보관하는 Registry를 생성합니다.
func NewRegistry(size int) *Registry {
	if size <= 0 {
		size = defaultRegistrySize
	}
	return &Registry{size: size}
}

func (r *Registry) add(h *Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.handles) == r.size {
		copy(r.handles, r.handles[1:])
		r.handles = r.handles[:r.size-1]
	}
	r.handles = append(r.handles, h)
}

func (r *Registry) finish(h *Handle, exitCode int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	h.ExitedAt = time.Now()
	h.ExitCode = exitCode
	if err != nil {
		h.Error = err.Error()
	}
}

// Snapshot 보관 중인 핸들의 복사본을 오래된 순서로 반환합니다.
func (r *Registry) Snapshot() []Handle {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Handle, len(r.handles))
	for i, h := range r.handles {
		out[i] = *h
	}
	return out
}
