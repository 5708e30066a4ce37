// Package dispatch 경보 1건마다 외부 소비자 프로세스를 실행하고, 표준 입력으로 두 줄의 JSON 문서를 전달합니다.
//
// 첫 번째 줄은 경보 요약(PushAlert)이고, 두 번째 줄은 백엔드가 반환한 이벤트 상세 문서 원문입니다.
// 두 번째 줄은 첫 번째 줄을 쓴 뒤에 조회하며, 조회에 실패하면 첫 번째 줄만 전달된 채로 입력 스트림이 닫힙니다.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"sync"
	"time"

	apperrors "github.com/darkkaiser/warn-bridge/internal/pkg/errors"
	"github.com/darkkaiser/warn-bridge/internal/service/alert"
	"github.com/darkkaiser/warn-bridge/pkg/concurrency"
	applog "github.com/darkkaiser/warn-bridge/pkg/log"
)

// component 디스패치 파이프라인 로깅용 컴포넌트 이름
const component = "dispatch.pipeline"

// EventFetcher 경보 식별자로 이벤트 상세 문서 원문을 조회합니다.
type EventFetcher interface {
	FetchEvent(ctx context.Context, id string) ([]byte, error)
}

// Archiver 수신한 문서를 디스크에 보관합니다.
type Archiver interface {
	SavePush(id string, doc []byte) (string, error)
	SaveEvent(id string, doc []byte) (string, error)
}

// Pipeline 디스패치 파이프라인입니다.
//
// 같은 경보 식별자에 대한 디스패치는 직렬화되며, 서로 다른 식별자는 동시에 처리할 수 있습니다.
type Pipeline struct {
	commandLine string
	commander   Commander
	events      EventFetcher

	// archive nil이면 수신 문서를 보관하지 않습니다.
	archive Archiver

	locks    *concurrency.KeyedMutex[string]
	registry *Registry

	// reapers 프로세스 종료를 기다리는 백그라운드 고루틴
	reapers sync.WaitGroup
}

// Option Pipeline 생성 옵션
type Option func(*Pipeline)

// WithCommander 프로세스 생성 방식을 지정합니다. (기본값: ShellCommander)
func WithCommander(c Commander) Option {
	return func(p *Pipeline) { p.commander = c }
}

// WithArchive 수신 문서 보관소를 지정합니다.
func WithArchive(a Archiver) Option {
	return func(p *Pipeline) { p.archive = a }
}

// WithRegistrySize 진단용으로 보관할 프로세스 핸들 수를 지정합니다.
func WithRegistrySize(n int) Option {
	return func(p *Pipeline) { p.registry = NewRegistry(n) }
}

// NewPipeline 새로운 Pipeline을 생성합니다.
func NewPipeline(commandLine string, events EventFetcher, opts ...Option) (*Pipeline, error) {
	if commandLine == "" {
		return nil, ErrEmptyCommand
	}

	p := &Pipeline{
		commandLine: commandLine,
		commander:   ShellCommander{},
		events:      events,
		locks:       concurrency.NewKeyedMutex[string](),
		registry:    NewRegistry(defaultRegistrySize),
	}
	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// Registry 최근 실행된 프로세스 핸들 보관소를 반환합니다.
func (p *Pipeline) Registry() *Registry {
	return p.registry
}

// HandlePush 전송 계층이 전달한 푸시 페이로드 1건을 처리합니다.
//
// 해석에 실패한 페이로드는 ParsingFailed 에러를 반환하고 버립니다.
// 허용되지 않은 발행 기관의 경보는 로그만 남기고 nil을 반환합니다.
// 디스패치 중 발생한 에러와 패닉은 로그로 남기며 호출자에게 전파하지 않습니다.
func (p *Pipeline) HandlePush(ctx context.Context, payload []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			applog.WithComponentAndFields(component, applog.Fields{
				"panic": r,
			}).Error("푸시 메시지 처리 중 패닉이 발생했습니다")
			err = nil
		}
	}()

	applog.WithComponentAndFields(component, applog.Fields{
		"payload": string(payload),
	}).Debug("푸시 메시지 수신")

	a, err := alert.ParsePushPayload(payload)
	if err != nil {
		applog.WithComponent(component).WithError(err).Error("푸시 메시지를 해석할 수 없어 버립니다")
		return err
	}

	fields := applog.Fields{
		"alert_id": a.ID,
		"provider": a.ProviderName(),
	}

	if !a.IsAccepted() {
		applog.WithComponentAndFields(component, fields).Warn("허용되지 않은 발행 기관의 푸시 메시지를 무시합니다")
		return nil
	}

	applog.WithComponentAndFields(component, fields).Info("푸시 메시지 수신")

	// 디스패치는 도중에 취소하지 않습니다.
	if dispatchErr := p.Dispatch(context.WithoutCancel(ctx), a); dispatchErr != nil {
		applog.WithComponentAndFields(component, fields).WithError(dispatchErr).Error("디스패치 실패")
	}

	return nil
}

// Dispatch 소비자 프로세스를 실행하고 경보 요약과 이벤트 상세 문서를 차례로 전달합니다.
//
// 프로세스 종료는 기다리지 않으며, 입력 스트림은 성공 여부와 관계없이 반환 전에 닫힙니다.
func (p *Pipeline) Dispatch(ctx context.Context, a *alert.PushAlert) error {
	return p.locks.WithLock(a.ID, func() error {
		return p.dispatch(ctx, a)
	})
}

func (p *Pipeline) dispatch(ctx context.Context, a *alert.PushAlert) error {
	fields := applog.Fields{"alert_id": a.ID}

	line1, err := a.MarshalLine()
	if err != nil {
		return apperrors.Wrap(err, apperrors.Internal, "경보 요약을 직렬화할 수 없습니다")
	}

	cmd := p.commander.NewCommand(p.commandLine)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return newErrSpawnFailed(err)
	}
	if err := cmd.Start(); err != nil {
		stdin.Close()
		return newErrSpawnFailed(err)
	}
	defer stdin.Close()

	h := &Handle{
		AlertID:   a.ID,
		PID:       cmd.Pid(),
		StartedAt: time.Now(),
	}
	p.registry.add(h)
	p.reap(cmd, h)

	fields["pid"] = h.PID
	applog.WithComponentAndFields(component, fields).Debug("디스패치 프로세스 실행")

	// 1. 경보 요약
	if _, err := stdin.Write(line1); err != nil {
		return newErrWriteLine(1, err)
	}

	if p.archive != nil {
		if path, err := p.archive.SavePush(a.ID, a.Document()); err != nil {
			applog.WithComponentAndFields(component, fields).WithError(err).Warn("푸시 문서 보관 실패")
		} else {
			applog.WithComponentAndFields(component, fields).WithField("file", path).Debug("푸시 문서 보관")
		}
	}

	// 2. 이벤트 상세 문서 (첫 번째 줄을 쓴 뒤에 조회)
	doc, err := p.events.FetchEvent(ctx, a.ID)
	if err != nil {
		return newErrDetailFetch(err)
	}

	if p.archive != nil {
		if path, err := p.archive.SaveEvent(a.ID, doc); err != nil {
			applog.WithComponentAndFields(component, fields).WithError(err).Warn("이벤트 문서 보관 실패")
		} else {
			applog.WithComponentAndFields(component, fields).WithField("file", path).Debug("이벤트 문서 보관")
		}
	}

	var line2 bytes.Buffer
	if err := json.Compact(&line2, doc); err != nil {
		return newErrMalformedEvent(err)
	}
	line2.WriteByte('\n')

	if _, err := line2.WriteTo(stdin); err != nil {
		return newErrWriteLine(2, err)
	}

	applog.WithComponentAndFields(component, fields).Info("디스패치 완료")

	return nil
}

// reap 백그라운드에서 프로세스 종료를 기다려 결과를 기록합니다.
func (p *Pipeline) reap(cmd Command, h *Handle) {
	p.reapers.Add(1)
	go func() {
		defer p.reapers.Done()

		err := cmd.Wait()

		exitCode := 0
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else if err != nil {
			exitCode = -1
		}
		p.registry.finish(h, exitCode, err)

		entry := applog.WithComponentAndFields(component, applog.Fields{
			"alert_id":  h.AlertID,
			"pid":       h.PID,
			"exit_code": exitCode,
			"elapsed":   time.Since(h.StartedAt).Round(time.Millisecond).String(),
		})
		if err != nil {
			entry.WithError(err).Warn("디스패치 프로세스가 비정상 종료되었습니다")
			return
		}
		entry.Debug("디스패치 프로세스 종료")
	}()
}

// String 로그 출력용 문자열을 반환합니다.
func (p *Pipeline) String() string {
	return fmt.Sprintf("Pipeline(command=%q, persist=%t)", p.commandLine, p.archive != nil)
}

