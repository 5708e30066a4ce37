// Package janitor 수신 문서 보관 디렉토리를 Cron 스케줄에 맞춰 정리합니다.
package janitor

import (
	"context"
	"sync"
	"time"

	"github.com/darkkaiser/warn-bridge/internal/service"
	"github.com/darkkaiser/warn-bridge/pkg/cronx"
	applog "github.com/darkkaiser/warn-bridge/pkg/log"
	"github.com/robfig/cron/v3"
)

// component 보관 문서 정리 서비스의 로깅용 컴포넌트 이름
const component = "janitor.service"

// Pruner cutoff 이전에 저장된 문서를 삭제하고 삭제한 개수를 반환합니다.
type Pruner interface {
	Prune(cutoff time.Time) (int, error)
}

// Janitor 보관 기간이 지난 push_*.json, event_*.json 파일을 주기적으로 삭제하는 서비스입니다.
type Janitor struct {
	pruner    Pruner
	timeSpec  string
	retention time.Duration

	// now 테스트에서 현재 시각을 고정하기 위해 교체합니다.
	now func() time.Time

	cron *cron.Cron

	running   bool
	runningMu sync.Mutex
}

// 컴파일 타임에 인터페이스 구현 여부를 검증합니다.
var _ service.Service = (*Janitor)(nil)

// New Janitor를 생성합니다. timeSpec은 초 단위를 포함한 6개 필드 Cron 표현식입니다.
func New(pruner Pruner, timeSpec string, retentionDays int) (*Janitor, error) {
	if pruner == nil {
		return nil, ErrNilPruner
	}
	if retentionDays <= 0 {
		return nil, ErrInvalidRetention
	}
	if err := cronx.Validate(timeSpec); err != nil {
		return nil, newErrInvalidTimeSpec(timeSpec, err)
	}

	return &Janitor{
		pruner:    pruner,
		timeSpec:  timeSpec,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		now:       time.Now,
	}, nil
}

// Start Cron 엔진을 시작합니다. ctx가 취소되면 실행 중인 정리 작업이 끝날 때까지 기다린 뒤 wg.Done()을 호출합니다.
func (j *Janitor) Start(ctx context.Context, wg *sync.WaitGroup) error {
	j.runningMu.Lock()
	defer j.runningMu.Unlock()

	if j.running {
		wg.Done()
		applog.WithComponent(component).Warn("보관 문서 정리 서비스가 이미 실행 중입니다")
		return nil
	}

	logger := cron.VerbosePrintfLogger(applog.StandardLogger())
	j.cron = cron.New(
		cron.WithParser(cronx.StandardParser()),
		cron.WithLogger(logger),
		cron.WithChain(
			cron.Recover(logger),
			cron.SkipIfStillRunning(logger),
		),
	)

	if _, err := j.cron.AddFunc(j.timeSpec, func() { j.Sweep() }); err != nil {
		wg.Done()
		return newErrInvalidTimeSpec(j.timeSpec, err)
	}

	j.cron.Start()
	j.running = true

	applog.WithComponentAndFields(component, applog.Fields{
		"time_spec": j.timeSpec,
		"retention": j.retention.String(),
	}).Info("보관 문서 정리 서비스 시작")

	go func() {
		defer wg.Done()

		<-ctx.Done()

		j.stop()
	}()

	return nil
}

func (j *Janitor) stop() {
	j.runningMu.Lock()
	defer j.runningMu.Unlock()

	if !j.running {
		return
	}

	<-j.cron.Stop().Done()

	j.cron = nil
	j.running = false

	applog.WithComponent(component).Info("보관 문서 정리 서비스 종료")
}

// Sweep 보관 기간이 지난 문서를 즉시 삭제하고 삭제한 개수를 반환합니다.
func (j *Janitor) Sweep() int {
	cutoff := j.now().Add(-j.retention)

	removed, err := j.pruner.Prune(cutoff)
	fields := applog.Fields{
		"cutoff":  cutoff.Format(time.RFC3339),
		"removed": removed,
	}
	if err != nil {
		applog.WithComponentAndFields(component, fields).WithError(err).Error("보관 문서 정리 중 오류가 발생했습니다")
		return removed
	}

	applog.WithComponentAndFields(component, fields).Info("보관 문서 정리 완료")

	return removed
}
