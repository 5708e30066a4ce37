// Package registration 브리지 기동 순서를 관장하는 등록 컨트롤러를 제공합니다.
//
// 컨트롤러는 다음 단계를 차례로 밟으며, LISTENING에 도달하기 전의 실패는 재시도하지 않고 그대로 반환합니다.
//
//	INIT → LOAD_IDENTITY → LOAD_OR_FETCH_CONFIG → OBTAIN_TOKEN → CONFIGURE_SUBSCRIPTION → LISTENING
package registration

import (
	"context"
	"sync"

	"github.com/darkkaiser/warn-bridge/internal/service/nina"
	"github.com/darkkaiser/warn-bridge/internal/service/store"
	"github.com/darkkaiser/warn-bridge/internal/service/transport"
	applog "github.com/darkkaiser/warn-bridge/pkg/log"
)

// component 등록 컨트롤러 로깅용 컴포넌트 이름
const component = "registration"

// StateStore 컨트롤러가 사용하는 상태 저장소입니다.
type StateStore interface {
	LoadOrCreateClientID() (string, error)
	LoadOrFetchRemoteConfig(ctx context.Context, fetch store.FetchFunc) (*nina.RemoteConfig, error)
	LoadTransportCredentials() (map[string]any, error)
	SaveTransportCredentials(creds map[string]any) error
}

// Gateway 컨트롤러가 사용하는 경보 백엔드 기능입니다.
type Gateway interface {
	FetchRemoteConfig(ctx context.Context) ([]byte, error)
	ListAllRegionCodes(ctx context.Context) ([]int64, error)
	ConfigureSubscription(ctx context.Context, rc *nina.RemoteConfig, token, clientID string, regionCodes []int64) error
}

// TransportFactory 원격 설정과 저장된 자격 증명으로 전송 계층을 생성합니다.
//
// 구현은 전송 계층이 외부로부터 자격 증명을 받기 시작하기 전에 onRotated를 등록해야 합니다.
type TransportFactory func(rc *nina.RemoteConfig, creds transport.Credentials, onRotated transport.CredentialsRotatedFunc) (transport.Transport, error)

// Config 컨트롤러 생성 인자입니다.
type Config struct {
	Store        StateStore
	Gateway      Gateway
	NewTransport TransportFactory

	// Handler 수신한 푸시 페이로드를 처리하는 함수 (디스패치 파이프라인)
	Handler transport.MessageHandler

	// Regions 구독할 지역 코드 (비어 있으면 전체 지역)
	Regions []int64
}

// Controller 등록 컨트롤러입니다.
type Controller struct {
	cfg Config

	mu      sync.Mutex
	state   State
	running bool
}

// New Controller를 생성합니다.
func New(cfg Config) *Controller {
	switch {
	case cfg.Store == nil:
		panic("registration.New: Store는 필수입니다")
	case cfg.Gateway == nil:
		panic("registration.New: Gateway는 필수입니다")
	case cfg.NewTransport == nil:
		panic("registration.New: NewTransport는 필수입니다")
	case cfg.Handler == nil:
		panic("registration.New: Handler는 필수입니다")
	}

	return &Controller{cfg: cfg, state: StateInit}
}

// State 현재 기동 단계를 반환합니다.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

func (c *Controller) enter(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()

	applog.WithComponentAndFields(component, applog.Fields{
		"state": s.String(),
	}).Debug("기동 단계 진입")
}

// Run 기동 단계를 차례로 수행한 뒤 ctx가 취소될 때까지 대기합니다.
//
// LISTENING 이전 단계의 실패는 해당 에러를 그대로 반환합니다. ctx 취소로 종료되면 nil을 반환합니다.
func (c *Controller) Run(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return ErrAlreadyRunning
	}
	c.running = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
	}()

	if err := c.start(ctx); err != nil {
		applog.WithComponentAndFields(component, applog.Fields{
			"state": c.State().String(),
			"error": err,
		}).Error("기동 실패")
		return err
	}

	<-ctx.Done()

	applog.WithComponent(component).Info("푸시 메시지 대기를 종료합니다")

	return nil
}

func (c *Controller) start(ctx context.Context) error {
	// 1. 클라이언트 식별자
	c.enter(StateLoadIdentity)
	clientID, err := c.cfg.Store.LoadOrCreateClientID()
	if err != nil {
		return err
	}

	// 2. 원격 설정
	c.enter(StateLoadOrFetchConfig)
	rc, err := c.cfg.Store.LoadOrFetchRemoteConfig(ctx, c.cfg.Gateway.FetchRemoteConfig)
	if err != nil {
		return err
	}

	// 3. 푸시 토큰
	c.enter(StateObtainToken)
	creds, err := c.cfg.Store.LoadTransportCredentials()
	if err != nil {
		return err
	}
	t, err := c.cfg.NewTransport(rc, creds, c.cfg.Store.SaveTransportCredentials)
	if err != nil {
		return newErrTransportCreate(err)
	}

	token, err := t.Register(ctx)
	if err != nil {
		return err
	}

	// 4. 지역 구독 설정
	c.enter(StateConfigureSubscription)
	regions := c.cfg.Regions
	if len(regions) == 0 {
		applog.WithComponent(component).Info("지정된 지역이 없어 전체 지역을 구독합니다")

		if regions, err = c.cfg.Gateway.ListAllRegionCodes(ctx); err != nil {
			return err
		}
	}
	if err := c.cfg.Gateway.ConfigureSubscription(ctx, rc, token, clientID, regions); err != nil {
		return err
	}

	// 5. 수신 시작
	if err := t.Start(ctx, c.cfg.Handler); err != nil {
		return newErrTransportStart(err)
	}
	c.enter(StateListening)

	applog.WithComponentAndFields(component, applog.Fields{
		"client_id": clientID,
		"regions":   len(regions),
	}).Info("푸시 메시지 수신 대기 중")

	return nil
}
