package relay

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/darkkaiser/warn-bridge/internal/config"
	"github.com/darkkaiser/warn-bridge/internal/service"
	"github.com/darkkaiser/warn-bridge/internal/service/nina"
	"github.com/darkkaiser/warn-bridge/internal/service/transport"
	applog "github.com/darkkaiser/warn-bridge/pkg/log"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const (
	defaultReadTimeout       = 30 * time.Second
	defaultReadHeaderTimeout = 10 * time.Second
	defaultIdleTimeout       = 120 * time.Second
)

// Server 릴레이가 접속하는 로컬 HTTP 서버입니다.
type Server struct {
	cfg       config.RelayConfig
	debug     bool
	transport *Transport

	running   bool
	runningMu sync.Mutex
}

// 컴파일 타임에 인터페이스 구현 여부를 검증합니다.
var _ service.Service = (*Server)(nil)

// NewServer Server 인스턴스를 생성합니다.
func NewServer(cfg config.RelayConfig, debug bool, t *Transport) *Server {
	if t == nil {
		panic("relay.NewServer: Transport는 필수입니다")
	}

	return &Server{
		cfg:       cfg,
		debug:     debug,
		transport: t,
	}
}

// StartTransport onRotated를 등록한 Transport를 만들고 릴레이 서버를 띄웁니다.
// 회전 콜백은 서버가 요청을 받기 전에 등록됩니다.
func StartTransport(ctx context.Context, wg *sync.WaitGroup, cfg config.RelayConfig, debug bool, rc *nina.RemoteConfig, creds transport.Credentials, onRotated transport.CredentialsRotatedFunc) (*Transport, error) {
	t := New(rc, creds)
	t.OnCredentialsRotated(onRotated)

	wg.Add(1)
	if err := NewServer(cfg, debug, t).Start(ctx, wg); err != nil {
		return nil, err
	}

	return t, nil
}

// Start 리슨 주소에 바인딩한 뒤 HTTP 서버를 고루틴에서 실행하고 반환합니다.
// 바인딩에 실패하면 에러를 반환하며, 이때는 wg.Done()을 이미 호출한 상태입니다.
// ctx가 취소되면 ShutdownTimeout 안에서 정상 종료한 뒤 wg.Done()을 호출합니다.
func (s *Server) Start(ctx context.Context, wg *sync.WaitGroup) error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	if s.running {
		defer wg.Done()
		applog.WithComponent(component).Warn("릴레이 서버가 이미 실행 중입니다")
		return nil
	}

	ln, err := net.Listen("tcp", s.cfg.ListenAddress)
	if err != nil {
		wg.Done()
		return newErrListenFailed(s.cfg.ListenAddress, err)
	}

	e := s.newEcho()
	e.Listener = ln

	s.running = true

	go s.run(ctx, wg, e)

	return nil
}

func (s *Server) run(ctx context.Context, wg *sync.WaitGroup, e *echo.Echo) {
	defer wg.Done()

	done := make(chan struct{})
	go s.serve(e, done)

	select {
	case <-ctx.Done():
		applog.WithComponent(component).Info("릴레이 서버 종료 중...")
	case <-done:
		applog.WithComponent(component).Error("릴레이 서버가 예기치 않게 종료되었습니다")
		s.cleanup()
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeoutDuration())
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		applog.WithComponentAndFields(component, applog.Fields{
			"error": err,
		}).Error("릴레이 서버 종료 중 오류가 발생했습니다")
	}

	<-done

	s.cleanup()
}

func (s *Server) serve(e *echo.Echo, done chan struct{}) {
	defer close(done)

	applog.WithComponentAndFields(component, applog.Fields{
		"listen_address": s.cfg.ListenAddress,
		"auth":           s.cfg.AppKey != "",
	}).Info("릴레이 서버 시작")

	// e.Listener가 지정되어 있으므로 Start는 새로 바인딩하지 않습니다.
	err := e.Start(s.cfg.ListenAddress)
	switch {
	case err == nil, errors.Is(err, http.ErrServerClosed):
		applog.WithComponent(component).Info("릴레이 서버 중지됨")
	default:
		applog.WithComponentAndFields(component, applog.Fields{
			"listen_address": s.cfg.ListenAddress,
			"error":          err,
		}).Error("릴레이 서버를 시작할 수 없습니다")
	}
}

func (s *Server) cleanup() {
	s.runningMu.Lock()
	s.running = false
	s.runningMu.Unlock()
}

// newEcho 미들웨어와 라우트가 구성된 Echo 인스턴스를 생성합니다.
//
// 미들웨어 순서: panic 복구, Request ID, 접근 로그, 요청 제한, 본문 크기 제한, 보안 헤더.
// 앱 키 인증은 /v1 그룹에만 적용됩니다.
func (s *Server) newEcho() *echo.Echo {
	e := echo.New()

	e.Debug = s.debug
	e.HideBanner = true
	e.HidePort = true

	// 응답은 디스패치가 끝난 뒤에 쓰므로 쓰기 타임아웃을 두지 않습니다.
	e.Server.ReadTimeout = defaultReadTimeout
	e.Server.ReadHeaderTimeout = defaultReadHeaderTimeout
	e.Server.IdleTimeout = defaultIdleTimeout

	e.Logger = echoLogger{Logger: applog.StandardLogger()}
	e.HTTPErrorHandler = errorHandler

	e.Use(panicRecovery())
	e.Use(middleware.RequestID())
	e.Use(httpLogger())
	e.Use(rateLimiting(s.cfg.RateLimitPerSecond, s.cfg.RateLimitBurst))
	e.Use(middleware.BodyLimit(s.cfg.BodyLimit))
	e.Use(middleware.Secure())

	h := &handler{transport: s.transport}

	v1 := e.Group("/v1", appKeyAuth(s.cfg.AppKey))
	v1.GET("/registration", h.getRegistration)
	v1.PUT("/credentials", h.putCredentials)
	v1.POST("/messages", h.postMessage)

	return e
}
