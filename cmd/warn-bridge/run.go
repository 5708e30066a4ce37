package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/darkkaiser/warn-bridge/internal/config"
	"github.com/darkkaiser/warn-bridge/internal/pkg/version"
	"github.com/darkkaiser/warn-bridge/internal/service/dispatch"
	"github.com/darkkaiser/warn-bridge/internal/service/fetcher"
	"github.com/darkkaiser/warn-bridge/internal/service/janitor"
	"github.com/darkkaiser/warn-bridge/internal/service/nina"
	"github.com/darkkaiser/warn-bridge/internal/service/registration"
	"github.com/darkkaiser/warn-bridge/internal/service/store"
	"github.com/darkkaiser/warn-bridge/internal/service/transport"
	"github.com/darkkaiser/warn-bridge/internal/service/transport/relay"
	applog "github.com/darkkaiser/warn-bridge/pkg/log"
)

const component = "main"

// run 로깅을 초기화하고 서비스를 조립한 뒤 종료 신호를 받을 때까지 브리지를 실행합니다.
func run(ctx context.Context, cfg *config.AppConfig) error {
	logOpts := applog.NewProductionOptions(config.AppName)
	if cfg.Debug {
		logOpts = applog.NewDevelopmentOptions(config.AppName)
	}
	logCloser, err := applog.Setup(logOpts)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	applog.SetDebugMode(cfg.Debug)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	applog.WithComponentAndFields(component, applog.Fields(version.Get().Fields())).Info("브리지 초기화 시작")

	wg := &sync.WaitGroup{}
	err = serve(ctx, cfg, wg)

	// 기동 실패 시에도 이미 시작된 서비스를 정리합니다.
	stop()
	wg.Wait()

	if err != nil {
		applog.WithComponentAndFields(component, applog.Fields{
			"error": err,
		}).Error("브리지를 기동할 수 없습니다")
		return err
	}

	applog.WithComponent(component).Info("브리지 종료")

	return nil
}

// serve 구성 요소를 조립하고 등록 컨트롤러를 실행합니다. 백그라운드 서비스는 wg로 추적됩니다.
func serve(ctx context.Context, cfg *config.AppConfig, wg *sync.WaitGroup) error {
	gateway := nina.New(fetcher.New(fetcher.Config{
		Timeout:       cfg.HTTP.TimeoutDuration(),
		MaxRetries:    cfg.HTTP.MaxRetries,
		MinRetryDelay: cfg.HTTP.MinRetryDelayDuration(),
		MaxRetryDelay: cfg.HTTP.MaxRetryDelayDuration(),
		MaxBytes:      cfg.HTTP.MaxBodyBytes,
	}), cfg.Nina)

	stateStore, err := store.NewFileStore(cfg.StateDir)
	if err != nil {
		return err
	}

	var pipelineOpts []dispatch.Option
	if cfg.Persist.Enabled {
		archive, err := store.NewArchive(cfg.Persist.Dir)
		if err != nil {
			return err
		}
		pipelineOpts = append(pipelineOpts, dispatch.WithArchive(archive))

		if cfg.Persist.RetentionDays > 0 {
			j, err := janitor.New(archive, cfg.Persist.CleanupTimeSpec, cfg.Persist.RetentionDays)
			if err != nil {
				return err
			}
			wg.Add(1)
			if err := j.Start(ctx, wg); err != nil {
				return err
			}
		}
	}

	pipeline, err := dispatch.NewPipeline(cfg.Command, gateway, pipelineOpts...)
	if err != nil {
		return err
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"command":   cfg.Command,
		"regions":   len(cfg.Regions),
		"persist":   cfg.Persist.Enabled,
		"state_dir": stateStore.Dir(),
	}).Info("구성 요소 조립 완료")

	controller := registration.New(registration.Config{
		Store:   stateStore,
		Gateway: gateway,
		NewTransport: func(rc *nina.RemoteConfig, creds transport.Credentials, onRotated transport.CredentialsRotatedFunc) (transport.Transport, error) {
			// 릴레이가 자격 증명을 전달해야 토큰을 얻을 수 있으므로 서버를 먼저 띄웁니다.
			t, err := relay.StartTransport(ctx, wg, cfg.Relay, cfg.Debug, rc, creds, onRotated)
			if err != nil {
				return nil, err
			}
			return t, nil
		},
		Handler: pipeline.HandlePush,
		Regions: cfg.Regions,
	})

	return controller.Run(ctx)
}
