package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/darkkaiser/warn-bridge/internal/config"
	"github.com/darkkaiser/warn-bridge/internal/consumer/telegram"
	"github.com/darkkaiser/warn-bridge/internal/pkg/version"
	"github.com/darkkaiser/warn-bridge/internal/service/alert"
	applog "github.com/darkkaiser/warn-bridge/pkg/log"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "[FATAL] %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		configFile string
		debug      bool
	)

	cmd := &cobra.Command{
		Use:   config.TelegramAppName,
		Short: "warn-bridge가 표준 입력으로 전달한 경보를 텔레그램으로 보냅니다",
		Example: `  warn-bridge "` + config.TelegramAppName + ` --config /etc/warn-telegram.json" 91620000000`,
		Args:          cobra.NoArgs,
		Version:       version.Get().String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadTelegram(configFile)
			if err != nil {
				return err
			}

			logOpts := applog.NewProductionOptions(config.TelegramAppName)
			if debug {
				logOpts = applog.NewDevelopmentOptions(config.TelegramAppName)
			}
			// 표준 출력은 브리지 프로세스와 공유하므로 로그는 파일로만 남깁니다.
			logOpts.EnableConsoleLog = false

			logCloser, err := applog.Setup(logOpts)
			if err != nil {
				return err
			}
			defer logCloser.Close()

			sender, err := telegram.NewSender(cfg.BotToken, cfg.ChatID, debug)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return telegram.NewConsumer(sender, cfg.LineTimeoutDuration(), alert.DefaultLinkBaseURL).Run(ctx, cmd.InOrStdin())
		},
	}

	cmd.Flags().StringVar(&configFile, "config", "", "설정 파일 경로 (기본값: "+config.TelegramAppName+".json, 없으면 무시)")
	cmd.Flags().BoolVar(&debug, "debug", false, "디버그 로그 활성화")

	return cmd
}
