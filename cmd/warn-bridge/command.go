package main

import (
	"context"
	"strconv"

	"github.com/darkkaiser/warn-bridge/internal/config"
	apperrors "github.com/darkkaiser/warn-bridge/internal/pkg/errors"
	"github.com/darkkaiser/warn-bridge/internal/pkg/version"
	"github.com/spf13/cobra"
)

// runFunc 설정 로드가 끝난 뒤 브리지를 실행합니다.
type runFunc func(ctx context.Context, cfg *config.AppConfig) error

type rootOptions struct {
	configFile string
	stateDir   string
	debug      bool
	persist    bool
}

func newRootCommand(run runFunc) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   config.AppName + " [flags] command [region...]",
		Short: "NINA 경보 푸시를 받아 외부 명령으로 전달하는 브리지",
		Long: `NINA 경보 백엔드에 지역 구독을 등록하고, 푸시로 수신한 경보마다 command를 셸로 실행합니다.

command의 표준 입력으로 두 줄이 전달됩니다.
  1줄: 경보 요약 (푸시 문서, JSON)
  2줄: 이벤트 상세 문서 (JSON)

region을 지정하지 않으면 모든 지역을 구독합니다.`,
		Args:          cobra.MinimumNArgs(1),
		Version:       version.Get().String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides, err := buildOverrides(cmd, opts, args)
			if err != nil {
				return err
			}

			cfg, err := config.Load(opts.configFile, overrides)
			if err != nil {
				return err
			}

			return run(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configFile, "config", "", "설정 파일 경로 (기본값: "+config.DefaultFilename+", 없으면 무시)")
	flags.StringVar(&opts.stateDir, "state-dir", "", "상태 파일 디렉토리")
	flags.BoolVar(&opts.debug, "debug", false, "디버그 로그 활성화")
	flags.BoolVar(&opts.persist, "persist", false, "수신한 푸시 및 이벤트 문서를 보관")

	// 위치 인자는 command와 region 목록뿐입니다. command에 포함된 "-"를 플래그로 해석하지 않습니다.
	flags.SetInterspersed(false)

	return cmd
}

// buildOverrides 명시적으로 지정된 플래그와 위치 인자만 koanf 키 경로로 변환합니다.
func buildOverrides(cmd *cobra.Command, opts *rootOptions, args []string) (map[string]any, error) {
	overrides := map[string]any{
		"command": args[0],
	}

	if len(args) > 1 {
		regions := make([]int64, 0, len(args)-1)
		for _, arg := range args[1:] {
			code, err := strconv.ParseInt(arg, 10, 64)
			if err != nil || code <= 0 {
				return nil, apperrors.Newf(apperrors.InvalidInput, "지역 코드는 양의 정수여야 합니다: '%s'", arg)
			}
			regions = append(regions, code)
		}
		overrides["regions"] = regions
	}

	flags := cmd.Flags()
	if flags.Changed("debug") {
		overrides["debug"] = opts.debug
	}
	if flags.Changed("persist") {
		overrides["persist.enabled"] = opts.persist
	}
	if flags.Changed("state-dir") {
		overrides["state_dir"] = opts.stateDir
	}

	return overrides, nil
}
