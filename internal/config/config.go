package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	apperrors "github.com/darkkaiser/warn-bridge/internal/pkg/errors"
	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	// AppName 애플리케이션의 전역 고유 식별자입니다.
	AppName string = "warn-bridge"

	// DefaultFilename 실행 인자로 설정 파일이 지정되지 않았을 때 탐색하는 기본 설정 파일명입니다.
	// 이 파일은 없어도 됩니다.
	DefaultFilename = AppName + ".json"

	// DefaultDotEnvFilename 환경 변수 로드 전에 읽어 들이는 .env 파일명입니다. (없으면 무시)
	DefaultDotEnvFilename = ".env"

	// EnvPrefix 설정을 덮어쓰는 환경 변수의 접두사입니다.
	// 예: WARN_BRIDGE_HTTP__TIMEOUT=10s -> http.timeout
	EnvPrefix = "WARN_BRIDGE_"
)

// AppConfig 브리지 프로세스의 모든 설정을 관장하는 최상위 루트 구조체
type AppConfig struct {
	Debug bool `json:"debug"`

	// StateDir nina_id.json, nina_config.json, fcm_credentials.json이 저장되는 디렉토리
	StateDir string `json:"state_dir" validate:"required"`

	// Command 경보 1건마다 셸을 통해 실행할 명령줄
	Command string `json:"command" validate:"required"`

	// Regions 구독할 지역 코드 목록 (비어 있으면 전체 지역 구독)
	Regions []int64 `json:"regions" validate:"dive,gt=0"`

	Persist PersistConfig `json:"persist"`
	HTTP    HTTPConfig    `json:"http"`
	Nina    NinaConfig    `json:"nina"`
	Relay   RelayConfig   `json:"relay"`
}

// PersistConfig 수신한 푸시 및 이벤트 문서의 디스크 보관 설정
type PersistConfig struct {
	Enabled bool   `json:"enabled"`
	Dir     string `json:"dir" validate:"required"`

	// RetentionDays 보관 기간 (0: 삭제하지 않음)
	RetentionDays   int    `json:"retention_days" validate:"min=0"`
	CleanupTimeSpec string `json:"cleanup_time_spec" validate:"required,cron_spec"`
}

// HTTPConfig 원격 백엔드 호출에 적용되는 타임아웃 및 재시도 정책
type HTTPConfig struct {
	Timeout       string `json:"timeout" validate:"required,duration"`
	MaxRetries    int    `json:"max_retries" validate:"min=0,max=10"`
	MinRetryDelay string `json:"min_retry_delay" validate:"required,duration"`
	MaxRetryDelay string `json:"max_retry_delay" validate:"required,duration"`
	MaxBodyBytes  int64  `json:"max_body_bytes" validate:"min=0"`
}

// TimeoutDuration 검증을 통과한 Timeout 값을 time.Duration으로 반환합니다.
func (c HTTPConfig) TimeoutDuration() time.Duration { return mustParseDuration(c.Timeout) }

// MinRetryDelayDuration 검증을 통과한 MinRetryDelay 값을 time.Duration으로 반환합니다.
func (c HTTPConfig) MinRetryDelayDuration() time.Duration { return mustParseDuration(c.MinRetryDelay) }

// MaxRetryDelayDuration 검증을 통과한 MaxRetryDelay 값을 time.Duration으로 반환합니다.
func (c HTTPConfig) MaxRetryDelayDuration() time.Duration { return mustParseDuration(c.MaxRetryDelay) }

// NinaConfig 경보 백엔드 엔드포인트 설정
type NinaConfig struct {
	ConfigURL        string `json:"config_url" validate:"required,http_url"`
	RegionCatalogURL string `json:"region_catalog_url" validate:"required,http_url"`
	PushAPIBaseURL   string `json:"push_api_base_url" validate:"required,http_url"`
	EventBaseURL     string `json:"event_base_url" validate:"required,http_url"`
	LinkBaseURL      string `json:"link_base_url" validate:"required,http_url"`
}

// RelayConfig 외부 FCM 수신기(relay)가 접속하는 로컬 HTTP 엔드포인트 설정
type RelayConfig struct {
	ListenAddress      string  `json:"listen_address" validate:"required,hostname_port"`
	AppKey             string  `json:"app_key"`
	RateLimitPerSecond float64 `json:"rate_limit_per_second" validate:"gt=0"`
	RateLimitBurst     int     `json:"rate_limit_burst" validate:"min=1"`
	BodyLimit          string  `json:"body_limit" validate:"required"`
	ShutdownTimeout    string  `json:"shutdown_timeout" validate:"required,duration"`
}

// ShutdownTimeoutDuration 검증을 통과한 ShutdownTimeout 값을 time.Duration으로 반환합니다.
func (c RelayConfig) ShutdownTimeoutDuration() time.Duration {
	return mustParseDuration(c.ShutdownTimeout)
}

// Default 모든 항목이 기본값으로 채워진 AppConfig를 반환합니다.
func Default() AppConfig {
	return AppConfig{
		StateDir: ".",
		Persist: PersistConfig{
			Dir:             "received",
			CleanupTimeSpec: "0 0 4 * * *",
		},
		HTTP: HTTPConfig{
			Timeout:       "20s",
			MaxRetries:    3,
			MinRetryDelay: "1s",
			MaxRetryDelay: "10s",
			MaxBodyBytes:  16 * 1024 * 1024,
		},
		Nina: NinaConfig{
			ConfigURL:        "https://warnung.bund.de/assets/json/config.json",
			RegionCatalogURL: "https://warnung.bund.de/assets/json/converted_gemeinden.json",
			PushAPIBaseURL:   "https://push.warnung.bund.de/v1/nina-3-1/",
			EventBaseURL:     "https://warnung.bund.de/api31/warnings/",
			LinkBaseURL:      "https://warnung.bund.de/meldungen/",
		},
		Relay: RelayConfig{
			ListenAddress:      "127.0.0.1:8735",
			RateLimitPerSecond: 20,
			RateLimitBurst:     40,
			BodyLimit:          "256K",
			ShutdownTimeout:    "5s",
		},
	}
}

// Validate 설정 로드 직후, 각 항목의 정합성과 필수 값의 유효성을 검증합니다.
func (c *AppConfig) Validate() error {
	return checkStruct(validate, c, "AppConfig")
}

// Load 설정을 다음 순서로 계층화하여 로드합니다. (뒤쪽이 우선)
//
//  1. 구조체 기본값 (Default)
//  2. JSON 설정 파일 (filename이 비어 있으면 DefaultFilename을 찾되, 없으면 건너뜀)
//  3. .env 파일과 WARN_BRIDGE_ 접두사 환경 변수
//  4. overrides (CLI 플래그 등, koanf 키 경로 기준)
func Load(filename string, overrides map[string]any) (*AppConfig, error) {
	var appConfig AppConfig
	if err := loadLayers(&appConfig, Default(), filename, DefaultFilename, EnvPrefix, overrides); err != nil {
		return nil, err
	}

	if err := appConfig.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.InvalidInput, "설정 유효성 검증에 실패했습니다")
	}

	return &appConfig, nil
}

// loadLayers 기본값, 설정 파일, 환경 변수, overrides 순으로 koanf에 적재한 뒤 out에 언마샬링합니다.
func loadLayers(out any, defaults any, filename, defaultFilename, envPrefix string, overrides map[string]any) error {
	k := koanf.New(".")

	// 1. 기본값 로드 (가장 낮은 우선순위)
	if err := k.Load(structs.Provider(defaults, "json"), nil); err != nil {
		return apperrors.Wrap(err, apperrors.System, "기본 설정 로드에 실패했습니다")
	}

	// 2. JSON 설정 파일 로드
	optional := false
	if filename == "" {
		filename, optional = defaultFilename, true
	}
	if err := k.Load(file.Provider(filename), json.Parser()); err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist) && optional:
		case errors.Is(err, fs.ErrNotExist):
			return apperrors.Wrap(err, apperrors.System, fmt.Sprintf("설정 파일을 찾을 수 없습니다: '%s'", filename))
		default:
			return apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("설정 파일 로드 중 오류가 발생했습니다: '%s'", filename))
		}
	}

	// 3. .env 파일 및 환경 변수 로드
	// 이미 설정된 프로세스 환경 변수는 .env 값으로 덮어쓰지 않습니다.
	if err := godotenv.Load(DefaultDotEnvFilename); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf(".env 파일 로드에 실패했습니다: '%s'", DefaultDotEnvFilename))
	}
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, envPrefix)
		s = strings.ToLower(s)
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return apperrors.Wrap(err, apperrors.System, "환경 변수 로드에 실패했습니다")
	}

	// 4. 실행 인자 덮어쓰기 (최우선 순위)
	for key, value := range overrides {
		if err := k.Set(key, value); err != nil {
			return apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("실행 인자 '%s'를 설정에 반영할 수 없습니다", key))
		}
	}

	// 5. 구조체 언마샬링
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "json",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           out,
			ErrorUnused:      true, // 구조체에 없는 설정 키는 오타로 간주
			WeaklyTypedInput: true,
			DecodeHook:       mapstructure.StringToSliceHookFunc(","), // WARN_BRIDGE_REGIONS=1,2 형태 지원
		},
	}
	if err := k.UnmarshalWithConf("", out, unmarshalConf); err != nil {
		return apperrors.Wrap(err, apperrors.InvalidInput, "설정 데이터를 구조체로 변환하는데 실패했습니다")
	}

	return nil
}

func mustParseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		panic(fmt.Sprintf("검증되지 않은 시간 설정값입니다: '%s'", s))
	}
	return d
}
