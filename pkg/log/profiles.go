package log

// callerPathPrefix 호출자 경로에서 축약할 모듈 경로입니다.
const callerPathPrefix = "github.com/darkkaiser/warn-bridge"

// NewProductionOptions 상시 구동되는 브리지 프로세스에 맞춘 로그 설정을 반환합니다.
func NewProductionOptions(appName string) Options {
	return Options{
		Name:  appName,
		Level: InfoLevel,

		MaxAge:     30, // 30일 보관
		MaxSizeMB:  50,
		MaxBackups: 10,

		EnableCriticalLog: true,  // 기동 실패, 구독 실패 등 운영자 개입이 필요한 로그 격리
		EnableVerboseLog:  false, // 운영 모드에서는 Debug 로그를 남기지 않음
		EnableConsoleLog:  true,  // 서비스 매니저(journald 등)가 표준 출력을 수집

		ReportCaller:     false,
		CallerPathPrefix: callerPathPrefix,
	}
}

// NewDevelopmentOptions --debug 실행 시 사용하는 로그 설정을 반환합니다.
func NewDevelopmentOptions(appName string) Options {
	return Options{
		Name:  appName,
		Level: TraceLevel,

		MaxAge:     1,
		MaxSizeMB:  20,
		MaxBackups: 3,

		EnableCriticalLog: true,
		EnableVerboseLog:  true, // 페이로드 원문 등 상세 로그를 별도 파일로 분리
		EnableConsoleLog:  true,

		ReportCaller:     true,
		CallerPathPrefix: callerPathPrefix,
	}
}
