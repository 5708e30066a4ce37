package relay

import (
	"io"

	applog "github.com/darkkaiser/warn-bridge/pkg/log"
	"github.com/labstack/gommon/log"
)

// echoLogger Echo 내부 로그를 애플리케이션 logrus 로거로 보내는 어댑터입니다.
type echoLogger struct {
	*applog.Logger
}

func (l echoLogger) Output() io.Writer { return l.Logger.Out }

func (l echoLogger) SetOutput(w io.Writer) { l.Logger.SetOutput(w) }

func (l echoLogger) Prefix() string { return "" }

func (l echoLogger) SetPrefix(string) {}

func (l echoLogger) SetHeader(string) {}

// Level logrus 레벨을 Echo 레벨로 변환합니다. 대응하는 레벨이 없으면 OFF입니다.
func (l echoLogger) Level() log.Lvl {
	switch l.Logger.Level {
	case applog.DebugLevel, applog.TraceLevel:
		return log.DEBUG
	case applog.InfoLevel:
		return log.INFO
	case applog.WarnLevel:
		return log.WARN
	case applog.ErrorLevel:
		return log.ERROR
	}
	return log.OFF
}

func (l echoLogger) SetLevel(lvl log.Lvl) {
	switch lvl {
	case log.DEBUG:
		l.Logger.SetLevel(applog.DebugLevel)
	case log.INFO:
		l.Logger.SetLevel(applog.InfoLevel)
	case log.WARN:
		l.Logger.SetLevel(applog.WarnLevel)
	case log.ERROR:
		l.Logger.SetLevel(applog.ErrorLevel)
	}
}

func (l echoLogger) Printj(j log.JSON) { l.withJSON(j).Print() }
func (l echoLogger) Debugj(j log.JSON) { l.withJSON(j).Debug() }
func (l echoLogger) Infoj(j log.JSON)  { l.withJSON(j).Info() }
func (l echoLogger) Warnj(j log.JSON)  { l.withJSON(j).Warn() }
func (l echoLogger) Errorj(j log.JSON) { l.withJSON(j).Error() }
func (l echoLogger) Fatalj(j log.JSON) { l.withJSON(j).Fatal() }
func (l echoLogger) Panicj(j log.JSON) { l.withJSON(j).Panic() }

func (l echoLogger) withJSON(j log.JSON) *applog.Entry {
	return l.Logger.WithFields(applog.Fields(j)).WithField("component", component)
}
