package relay

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	apperrors "github.com/darkkaiser/warn-bridge/internal/pkg/errors"
	"github.com/darkkaiser/warn-bridge/internal/service/transport"
	applog "github.com/darkkaiser/warn-bridge/pkg/log"
	"github.com/labstack/echo/v4"
)

// statusResponse 본문이 필요한 응답의 공통 형식
type statusResponse struct {
	ResultCode int    `json:"result_code"`
	Message    string `json:"message"`
}

type handler struct {
	transport *Transport
}

// getRegistration GET /v1/registration
func (h *handler) getRegistration(c echo.Context) error {
	return c.JSON(http.StatusOK, h.transport.Registration())
}

// putCredentials PUT /v1/credentials
//
// 본문은 JSON 객체여야 하며, 기존 자격 증명을 통째로 교체합니다.
func (h *handler) putCredentials(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "요청 본문을 읽을 수 없습니다").SetInternal(err)
	}

	var creds transport.Credentials
	if err := json.Unmarshal(body, &creds); err != nil || creds == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "자격 증명은 JSON 객체여야 합니다")
	}

	if err := h.transport.UpdateCredentials(creds); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "자격 증명을 저장하지 못했습니다").SetInternal(err)
	}

	return c.NoContent(http.StatusNoContent)
}

// postMessage POST /v1/messages
//
// 본문은 가공하지 않은 푸시 메시지 원문입니다.
func (h *handler) postMessage(c echo.Context) error {
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "요청 본문을 읽을 수 없습니다").SetInternal(err)
	}

	err = h.transport.Deliver(c.Request().Context(), payload)
	switch {
	case err == nil:
		return c.JSON(http.StatusAccepted, statusResponse{ResultCode: http.StatusAccepted, Message: "접수되었습니다"})
	case errors.Is(err, ErrNotListening):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "아직 푸시 메시지를 수신할 준비가 되지 않았습니다").SetInternal(err)
	case apperrors.Is(err, apperrors.ParsingFailed):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "푸시 메시지를 해석할 수 없습니다").SetInternal(err)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "푸시 메시지 처리에 실패했습니다").SetInternal(err)
	}
}

// errorHandler 모든 에러를 statusResponse 형식으로 응답합니다.
func errorHandler(err error, c echo.Context) {
	code := http.StatusInternalServerError
	message := "내부 서버 오류가 발생했습니다"

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if msg, ok := he.Message.(string); ok {
			message = msg
		}
	}

	fields := applog.Fields{
		"path":       c.Request().URL.Path,
		"method":     c.Request().Method,
		"status":     code,
		"error":      err,
		"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
	}
	if code >= http.StatusInternalServerError {
		applog.WithComponentAndFields(component, fields).Error("HTTP 5xx 응답")
	} else {
		applog.WithComponentAndFields(component, fields).Warn("HTTP 4xx 응답")
	}

	if c.Response().Committed {
		return
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, statusResponse{ResultCode: code, Message: message})
}
