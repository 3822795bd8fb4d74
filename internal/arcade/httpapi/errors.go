package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	aerrors "github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/errors"
	cerrors "github.com/park285/llm-kakao-bots/arcade-go/internal/common/errors"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/common/httputil"
)

// API 에러 코드
const (
	errorInvalidRequest    = "INVALID_REQUEST"
	errorAuthRequired      = "AUTH_REQUIRED"
	errorValidation        = "VALIDATION_FAILED"
	errorNotFound          = "NOT_FOUND"
	errorConflict          = "CONFLICT"
	errorRateLimited       = "RATE_LIMITED"
	errorUnavailable       = "DATA_SOURCE_UNAVAILABLE"
	errorInternal          = "INTERNAL_ERROR"
	errorAdminUnauthorized = "ADMIN_UNAUTHORIZED"
)

type apiError struct {
	status  int
	code    string
	message string
	details map[string]string
}

// classify: 도메인/인프라 에러를 HTTP 상태와 코드로 변환한다.
// 제출 실패에는 재시도용 submissionId 를 details 에 담는다.
func classify(err error) apiError {
	mapped := classifyKind(err)
	var sub aerrors.SubmissionError
	if errors.As(err, &sub) && sub.SubmissionID != "" {
		if mapped.details == nil {
			mapped.details = make(map[string]string, 1)
		}
		mapped.details["submissionId"] = sub.SubmissionID
	}
	return mapped
}

func classifyKind(err error) apiError {
	var (
		auth     aerrors.AuthRequiredError
		verr     aerrors.ValidationError
		verrs    aerrors.ValidationErrors
		notFound aerrors.NotFoundError
		conflict aerrors.SeasonConflictError
		limited  aerrors.RateLimitedError
		ds       aerrors.DataSourceError
		lockErr  cerrors.LockError
	)
	switch {
	case errors.As(err, &auth):
		return apiError{status: http.StatusUnauthorized, code: errorAuthRequired, message: "login required"}
	case errors.As(err, &verrs):
		details := make(map[string]string, len(verrs))
		for _, v := range verrs {
			details[v.Field] = v.Message
		}
		return apiError{status: http.StatusUnprocessableEntity, code: errorValidation, message: verrs.Error(), details: details}
	case errors.As(err, &verr):
		return apiError{
			status:  http.StatusUnprocessableEntity,
			code:    errorValidation,
			message: verr.Error(),
			details: map[string]string{verr.Field: verr.Message},
		}
	case errors.As(err, &notFound):
		return apiError{status: http.StatusNotFound, code: errorNotFound, message: notFound.Error()}
	case errors.As(err, &conflict):
		return apiError{status: http.StatusConflict, code: errorConflict, message: conflict.Reason}
	case errors.As(err, &limited):
		return apiError{status: http.StatusTooManyRequests, code: errorRateLimited, message: limited.Error()}
	case errors.As(err, &ds), errors.As(err, &lockErr), errors.Is(err, context.DeadlineExceeded):
		return apiError{status: http.StatusServiceUnavailable, code: errorUnavailable, message: "data source unavailable, retry later"}
	default:
		return apiError{status: http.StatusInternalServerError, code: errorInternal, message: "internal error"}
	}
}

// respondError: 에러를 기록하고 표준 에러 응답을 전송한다. 사용자 측 에러는 WARN.
func respondError(w http.ResponseWriter, logger *slog.Logger, logKey string, err error, attrs ...any) {
	mapped := classify(err)
	attrs = append(attrs, "err", err, "status", mapped.status)
	if aerrors.IsExpectedUserBehavior(err) {
		logger.Warn(logKey, attrs...)
	} else {
		logger.Error(logKey, attrs...)
	}
	_ = httputil.WriteErrorDetailsJSON(w, mapped.status, mapped.code, mapped.message, mapped.details)
}

func respondBadRequest(w http.ResponseWriter, message string) {
	_ = httputil.WriteErrorJSON(w, http.StatusBadRequest, errorInvalidRequest, message)
}
