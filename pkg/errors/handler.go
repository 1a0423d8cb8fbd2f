package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// RetryAfterSeconds is advertised on 503 responses while the store recovers.
const RetryAfterSeconds = 30

// ErrorResponse is the JSON body of every failed request
type ErrorResponse struct {
	Error     bool                   `json:"error"`
	Type      string                 `json:"type"`
	Message   string                 `json:"message"`
	Code      string                 `json:"code,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// ErrorHandler renders errors from handlers and buses as JSON responses
type ErrorHandler struct {
	logger *zap.Logger
	debug  bool
}

func NewErrorHandler(logger *zap.Logger, debug bool) *ErrorHandler {
	return &ErrorHandler{logger: logger, debug: debug}
}

// Handle writes the response for err. A nil err writes nothing.
func (h *ErrorHandler) Handle(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	status, body := h.resolve(err)
	body.RequestID = middleware.GetReqID(r.Context())
	h.log(r, err, status, body)

	w.Header().Set("Content-Type", "application/json")
	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", strconv.Itoa(RetryAfterSeconds))
	}
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(body); encErr != nil {
		h.logger.Error("Failed to encode error response", zap.Error(encErr))
	}
}

// resolve maps err to a status and body. Errors outside the taxonomy become
// an opaque 500 unless debug is on.
func (h *ErrorHandler) resolve(err error) (int, ErrorResponse) {
	appErr := GetAppError(err)
	if appErr == nil {
		msg := "An internal error occurred"
		if h.debug {
			msg = err.Error()
		}
		return http.StatusInternalServerError, ErrorResponse{
			Error:   true,
			Type:    string(ErrorTypeInternal),
			Message: msg,
		}
	}

	status := appErr.HTTPStatus
	if status == 0 {
		status = http.StatusInternalServerError
	}

	details := appErr.Details
	if h.debug && appErr.StackTrace != "" {
		details = make(map[string]interface{}, len(appErr.Details)+1)
		for k, v := range appErr.Details {
			details[k] = v
		}
		details["stack_trace"] = appErr.StackTrace
	}

	return status, ErrorResponse{
		Error:   true,
		Type:    string(appErr.Type),
		Message: appErr.Message,
		Code:    appErr.Code,
		Details: details,
	}
}

func (h *ErrorHandler) log(r *http.Request, err error, status int, body ErrorResponse) {
	fields := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.String("requestID", body.RequestID),
		zap.String("errorType", body.Type),
	}
	if body.Code != "" {
		fields = append(fields, zap.String("errorCode", body.Code))
	}
	if date, ok := body.Details["date"].(string); ok {
		fields = append(fields, zap.String("date", date))
	}

	appErr := GetAppError(err)
	switch {
	case appErr == nil:
		h.logger.Error("Unhandled error", append(fields, zap.Error(err))...)
	case status >= 500:
		if appErr.Cause != nil {
			fields = append(fields, zap.Error(appErr.Cause))
		}
		h.logger.Error(appErr.Message, fields...)
	default:
		h.logger.Warn(appErr.Message, fields...)
	}
}

// Middleware turns panics in downstream handlers into 500 responses
func (h *ErrorHandler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				h.Handle(w, r, NewInternalError(fmt.Sprintf("panic: %v", rec)))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
