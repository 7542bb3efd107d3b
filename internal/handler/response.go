package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/model"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/pkg/apierror"
)

func writeSuccess(w http.ResponseWriter, r *http.Request, status int, data any, meta *model.Meta) {
	render.Status(r, status)
	render.JSON(w, r, model.APIResponse{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := classifyError(err)
	render.Status(r, status)
	render.JSON(w, r, model.APIResponse{
		Success: false,
		Error:   body,
	})
}

// classifyError maps an error to the status and body shown to callers. Backend
// messages pass through verbatim.
func classifyError(err error) (int, *model.APIError) {
	status := http.StatusInternalServerError
	body := &model.APIError{
		Code:    "INTERNAL_ERROR",
		Message: "Unexpected server error",
	}

	var apiErr *apierror.APIError
	switch {
	case errors.Is(err, model.ErrSessionExpired):
		status = http.StatusUnauthorized
		body.Code = "SESSION_EXPIRED"
		body.Message = "Session expired, sign in again"
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatus
		if status >= 500 || status == 0 {
			status = http.StatusBadGateway
		}
		body.Code = apiErr.Code
		body.Message = apiErr.Message
		body.Details = apiErr.Details
	case errors.Is(err, model.ErrInvalidInput):
		status = http.StatusBadRequest
		body.Code = "BAD_REQUEST"
		body.Message = "Invalid input"
	case errors.Is(err, model.ErrUnauthorized):
		status = http.StatusUnauthorized
		body.Code = "UNAUTHORIZED"
		body.Message = "Authentication required"
	case errors.Is(err, model.ErrForbidden):
		status = http.StatusForbidden
		body.Code = "FORBIDDEN"
		body.Message = "Access denied"
	case errors.Is(err, model.ErrNotFound):
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "Not found"
	case errors.Is(err, model.ErrUnsupportedImage):
		status = http.StatusUnsupportedMediaType
		body.Code = "UNSUPPORTED_MEDIA_TYPE"
		body.Message = err.Error()
	default:
		slog.Error("unhandled error in writeError", "error", err)
	}

	return status, body
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	if err := render.DecodeJSON(r.Body, v); err != nil {
		return apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest)
	}
	return nil
}
