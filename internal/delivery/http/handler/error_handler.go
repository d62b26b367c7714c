package handler

import (
	"net/http"

	"clinic-scheduler/internal/domain/apperror"
	"clinic-scheduler/pkg/response"
)

type errorBody struct {
	Code    string                 `json:"code"`
	Kind    string                 `json:"kind"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// writeError maps a usecase error to the response envelope. Business errors
// keep their message; anything else becomes a 500 with fallback.
func writeError(w http.ResponseWriter, err error, fallback string) {
	appErr, ok := apperror.As(err)
	if !ok {
		response.InternalServerError(w, fallback)
		return
	}

	body := errorBody{
		Code:    appErr.Code,
		Kind:    appErr.Kind.String(),
		Details: appErr.Details,
	}

	switch appErr.Kind {
	case apperror.KindNotFound:
		response.NotFound(w, appErr.Message, body)
	case apperror.KindValidation, apperror.KindAvailability, apperror.KindConflict, apperror.KindState:
		response.BadRequest(w, appErr.Message, body)
	default:
		response.InternalServerError(w, fallback)
	}
}
