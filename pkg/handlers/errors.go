package handlers

import (
	"errors"
	"net/http"

	"company-workspace-backend/pkg/database"
	"company-workspace-backend/pkg/services"
	"company-workspace-backend/pkg/utils"
)

// statusFor maps a service error kind to its HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrCompanyNotConfigured):
		return http.StatusPreconditionFailed
	case errors.Is(err, services.ErrNotAuthorized):
		return http.StatusForbidden
	case errors.Is(err, services.ErrAlreadyMember), errors.Is(err, services.ErrInvitationPending):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError writes the error envelope for err. A missing row is a
// 404. Other failures outside the error kinds use fallback as the message
// when one is given.
func writeServiceError(w http.ResponseWriter, err error, fallback string) {
	if database.IsNoRows(err) {
		utils.WriteNotFoundResponse(w, "Resource not found")
		return
	}

	status := statusFor(err)
	message := services.UserMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		message = fallback
	}
	utils.WriteErrorResponseWithCode(w, status, services.ErrorCode(err), message, "")
}

// writeInvalidInput answers a request body that failed decoding or validation
func writeInvalidInput(w http.ResponseWriter, details string) {
	utils.WriteErrorResponseWithCode(w, http.StatusBadRequest, services.ErrorCode(services.ErrInvalidInput),
		services.UserMessage(services.ErrInvalidInput), details)
}
