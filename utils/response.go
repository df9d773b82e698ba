package utils

import (
	"errors"
	"net/http"
)

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type OkResponse[T any] struct {
	Payload T `json:"payload"`
}

func CreateOkResponse[T any](obj T) (int, OkResponse[T]) {
	return http.StatusOK, OkResponse[T]{Payload: obj}
}

func CreateCreatedResponse[T any](obj T) (int, OkResponse[T]) {
	return http.StatusCreated, OkResponse[T]{Payload: obj}
}

func CreateErrorResponse(err error) (int, ErrorResponse) {
	switch {
	case errors.Is(err, ErrorValidationError):
		return http.StatusBadRequest, ErrorResponse{Code: 400, Message: err.Error()}
	case errors.Is(err, ErrorInvalidSlug):
		return http.StatusBadRequest, ErrorResponse{Code: 1003, Message: err.Error()}
	case errors.Is(err, ErrorSelfGrant):
		return http.StatusBadRequest, ErrorResponse{Code: 2005, Message: err.Error()}
	case errors.Is(err, ErrorOwnerLike):
		return http.StatusBadRequest, ErrorResponse{Code: 2006, Message: err.Error()}
	case errors.Is(err, ErrorProfilePrivate):
		return http.StatusBadRequest, ErrorResponse{Code: 2004, Message: err.Error()}
	case errors.Is(err, ErrorUnauthorized):
		return http.StatusUnauthorized, ErrorResponse{Code: 401, Message: err.Error()}
	case errors.Is(err, ErrorTokenInvalid):
		return http.StatusUnauthorized, ErrorResponse{Code: 498, Message: err.Error()}
	case errors.Is(err, ErrorInvalidCredentials):
		return http.StatusUnauthorized, ErrorResponse{Code: 1001, Message: err.Error()}
	case errors.Is(err, ErrorGoogleOnlyAccount):
		return http.StatusUnauthorized, ErrorResponse{Code: 1002, Message: err.Error()}
	case errors.Is(err, ErrorOpenIDError):
		return http.StatusUnauthorized, ErrorResponse{Code: 1004, Message: err.Error()}
	case errors.Is(err, ErrorForbidden):
		return http.StatusForbidden, ErrorResponse{Code: 403, Message: err.Error()}
	case errors.Is(err, ErrorGoogleAuthRequired):
		return http.StatusForbidden, ErrorResponse{Code: 1403, Message: err.Error()}
	case errors.Is(err, ErrorNotFound):
		return http.StatusNotFound, ErrorResponse{Code: -1, Message: err.Error()}
	case errors.Is(err, ErrorUserNotFound):
		return http.StatusNotFound, ErrorResponse{Code: 1404, Message: err.Error()}
	case errors.Is(err, ErrorUserExists):
		return http.StatusConflict, ErrorResponse{Code: 1005, Message: err.Error()}
	case errors.Is(err, ErrorCollectionExists):
		return http.StatusConflict, ErrorResponse{Code: 2001, Message: err.Error()}
	case errors.Is(err, ErrorDuplicateItem):
		return http.StatusConflict, ErrorResponse{Code: 2002, Message: err.Error()}
	case errors.Is(err, ErrorTooManyRequests):
		return http.StatusTooManyRequests, ErrorResponse{Code: 429, Message: err.Error()}
	case errors.Is(err, ErrorGoogleQuotaExceeded):
		return http.StatusTooManyRequests, ErrorResponse{Code: 1429, Message: err.Error()}
	case errors.Is(err, ErrorGoogleUnavailable):
		return http.StatusBadGateway, ErrorResponse{Code: 1502, Message: err.Error()}
	}

	return http.StatusInternalServerError, ErrorResponse{Code: 500, Message: ErrorServer.Error()}
}

func CreateValidationError(err error) (int, ErrorResponse) {
	return http.StatusUnprocessableEntity, ErrorResponse{Code: 422, Message: err.Error()}
}
