package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/anicoll/ev-reimbursement/internal/pkg/auth"
	"github.com/anicoll/ev-reimbursement/internal/pkg/database"
	"github.com/anicoll/ev-reimbursement/internal/pkg/model"
	"github.com/anicoll/ev-reimbursement/internal/pkg/report"
	"github.com/anicoll/ev-reimbursement/internal/pkg/spotprice"
	"github.com/anicoll/ev-reimbursement/internal/pkg/tou"
	"github.com/anicoll/ev-reimbursement/internal/pkg/usage"
)

var errBadRequest = errors.New("bad request")

var statusByError = []struct {
	err    error
	status int
}{
	{errBadRequest, http.StatusBadRequest},
	{model.ErrInvalidSessionWindow, http.StatusBadRequest},
	{model.ErrNegativeEnergy, http.StatusBadRequest},
	{model.ErrUnknownPolicy, http.StatusBadRequest},
	{tou.ErrInvalidWindow, http.StatusBadRequest},
	{tou.ErrOverlappingWindows, http.StatusBadRequest},
	{tou.ErrOverlappingProfiles, http.StatusConflict},
	{usage.ErrEmptyFile, http.StatusBadRequest},
	{usage.ErrMissingColumns, http.StatusBadRequest},
	{usage.ErrUnsupportedFormat, http.StatusUnsupportedMediaType},
	{report.ErrUnknownFormat, http.StatusBadRequest},
	{auth.ErrMissingToken, http.StatusUnauthorized},
	{auth.ErrInvalidToken, http.StatusUnauthorized},
	{auth.ErrForbidden, http.StatusForbidden},
	{database.ErrNotFound, http.StatusNotFound},
	{spotprice.ErrNotPublished, http.StatusNotFound},
	{spotprice.ErrUpstream, http.StatusBadGateway},
}

func statusOf(err error) int {
	for _, e := range statusByError {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

type errorResponse struct {
	Error string `json:"error"`
}

func handleError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		zap.L().Error("request failed", zap.Error(err))
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("failed to write response", zap.Error(err))
	}
}
