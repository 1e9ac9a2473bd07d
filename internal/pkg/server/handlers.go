package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/anicoll/ev-reimbursement/internal/pkg/auth"
	"github.com/anicoll/ev-reimbursement/internal/pkg/contxt"
	"github.com/anicoll/ev-reimbursement/internal/pkg/database"
	"github.com/anicoll/ev-reimbursement/internal/pkg/metrics"
	"github.com/anicoll/ev-reimbursement/internal/pkg/model"
	"github.com/anicoll/ev-reimbursement/internal/pkg/pricing"
	"github.com/anicoll/ev-reimbursement/internal/pkg/report"
	"github.com/anicoll/ev-reimbursement/internal/pkg/tou"
	"github.com/anicoll/ev-reimbursement/internal/pkg/usage"
	"github.com/anicoll/ev-reimbursement/pkg/api"
)

type ImportResponse struct {
	Received int              `json:"received"`
	Imported int              `json:"imported"`
	Filtered int              `json:"filtered"`
	Skipped  []usage.RowError `json:"skipped,omitempty"`
}

type ReimburseResponse struct {
	Reimbursement model.Reimbursement   `json:"reimbursement"`
	Report        pricing.MonthlyReport `json:"report"`
}

func (s *server) GetHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.logger.Warn("health check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) GetMetrics(w http.ResponseWriter, r *http.Request) {
	metrics.Handler().ServeHTTP(w, r)
}

func (s *server) PostCalculate(w http.ResponseWriter, r *http.Request) {
	in, err := unmarshalPayload[api.CalculateRequest](r)
	if err != nil {
		handleError(w, err)
		return
	}
	req, err := quoteRequestFrom(*in)
	if err != nil {
		handleError(w, err)
		return
	}
	q, err := s.svc.Quote(r.Context(), req)
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (s *server) ListTariffProfiles(w http.ResponseWriter, r *http.Request) {
	caller, err := callerOf(r)
	if err != nil {
		handleError(w, err)
		return
	}
	profiles, err := s.store.GetTariffProfiles(r.Context(), caller.OrganizationID)
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lo.Ternary(profiles == nil, model.TariffProfiles{}, profiles))
}

func (s *server) PutTariffProfile(w http.ResponseWriter, r *http.Request, id api.ProfileID) {
	caller, err := adminOf(r)
	if err != nil {
		handleError(w, err)
		return
	}
	in, err := unmarshalPayload[api.TariffProfile](r)
	if err != nil {
		handleError(w, err)
		return
	}
	profile, err := tariffProfileFrom(*in)
	if err != nil {
		handleError(w, err)
		return
	}
	profile.ID = id
	profile.OrganizationID = caller.OrganizationID
	if err := tou.ValidateProfile(profile); err != nil {
		handleError(w, err)
		return
	}
	if err := s.store.UpsertTariffProfile(r.Context(), profile); err != nil {
		handleError(w, err)
		return
	}
	s.logger.Info("tariff profile stored", zap.String("profile", id.String()), zap.String("organization", caller.OrganizationID.String()))
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) PutEmployee(w http.ResponseWriter, r *http.Request, id api.EmployeeID) {
	caller, err := adminOf(r)
	if err != nil {
		handleError(w, err)
		return
	}
	in, err := unmarshalPayload[api.Employee](r)
	if err != nil {
		handleError(w, err)
		return
	}
	existing, err := s.svc.Employee(r.Context(), id)
	switch {
	case errors.Is(err, database.ErrNotFound):
	case err != nil:
		handleError(w, err)
		return
	case existing.OrganizationID != caller.OrganizationID:
		handleError(w, auth.ErrForbidden)
		return
	}

	area, err := priceAreaFrom(in.PriceArea)
	if err != nil {
		handleError(w, err)
		return
	}
	policy, err := policyFrom(in.Policy)
	if err != nil {
		handleError(w, err)
		return
	}
	employee := model.Employee{
		ID:             id,
		OrganizationID: caller.OrganizationID,
		Name:           in.Name,
		PriceArea:      area,
		Policy:         policy,
	}
	if err := s.store.UpsertEmployee(r.Context(), employee); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) ImportSessions(w http.ResponseWriter, r *http.Request, employeeID api.EmployeeID, params api.ImportSessionsParams) {
	employee, err := s.authorizedEmployee(r, employeeID)
	if err != nil {
		handleError(w, err)
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		handleError(w, badRequest(err))
		return
	}
	format, err := usage.DetectFormat("", r.Header.Get("Content-Type"), body[:min(len(body), 512)])
	if err != nil {
		handleError(w, err)
		return
	}

	importer := usage.New(s.svc.Location(), usage.WithRFID(lo.FromPtr(params.Rfid)))
	res, err := importer.Import(bytes.NewReader(body), format)
	if err != nil {
		handleError(w, err)
		return
	}
	n, err := s.svc.ImportSessions(r.Context(), employee.ID, res.Sessions)
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ImportResponse{
		Received: len(res.Sessions),
		Imported: n,
		Filtered: res.Filtered,
		Skipped:  res.Skipped,
	})
}

func (s *server) GetReimbursement(w http.ResponseWriter, r *http.Request, employeeID api.EmployeeID, m api.Month) {
	employee, month, err := s.employeeMonth(r, employeeID, m)
	if err != nil {
		handleError(w, err)
		return
	}
	stored, err := s.store.GetReimbursement(r.Context(), employee.ID, month)
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

func (s *server) PostReimbursement(w http.ResponseWriter, r *http.Request, employeeID api.EmployeeID, m api.Month) {
	employee, month, err := s.employeeMonth(r, employeeID, m)
	if err != nil {
		handleError(w, err)
		return
	}
	ctx, cancel := contxt.Detached(r.Context(), s.publishTimeout)
	defer cancel()

	rep, reimbursed, err := s.svc.Reimburse(ctx, employee.ID, month)
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ReimburseResponse{Reimbursement: reimbursed, Report: rep})
}

func (s *server) GetReport(w http.ResponseWriter, r *http.Request, employeeID api.EmployeeID, m api.Month, params api.GetReportParams) {
	employee, month, err := s.employeeMonth(r, employeeID, m)
	if err != nil {
		handleError(w, err)
		return
	}
	format, err := report.ParseFormat(string(lo.FromPtr(params.Format)))
	if err != nil {
		handleError(w, err)
		return
	}
	rep, err := s.svc.Calculate(r.Context(), employee.ID, month)
	if err != nil {
		handleError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := report.Write(&buf, format, rep, s.svc.Location()); err != nil {
		handleError(w, err)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.FileName(rep, format)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Warn("failed to write report", zap.Error(err))
	}
}

func (s *server) GetSpotPrices(w http.ResponseWriter, r *http.Request, a api.PriceArea, d api.Date) {
	area, err := priceAreaFrom(a)
	if err != nil {
		handleError(w, err)
		return
	}
	date, err := model.ParseDate(d)
	if err != nil {
		handleError(w, badRequest(err))
		return
	}
	prices, err := s.svc.SpotPrices(r.Context(), area, date, date)
	if err != nil {
		handleError(w, err)
		return
	}
	if len(prices) == 0 {
		handleError(w, fmt.Errorf("spot prices for %s %s: %w", area, date, database.ErrNotFound))
		return
	}
	writeJSON(w, http.StatusOK, prices)
}

func callerOf(r *http.Request) (auth.Identity, error) {
	caller, ok := auth.FromContext(r.Context())
	if !ok {
		return auth.Identity{}, auth.ErrMissingToken
	}
	return caller, nil
}

func adminOf(r *http.Request) (auth.Identity, error) {
	caller, err := callerOf(r)
	if err != nil {
		return auth.Identity{}, err
	}
	if !caller.IsAdmin() {
		return auth.Identity{}, auth.ErrForbidden
	}
	return caller, nil
}

// authorizedEmployee loads the employee in the path and checks that it belongs to the caller's organization.
func (s *server) authorizedEmployee(r *http.Request, id uuid.UUID) (model.Employee, error) {
	caller, err := callerOf(r)
	if err != nil {
		return model.Employee{}, err
	}
	employee, err := s.svc.Employee(r.Context(), id)
	if err != nil {
		return model.Employee{}, err
	}
	if employee.OrganizationID != caller.OrganizationID {
		return model.Employee{}, auth.ErrForbidden
	}
	return employee, nil
}

func (s *server) employeeMonth(r *http.Request, id uuid.UUID, m string) (model.Employee, model.Month, error) {
	employee, err := s.authorizedEmployee(r, id)
	if err != nil {
		return model.Employee{}, model.Month{}, err
	}
	month, err := model.ParseMonth(m)
	if err != nil {
		return model.Employee{}, model.Month{}, badRequest(err)
	}
	return employee, month, nil
}

func unmarshalPayload[T any](r *http.Request) (*T, error) {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	var out T
	if err := dec.Decode(&out); err != nil {
		return nil, badRequest(err)
	}
	return &out, nil
}
