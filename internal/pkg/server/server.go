package server

import (
	"context"
	"net/http"
	"time"

	"github.com/getkin/kin-openapi/routers"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/anicoll/ev-reimbursement/internal/pkg/auth"
	"github.com/anicoll/ev-reimbursement/internal/pkg/metrics"
	"github.com/anicoll/ev-reimbursement/internal/pkg/model"
	"github.com/anicoll/ev-reimbursement/internal/pkg/pricing"
	"github.com/anicoll/ev-reimbursement/internal/pkg/reimbursement"
	"github.com/anicoll/ev-reimbursement/pkg/api"
)

var _ api.ServerInterface = (*server)(nil)

type reimbursementService interface {
	Location() *time.Location
	Employee(ctx context.Context, id uuid.UUID) (model.Employee, error)
	ImportSessions(ctx context.Context, employeeID uuid.UUID, sessions []model.ChargingSession) (int, error)
	Calculate(ctx context.Context, employeeID uuid.UUID, month model.Month) (pricing.MonthlyReport, error)
	Reimburse(ctx context.Context, employeeID uuid.UUID, month model.Month) (pricing.MonthlyReport, model.Reimbursement, error)
	Quote(ctx context.Context, req reimbursement.QuoteRequest) (reimbursement.Quote, error)
	SpotPrices(ctx context.Context, area model.PriceArea, from, to model.Date) (model.SpotPrices, error)
}

type store interface {
	Ping(ctx context.Context) error
	UpsertEmployee(ctx context.Context, e model.Employee) error
	GetTariffProfiles(ctx context.Context, organizationID uuid.UUID) (model.TariffProfiles, error)
	UpsertTariffProfile(ctx context.Context, profile model.TariffProfile) error
	GetReimbursement(ctx context.Context, employeeID uuid.UUID, month model.Month) (model.Reimbursement, error)
}

const maxUploadBytes = 32 << 20

type server struct {
	svc            reimbursementService
	store          store
	openapi        routers.Router
	secret         []byte
	publishTimeout time.Duration
	logger         *zap.Logger
}

// WithPublishTimeout bounds ledger writes, which are not cancelled when the client goes away.
func WithPublishTimeout(d time.Duration) func(*server) {
	return func(s *server) {
		s.publishTimeout = d
	}
}

func New(svc reimbursementService, st store, jwtSecret []byte, opts ...func(*server)) (*server, error) {
	router, err := loadRouter()
	if err != nil {
		return nil, err
	}
	s := &server{
		svc:            svc,
		store:          st,
		openapi:        router,
		secret:         jwtSecret,
		publishTimeout: 30 * time.Second,
		logger:         zap.L(),
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Handler builds the routed HTTP handler. Authentication and request
// validation run on the router so they precede parameter binding.
func (s *server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(LoggingMiddleware, auth.NewMiddleware(s.secret, "/healthz", "/metrics").Wrap, s.validate)
	return api.HandlerWithOptions(s, api.GorillaServerOptions{
		BaseRouter: r,
		ErrorHandlerFunc: func(w http.ResponseWriter, _ *http.Request, err error) {
			handleError(w, badRequest(err))
		},
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// LoggingMiddleware logs and measures every routed request.
func LoggingMiddleware(next http.Handler) http.Handler {
	logger := zap.L()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		origin := r.Header.Get("Origin")
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		}
		next.ServeHTTP(rec, r)

		var route string
		if cur := mux.CurrentRoute(r); cur != nil {
			route, _ = cur.GetPathTemplate()
		}
		metrics.ObserveHTTP(route, r.Method, rec.status, time.Since(started))
		logger.Info(r.RequestURI,
			zap.String("method", r.Method),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(started)))
	})
}
