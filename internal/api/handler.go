package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"medstock/m/domain"
	"medstock/m/internal/auth"
	"medstock/m/internal/directory"
	"medstock/m/internal/geo"
	"medstock/m/internal/oversight"
	"medstock/m/internal/pharmacy"
	"medstock/m/internal/phc"
)

type ctxKey string

const ctxClaims ctxKey = "claims"

// Geocoder resolves an address to coordinates.
type Geocoder interface {
	Search(ctx context.Context, address string) (*geo.GeocodeResult, error)
}

// Services are the dependencies served over HTTP.
type Services struct {
	Session   *auth.Session
	Tokens    *auth.TokenIssuer
	Pharmacy  *pharmacy.Service
	PHC       *phc.Service
	Oversight *oversight.Service
	Directory *directory.Service
	Geocoder  Geocoder
}

// Handler bundles dependencies for HTTP handlers.
type Handler struct {
	svc         Services
	corsOrigins []string
	logger      *zap.Logger
}

// New constructs a Handler.
func New(svc Services, corsOrigins []string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(corsOrigins) == 0 {
		corsOrigins = []string{"*"}
	}
	return &Handler{svc: svc, corsOrigins: corsOrigins, logger: logger}
}

// Router wires up the HTTP API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	r.Use(middleware.RequestID)
	r.Use(h.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.health)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/google", h.signInWithGoogle)
		r.Group(func(protected chi.Router) {
			protected.Use(h.authMiddleware)
			protected.Post("/sign-out", h.signOut)
			protected.Get("/me", h.me)
			protected.Put("/role", h.setRole)
		})
	})

	r.Route("/public", func(r chi.Router) {
		r.Get("/pharmacies", h.searchPharmacies)
		r.Get("/drugs", h.searchDrugs)
	})

	r.Route("/geo", func(r chi.Router) {
		r.Get("/geocode", h.geocode)
		r.Get("/map-url", h.mapURL)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(h.authMiddleware)

		pr.Route("/pharmacy", func(r chi.Router) {
			r.Use(h.requireArea(domain.AreaPharmacy))
			r.Get("/inventory", h.pharmacyInventory)
			r.Post("/inventory", h.pharmacyAddStock)
			r.Post("/inventory/{id}/stock", h.pharmacyAdjustStock)
			r.Get("/sales", h.pharmacySales)
			r.Post("/sales", h.pharmacyCreateSale)
			r.Get("/reports/sales/daily", h.salesSummary(pharmacy.PeriodDaily))
			r.Get("/reports/sales/monthly", h.salesSummary(pharmacy.PeriodMonthly))
		})

		pr.Route("/phc", func(r chi.Router) {
			r.Use(h.requireArea(domain.AreaPHC))
			r.Get("/patients", h.phcPatients)
			r.Post("/patients", h.phcCreatePatient)
			r.Get("/patients/{id}", h.phcPatient)
			r.Get("/inventory", h.phcInventory)
			r.Post("/inventory", h.phcRestock)
			r.Get("/inventory/expiring", h.phcExpiring)
			r.Get("/masterlist", h.phcMasterlist)
			r.Get("/dispenses", h.phcDispenses)
			r.Post("/dispenses", h.phcDispense)
			r.Get("/staff", h.phcStaff)
			r.Post("/staff", h.phcAddStaff)
			r.Post("/staff/{id}/verify-pin", h.phcVerifyPIN)
			r.Get("/settings", h.phcSettings)
			r.Put("/settings", h.phcUpdateSettings)
		})

		pr.Route("/oversight", func(r chi.Router) {
			r.Use(h.requireArea(domain.AreaOversight))
			r.Get("/facilities", h.oversightFacilities)
			r.Get("/summary", h.oversightSummary)
			r.Get("/export", h.oversightExport)
		})
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.logger.Info("http request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			respondError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		claims, err := h.svc.Tokens.Parse(strings.TrimSpace(header[len("Bearer "):]))
		if err != nil {
			respondError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		ctx := context.WithValue(r.Context(), ctxClaims, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireArea gates on the live session as well as the token: a token issued
// before sign-out or before a role change no longer opens any area.
func (h *Handler) requireArea(area domain.Area) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := claimsFrom(r.Context())
			if !ok {
				respondError(w, http.StatusUnauthorized, "missing role")
				return
			}
			user, ok := h.svc.Session.Current()
			if !ok || user.UID != claims.UID {
				respondError(w, http.StatusUnauthorized, "not signed in")
				return
			}
			if user.Role != claims.Role {
				respondError(w, http.StatusUnauthorized, "token role is out of date")
				return
			}
			if !claims.Role.CanAccess(area) {
				respondError(w, http.StatusForbidden, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func claimsFrom(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(ctxClaims).(*auth.Claims)
	return claims, ok && claims != nil
}

// Helpers

func decodeJSON(r *http.Request, dest interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps domain and boundary errors onto HTTP statuses.
func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	if status == http.StatusInternalServerError {
		respondError(w, status, "internal error")
		return
	}
	respondError(w, status, strings.ReplaceAll(err.Error(), "\n", ": "))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthenticated), errors.Is(err, domain.ErrInvalidPIN):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, geo.ErrLocationNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientStock):
		return http.StatusUnprocessableEntity
	case errors.Is(err, geo.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, geo.ErrUpstream):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
