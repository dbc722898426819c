package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"credauth/internal/domain"
	"credauth/internal/dto"
	obsmw "credauth/internal/observability/middleware"
	"credauth/internal/service"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter mounts the thin JSON adapters over the auth and account
// services. Request validation beyond JSON decoding belongs to callers.
func NewRouter(auth service.AuthService, accounts service.AccountService) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(obsmw.WithMetrics)
	r.Use(chimw.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1/auth", func(r chi.Router) {
		r.Post("/register", func(w http.ResponseWriter, req *http.Request) {
			var body dto.RegisterRequest
			if !decode(w, req, &body) {
				return
			}
			res, err := auth.Register(req.Context(), body)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, res)
		})

		r.Post("/login", func(w http.ResponseWriter, req *http.Request) {
			var body dto.LoginRequest
			if !decode(w, req, &body) {
				return
			}
			res, err := auth.Login(req.Context(), body)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, res)
		})

		r.Post("/verify-email", func(w http.ResponseWriter, req *http.Request) {
			var body dto.VerifyEmailRequest
			if !decode(w, req, &body) {
				return
			}
			res, err := auth.VerifyEmail(req.Context(), body)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, res)
		})

		r.Post("/verify-email/link", func(w http.ResponseWriter, req *http.Request) {
			var body dto.VerifyEmailByTokenRequest
			if !decode(w, req, &body) {
				return
			}
			res, err := auth.VerifyEmailByToken(req.Context(), body.Token)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, res)
		})

		r.Post("/resend-verification", func(w http.ResponseWriter, req *http.Request) {
			var body dto.ResendVerificationRequest
			if !decode(w, req, &body) {
				return
			}
			res, err := auth.ResendVerification(req.Context(), body)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, res)
		})

		r.Post("/forget-password", func(w http.ResponseWriter, req *http.Request) {
			var body dto.ForgetPasswordRequest
			if !decode(w, req, &body) {
				return
			}
			res, err := auth.ForgetPassword(req.Context(), body.Email)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, res)
		})

		r.Post("/verify-forgot-password-otp", func(w http.ResponseWriter, req *http.Request) {
			var body dto.VerifyEmailRequest
			if !decode(w, req, &body) {
				return
			}
			res, err := auth.VerifyForgotPasswordOTP(req.Context(), body)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, res)
		})

		r.Post("/reset-password", func(w http.ResponseWriter, req *http.Request) {
			var body dto.ResetPasswordRequest
			if !decode(w, req, &body) {
				return
			}
			res, err := auth.ResetPassword(req.Context(), body, bearerToken(req))
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, res)
		})

		r.Post("/change-password", func(w http.ResponseWriter, req *http.Request) {
			var body dto.ChangePasswordRequest
			if !decode(w, req, &body) {
				return
			}
			res, err := auth.ChangePassword(req.Context(), bearerToken(req), body)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, res)
		})
	})

	r.Route("/v1/accounts", func(r chi.Router) {
		r.Get("/{id}", func(w http.ResponseWriter, req *http.Request) {
			id, err := uuid.Parse(chi.URLParam(req, "id"))
			if err != nil {
				http.Error(w, "invalid account id", http.StatusBadRequest)
				return
			}
			res, err := accounts.GetProfile(req.Context(), id)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, res)
		})

		r.Patch("/{id}/status", func(w http.ResponseWriter, req *http.Request) {
			id, err := uuid.Parse(chi.URLParam(req, "id"))
			if err != nil {
				http.Error(w, "invalid account id", http.StatusBadRequest)
				return
			}
			var body struct {
				Status string `json:"status"`
			}
			if !decode(w, req, &body) {
				return
			}
			res, err := accounts.UpdateStatus(req.Context(), id, domain.Status(body.Status))
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, res)
		})

		r.Patch("/{id}/role", func(w http.ResponseWriter, req *http.Request) {
			id, err := uuid.Parse(chi.URLParam(req, "id"))
			if err != nil {
				http.Error(w, "invalid account id", http.StatusBadRequest)
				return
			}
			var body struct {
				Role string `json:"role"`
			}
			if !decode(w, req, &body) {
				return
			}
			res, err := accounts.UpdateRole(req.Context(), id, domain.Role(body.Role))
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, res)
		})
	})

	return r
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrExpired),
		errors.Is(err, domain.ErrInvalidToken):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrDispatch):
		status = http.StatusBadGateway
	case errors.Is(err, domain.ErrInvalidCredential),
		errors.Is(err, domain.ErrMismatch),
		errors.Is(err, domain.ErrInvalidState):
		status = http.StatusBadRequest
	}
	http.Error(w, err.Error(), status)
}
