package auth

import (
	"log/slog"
	"net/http"

	"github.com/eoffice/office-management/internal"
	"github.com/eoffice/office-management/internal/transport"
	"github.com/eoffice/office-management/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

// Login handles POST /auth/token. The endpoint accepts form-encoded
// credentials (OAuth2 password flow shape) and returns a bearer token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	dto := LoginDTO{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}

	tokens, err := h.Service.Login(dto)
	if err != nil {
		switch err {
		case ErrInvalidCredentials:
			h.Logger.Warn("login failed", "username", dto.Username)
			h.writeUnauthorized(w, internal.ErrInvalidCredentials)
		default:
			if _, ok := err.(ValidationError); ok {
				h.WriteError(w, http.StatusUnprocessableEntity, err.Error())
			} else {
				h.Logger.Error("login failed", "error", err)
				h.WriteError(w, http.StatusInternalServerError, "internal server error")
			}
		}
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

// AuthMiddleware validates the bearer token and stores the resolved user in
// the request context. Every protected route sits behind it.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.writeUnauthorized(w, internal.NewUnauthenticatedError("missing authorization token", internal.ErrCodeInvalidToken))
			return
		}

		user, err := h.Service.ResolveCurrentUser(token)
		if err != nil {
			h.writeUnauthorized(w, internal.ErrInvalidToken.WithCause(err))
			return
		}

		ctx := ContextWithUser(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequirePermission builds a guard middleware evaluated before the handler
// runs, so no mutation starts for a caller that lacks the grant.
func (h *Handler) RequirePermission(permission Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || user == nil {
				h.writeUnauthorized(w, internal.ErrInvalidToken)
				return
			}

			if err := h.Service.Require(user, permission); err != nil {
				switch err {
				case ErrNoRoleAssigned:
					h.writeUnauthorized(w, internal.ErrNoRoleAssigned.WithCause(err))
				case ErrMissingPermission:
					h.Logger.Warn("access denied: insufficient permissions",
						"user_id", user.ID,
						"required_permission", permission)
					h.WriteAppError(w, internal.ErrForbidden)
				default:
					h.Logger.Error("authorization check failed", "error", err, "user_id", user.ID)
					h.WriteError(w, http.StatusInternalServerError, "internal server error")
				}
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (h *Handler) writeUnauthorized(w http.ResponseWriter, appErr *internal.AppError) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	h.WriteAppError(w, appErr)
}
