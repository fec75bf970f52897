package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/radif/blobfiles/internal/response"
)

// Handler holds HTTP handlers for auth endpoints.
type Handler struct {
	svc *Service
	log *slog.Logger
}

// NewHandler creates a new auth Handler.
func NewHandler(svc *Service, log *slog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

type tokenRequest struct {
	ApplicationID string `json:"applicationId" example:"app"`
	MasterKey     string `json:"masterKey"     example:"s3cr3t"`
}

type tokenData struct {
	Token     string    `json:"token"     example:"eyJhbGci..."`
	ExpiresAt time.Time `json:"expiresAt" example:"2026-10-20T14:48:34Z"`
}

// IssueToken godoc
//
//	@Summary		Issue application token
//	@Description	Exchange the application ID and master key for a Bearer token used by the file write endpoints.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		tokenRequest	true	"Application credentials"
//	@Success		200		{object}	response.Envelope{data=tokenData}
//	@Failure		400		{object}	response.Envelope
//	@Failure		401		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/auth/token [post]
func (h *Handler) IssueToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if req.ApplicationID == "" || req.MasterKey == "" {
		response.BadRequest(w, "applicationId and masterKey are required")
		return
	}

	tok, err := h.svc.IssueToken(req.ApplicationID, req.MasterKey)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Unauthorized(w, "invalid application credentials")
			return
		}
		h.log.ErrorContext(r.Context(), "issue token failed", slog.String("error", err.Error()))
		response.InternalError(w)
		return
	}

	response.OK(w, tokenData{Token: tok.Token, ExpiresAt: tok.ExpiresAt})
}
