package hierarchy

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi"

	"github.com/lifegate/church-mgmt/internal/access"
	"github.com/lifegate/church-mgmt/internal/transport"
	"github.com/lifegate/church-mgmt/pkg/logger"
)

type ServiceAPI interface {
	ListLevels(sess *access.Session, activeOnly bool) ([]*Level, error)
	GetLevel(sess *access.Session, code string) (*Level, error)
	ActivateLevel(sess *access.Session, code string) (*Level, error)
	DeactivateLevel(sess *access.Session, code string) (*Level, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger.L()),
		Service:     service,
	}
}

func (h *Handler) ListLevels(w http.ResponseWriter, r *http.Request) {
	sess, ok := access.SessionFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	activeOnly := r.URL.Query().Get("active") == "true"

	levels, err := h.Service.ListLevels(sess, activeOnly)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"levels": levels})
}

func (h *Handler) GetLevel(w http.ResponseWriter, r *http.Request) {
	sess, ok := access.SessionFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	code := strings.ToUpper(chi.URLParam(r, "code"))

	level, err := h.Service.GetLevel(sess, code)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, level)
}

func (h *Handler) ActivateLevel(w http.ResponseWriter, r *http.Request) {
	h.setLevelState(w, r, true)
}

func (h *Handler) DeactivateLevel(w http.ResponseWriter, r *http.Request) {
	h.setLevelState(w, r, false)
}

func (h *Handler) setLevelState(w http.ResponseWriter, r *http.Request, active bool) {
	sess, ok := access.SessionFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	code := strings.ToUpper(chi.URLParam(r, "code"))

	var (
		level *Level
		err   error
	)
	if active {
		level, err = h.Service.ActivateLevel(sess, code)
	} else {
		level, err = h.Service.DeactivateLevel(sess, code)
	}
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, level)
}
