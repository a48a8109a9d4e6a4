package church

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi"

	"github.com/lifegate/church-mgmt/internal/access"
	"github.com/lifegate/church-mgmt/internal/transport"
	"github.com/lifegate/church-mgmt/pkg/logger"
)

type ServiceAPI interface {
	CreateChurch(sess *access.Session, levelCode string, dto CreateChurchDTO) (*Church, error)
	GetChurchByCode(sess *access.Session, code string) (*Church, error)
	GetAllChurches(sess *access.Session, status string) ([]*Church, error)
	GetChurchesByLevel(sess *access.Session, levelCode, status string) ([]*Church, error)
	UpdateChurch(sess *access.Session, code string, dto UpdateChurchDTO) (*Church, error)
	ApproveChurch(sess *access.Session, code string) (*Church, error)
	ActivateChurch(sess *access.Session, code string) (*Church, error)
	DeactivateChurch(sess *access.Session, code string) (*Church, error)
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

func (h *Handler) CreateChurch(w http.ResponseWriter, r *http.Request) {
	sess, ok := access.SessionFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	levelCode := strings.ToUpper(chi.URLParam(r, "levelCode"))

	var dto CreateChurchDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateChurch: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ch, err := h.Service.CreateChurch(sess, levelCode, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("CreateChurch: church created",
		"code", ch.Code,
		"level_code", ch.LevelCode,
		"usercode", sess.Usercode)

	h.WriteJSON(w, http.StatusCreated, ch)
}

func (h *Handler) GetChurch(w http.ResponseWriter, r *http.Request) {
	sess, ok := access.SessionFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	code := chi.URLParam(r, "code")

	ch, err := h.Service.GetChurchByCode(sess, code)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ch)
}

func (h *Handler) GetAllChurches(w http.ResponseWriter, r *http.Request) {
	sess, ok := access.SessionFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	status := strings.ToUpper(r.URL.Query().Get("status"))

	churches, err := h.Service.GetAllChurches(sess, status)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"churches": churches})
}

func (h *Handler) GetChurchesByLevel(w http.ResponseWriter, r *http.Request) {
	sess, ok := access.SessionFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	levelCode := chi.URLParam(r, "levelCode")
	status := strings.ToUpper(r.URL.Query().Get("status"))

	churches, err := h.Service.GetChurchesByLevel(sess, levelCode, status)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"churches": churches})
}

func (h *Handler) UpdateChurch(w http.ResponseWriter, r *http.Request) {
	sess, ok := access.SessionFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	code := chi.URLParam(r, "code")

	var dto UpdateChurchDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("UpdateChurch: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ch, err := h.Service.UpdateChurch(sess, code, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ch)
}

func (h *Handler) ApproveChurch(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Service.ApproveChurch)
}

func (h *Handler) ActivateChurch(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Service.ActivateChurch)
}

func (h *Handler) DeactivateChurch(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Service.DeactivateChurch)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, op func(*access.Session, string) (*Church, error)) {
	sess, ok := access.SessionFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	code := chi.URLParam(r, "code")

	ch, err := op(sess, code)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("church state changed", "code", ch.Code, "status", ch.Status, "usercode", sess.Usercode)
	h.WriteJSON(w, http.StatusOK, ch)
}
