package churchlead

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi"

	"github.com/lifegate/church-mgmt/internal/access"
	"github.com/lifegate/church-mgmt/internal/church"
	"github.com/lifegate/church-mgmt/internal/transport"
	"github.com/lifegate/church-mgmt/pkg/logger"
)

type ServiceAPI interface {
	GetChurchLeads(sess *access.Session, churchCode, status string) ([]*ChurchLead, error)
	GetCurrentLead(sess *access.Session, churchCode string) (*ChurchLead, error)
	Map(sess *access.Session, churchCode, leadChurchCode string) (*ChurchLead, error)
	Unmap(sess *access.Session, churchCode string) ([]*ChurchLead, error)
	Approve(sess *access.Session, churchCode, leadChurchCode string) (*ChurchLead, error)
	GetDescendants(sess *access.Session, rootCode, levelCode, status string) ([]*Descendant, error)
	GetChurchesByLead(sess *access.Session, leadCode, levelCode, status string) ([]*church.Church, error)
	GetBranchesByChurchLead(sess *access.Session, rootCode, status string) ([]*church.Church, error)
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

func (h *Handler) GetChurchLeads(w http.ResponseWriter, r *http.Request) {
	sess, ok := access.SessionFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	churchCode := chi.URLParam(r, "code")
	status := strings.ToUpper(r.URL.Query().Get("status"))

	leads, err := h.Service.GetChurchLeads(sess, churchCode, status)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"church_leads": leads})
}

func (h *Handler) GetCurrentLead(w http.ResponseWriter, r *http.Request) {
	sess, ok := access.SessionFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	churchCode := chi.URLParam(r, "code")

	lead, err := h.Service.GetCurrentLead(sess, churchCode)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, lead)
}

func (h *Handler) MapChurchLead(w http.ResponseWriter, r *http.Request) {
	sess, ok := access.SessionFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	churchCode := chi.URLParam(r, "code")
	leadChurchCode := chi.URLParam(r, "leadCode")

	lead, err := h.Service.Map(sess, churchCode, leadChurchCode)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("MapChurchLead: mapping created",
		"church_code", lead.ChurchCode,
		"lead_church_code", lead.LeadChurchCode,
		"usercode", sess.Usercode)

	h.WriteJSON(w, http.StatusCreated, lead)
}

func (h *Handler) UnmapChurchLead(w http.ResponseWriter, r *http.Request) {
	sess, ok := access.SessionFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	churchCode := chi.URLParam(r, "code")

	leads, err := h.Service.Unmap(sess, churchCode)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"church_leads": leads})
}

func (h *Handler) ApproveChurchLead(w http.ResponseWriter, r *http.Request) {
	sess, ok := access.SessionFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	churchCode := chi.URLParam(r, "code")
	leadChurchCode := chi.URLParam(r, "leadCode")

	lead, err := h.Service.Approve(sess, churchCode, leadChurchCode)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("ApproveChurchLead: mapping approved",
		"church_code", lead.ChurchCode,
		"lead_church_code", lead.LeadChurchCode,
		"usercode", sess.Usercode)

	h.WriteJSON(w, http.StatusOK, lead)
}

func (h *Handler) GetDescendants(w http.ResponseWriter, r *http.Request) {
	sess, ok := access.SessionFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	rootCode := chi.URLParam(r, "code")
	levelCode := strings.ToUpper(r.URL.Query().Get("level_code"))
	status := strings.ToUpper(r.URL.Query().Get("status"))

	descendants, err := h.Service.GetDescendants(sess, rootCode, levelCode, status)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"descendants": descendants})
}

func (h *Handler) GetChurchesByLead(w http.ResponseWriter, r *http.Request) {
	sess, ok := access.SessionFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	leadCode := chi.URLParam(r, "code")
	levelCode := strings.ToUpper(r.URL.Query().Get("level_code"))
	status := strings.ToUpper(r.URL.Query().Get("status"))

	churches, err := h.Service.GetChurchesByLead(sess, leadCode, levelCode, status)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"churches": churches})
}

func (h *Handler) GetBranches(w http.ResponseWriter, r *http.Request) {
	sess, ok := access.SessionFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	rootCode := chi.URLParam(r, "code")
	status := strings.ToUpper(r.URL.Query().Get("status"))

	branches, err := h.Service.GetBranchesByChurchLead(sess, rootCode, status)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"branches": branches})
}
