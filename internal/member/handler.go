package member

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/lifegate/church-mgmt/internal/access"
	"github.com/lifegate/church-mgmt/internal/transport"
	"github.com/lifegate/church-mgmt/pkg/logger"
)

type ServiceAPI interface {
	CreateMember(sess *access.Session, dto CreateMemberDTO) (*Member, error)
	GetMemberByCode(sess *access.Session, code string) (*Member, error)
	GetAllMembers(sess *access.Session, activeOnly bool) ([]*Member, error)
	GetMembersByBranch(sess *access.Session, branchCode string, activeOnly bool) ([]*Member, error)
	UpdateMember(sess *access.Session, code string, dto UpdateMemberDTO) (*Member, error)
	ActivateMember(sess *access.Session, code string) (*Member, error)
	DeactivateMember(sess *access.Session, code string) (*Member, error)
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

func (h *Handler) CreateMember(w http.ResponseWriter, r *http.Request) {
	sess, ok := access.SessionFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateMemberDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateMember: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	m, err := h.Service.CreateMember(sess, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("CreateMember: member created",
		"member_code", m.Code,
		"branch_code", m.BranchCode,
		"usercode", sess.Usercode)

	h.WriteJSON(w, http.StatusCreated, m)
}

func (h *Handler) GetMember(w http.ResponseWriter, r *http.Request) {
	sess, ok := access.SessionFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	code := chi.URLParam(r, "code")

	m, err := h.Service.GetMemberByCode(sess, code)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, m)
}

func (h *Handler) GetAllMembers(w http.ResponseWriter, r *http.Request) {
	sess, ok := access.SessionFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	activeOnly := r.URL.Query().Get("active") == "true"

	members, err := h.Service.GetAllMembers(sess, activeOnly)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"members": members})
}

func (h *Handler) GetMembersByBranch(w http.ResponseWriter, r *http.Request) {
	sess, ok := access.SessionFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	branchCode := chi.URLParam(r, "branchCode")
	activeOnly := r.URL.Query().Get("active") == "true"

	members, err := h.Service.GetMembersByBranch(sess, branchCode, activeOnly)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"members": members})
}

func (h *Handler) UpdateMember(w http.ResponseWriter, r *http.Request) {
	sess, ok := access.SessionFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	code := chi.URLParam(r, "code")

	var dto UpdateMemberDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("UpdateMember: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	m, err := h.Service.UpdateMember(sess, code, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, m)
}

func (h *Handler) ActivateMember(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Service.ActivateMember)
}

func (h *Handler) DeactivateMember(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Service.DeactivateMember)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, op func(*access.Session, string) (*Member, error)) {
	sess, ok := access.SessionFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	code := chi.URLParam(r, "code")

	m, err := op(sess, code)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, m)
}
