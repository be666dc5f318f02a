package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/regmon-lab/themis/pkg/domain/model"
	"github.com/regmon-lab/themis/pkg/domain/types"
	"github.com/regmon-lab/themis/pkg/usecase"
)

type templateRequest struct {
	Name                string `json:"name"`
	Policy              string `json:"policy"`
	OffsetDays          int    `json:"offset_days"`
	AlternateOffsetDays int    `json:"alternate_offset_days,omitempty"`
	Operator            string `json:"operator,omitempty"`
	Interval            string `json:"interval"`
	RepeatMonth         int    `json:"repeat_month,omitempty"`
	DepartmentID        string `json:"department_id"`
	Priority            int    `json:"priority"`
	Active              bool   `json:"active"`
	RegulatorContact    string `json:"regulator_contact,omitempty"`
	ComplianceContact   string `json:"compliance_contact,omitempty"`
	CircularDetails     string `json:"circular_details,omitempty"`
	ReturnNumber        string `json:"return_number,omitempty"`
}

type templateResponse struct {
	ID                  int64  `json:"id"`
	Name                string `json:"name"`
	Policy              string `json:"policy"`
	OffsetDays          int    `json:"offset_days"`
	AlternateOffsetDays int    `json:"alternate_offset_days,omitempty"`
	Operator            string `json:"operator,omitempty"`
	Interval            string `json:"interval"`
	RepeatMonth         int    `json:"repeat_month,omitempty"`
	DepartmentID        string `json:"department_id"`
	Priority            string `json:"priority"`
	Active              bool   `json:"active"`
	RegulatorContact    string `json:"regulator_contact,omitempty"`
	ComplianceContact   string `json:"compliance_contact,omitempty"`
	CircularDetails     string `json:"circular_details,omitempty"`
	ReturnNumber        string `json:"return_number,omitempty"`
	CreatedBy           string `json:"created_by"`
	CreatedAt           string `json:"created_at"`
	UpdatedBy           string `json:"updated_by"`
	UpdatedAt           string `json:"updated_at"`
}

func (req *templateRequest) toModel() *model.Template {
	return &model.Template{
		Name:                req.Name,
		Policy:              types.DueDatePolicy(req.Policy),
		OffsetDays:          req.OffsetDays,
		AlternateOffsetDays: req.AlternateOffsetDays,
		Operator:            types.ConditionalOperator(req.Operator),
		Interval:            types.RecurringInterval(req.Interval),
		RepeatMonth:         time.Month(req.RepeatMonth),
		DepartmentID:        types.DepartmentID(req.DepartmentID),
		Priority:            types.Priority(req.Priority),
		Active:              req.Active,
		RegulatorContact:    req.RegulatorContact,
		ComplianceContact:   req.ComplianceContact,
		CircularDetails:     req.CircularDetails,
		ReturnNumber:        req.ReturnNumber,
	}
}

func toTemplateResponse(tmpl *model.Template) *templateResponse {
	return &templateResponse{
		ID:                  tmpl.ID,
		Name:                tmpl.Name,
		Policy:              tmpl.Policy.String(),
		OffsetDays:          tmpl.OffsetDays,
		AlternateOffsetDays: tmpl.AlternateOffsetDays,
		Operator:            tmpl.Operator.String(),
		Interval:            tmpl.Interval.String(),
		RepeatMonth:         int(tmpl.RepeatMonth),
		DepartmentID:        tmpl.DepartmentID.String(),
		Priority:            tmpl.Priority.String(),
		Active:              tmpl.Active,
		RegulatorContact:    tmpl.RegulatorContact,
		ComplianceContact:   tmpl.ComplianceContact,
		CircularDetails:     tmpl.CircularDetails,
		ReturnNumber:        tmpl.ReturnNumber,
		CreatedBy:           tmpl.CreatedBy.String(),
		CreatedAt:           tmpl.CreatedAt.Format(time.RFC3339),
		UpdatedBy:           tmpl.UpdatedBy.String(),
		UpdatedAt:           tmpl.UpdatedAt.Format(time.RFC3339),
	}
}

func templateIDFrom(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "templateID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, goerr.Wrap(usecase.ErrInvalidInput, "invalid template ID", goerr.V("template_id", raw))
	}
	return id, nil
}

func (s *Server) createTemplate(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r.Context())
	if !ok {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	var req templateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, goerr.Wrap(usecase.ErrInvalidInput, "invalid request body"))
		return
	}

	created, err := s.uc.Templates.Create(r.Context(), actor, req.toModel())
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusCreated, toTemplateResponse(created))
}

func (s *Server) getTemplate(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r.Context())
	if !ok {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	id, err := templateIDFrom(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	tmpl, err := s.uc.Templates.Get(r.Context(), actor, id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, toTemplateResponse(tmpl))
}

func (s *Server) listTemplates(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r.Context())
	if !ok {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	templates, err := s.uc.Templates.List(r.Context(), actor)
	if err != nil {
		respondError(w, r, err)
		return
	}

	resp := make([]*templateResponse, 0, len(templates))
	for _, t := range templates {
		resp = append(resp, toTemplateResponse(t))
	}
	respondJSON(w, r, http.StatusOK, map[string]any{"templates": resp})
}

func (s *Server) updateTemplate(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r.Context())
	if !ok {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	id, err := templateIDFrom(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req templateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, goerr.Wrap(usecase.ErrInvalidInput, "invalid request body"))
		return
	}

	tmpl := req.toModel()
	tmpl.ID = id

	updated, err := s.uc.Templates.Update(r.Context(), actor, tmpl)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, toTemplateResponse(updated))
}

func (s *Server) deactivateTemplate(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r.Context())
	if !ok {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	id, err := templateIDFrom(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	updated, err := s.uc.Templates.Deactivate(r.Context(), actor, id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, toTemplateResponse(updated))
}
