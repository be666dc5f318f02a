package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/regmon-lab/themis/pkg/domain/interfaces"
	"github.com/regmon-lab/themis/pkg/domain/model"
	"github.com/regmon-lab/themis/pkg/domain/types"
	"github.com/regmon-lab/themis/pkg/usecase"
	"github.com/regmon-lab/themis/pkg/utils/safe"
)

const dateLayout = "2006-01-02"

type taskResponse struct {
	ID                      int64  `json:"id"`
	Name                    string `json:"name"`
	TemplateID              int64  `json:"template_id,omitempty"`
	PeriodKey               string `json:"period_key,omitempty"`
	DueDate                 string `json:"due_date,omitempty"`
	BoardMeetingDate        string `json:"board_meeting_date,omitempty"`
	BoardMeetingDateApplied bool   `json:"board_meeting_date_applied"`
	Status                  string `json:"status"`
	DepartmentID            string `json:"department_id"`
	Priority                string `json:"priority"`
	RegulatorContact        string `json:"regulator_contact,omitempty"`
	ComplianceContact       string `json:"compliance_contact,omitempty"`
	CircularDetails         string `json:"circular_details,omitempty"`
	ReturnNumber            string `json:"return_number,omitempty"`
	ReasonForDelay          string `json:"reason_for_delay,omitempty"`
	DateOfReceipt           string `json:"date_of_receipt,omitempty"`
	DateForwarded           string `json:"date_forwarded,omitempty"`
	CreatedBy               string `json:"created_by"`
	CreatedAt               string `json:"created_at"`
	UpdatedBy               string `json:"updated_by"`
	UpdatedAt               string `json:"updated_at"`

	Capabilities *capabilityResponse `json:"capabilities,omitempty"`
}

type capabilityResponse struct {
	CanView   bool     `json:"can_view"`
	CanEdit   bool     `json:"can_edit"`
	CanRemark bool     `json:"can_remark"`
	Actions   []string `json:"actions"`
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

func toTaskResponse(task *model.Task) *taskResponse {
	return &taskResponse{
		ID:                      task.ID,
		Name:                    task.Name,
		TemplateID:              task.TemplateID,
		PeriodKey:               task.PeriodKey,
		DueDate:                 formatDate(task.DueDate),
		BoardMeetingDate:        formatDate(task.BoardMeetingDate),
		BoardMeetingDateApplied: task.BoardMeetingDateApplied,
		Status:                  task.Status.String(),
		DepartmentID:            task.DepartmentID.String(),
		Priority:                task.Priority.String(),
		RegulatorContact:        task.RegulatorContact,
		ComplianceContact:       task.ComplianceContact,
		CircularDetails:         task.CircularDetails,
		ReturnNumber:            task.ReturnNumber,
		ReasonForDelay:          task.ReasonForDelay,
		DateOfReceipt:           formatDate(task.DateOfReceipt),
		DateForwarded:           formatDate(task.DateForwarded),
		CreatedBy:               task.CreatedBy.String(),
		CreatedAt:               task.CreatedAt.Format(time.RFC3339),
		UpdatedBy:               task.UpdatedBy.String(),
		UpdatedAt:               task.UpdatedAt.Format(time.RFC3339),
	}
}

func toCapabilityResponse(caps usecase.Capabilities) *capabilityResponse {
	actions := make([]string, 0, len(caps.Actions))
	for _, a := range caps.Actions {
		actions = append(actions, a.String())
	}
	return &capabilityResponse{
		CanView:   caps.CanView,
		CanEdit:   caps.CanEdit,
		CanRemark: caps.CanRemark,
		Actions:   actions,
	}
}

func taskIDFrom(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "taskID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, goerr.Wrap(usecase.ErrInvalidInput, "invalid task ID", goerr.V("task_id", raw))
	}
	return id, nil
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r.Context())
	if !ok {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	id, err := taskIDFrom(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	task, err := s.uc.Tasks.Get(r.Context(), actor, id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	resp := toTaskResponse(task)
	resp.Capabilities = toCapabilityResponse(usecase.CapabilitiesFor(actor, task))
	respondJSON(w, r, http.StatusOK, resp)
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r.Context())
	if !ok {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	var opts []interfaces.ListTaskOption
	q := r.URL.Query()

	if raw := q.Get("status"); raw != "" {
		status, err := types.ParseTaskStatus(raw)
		if err != nil {
			respondError(w, r, goerr.Wrap(usecase.ErrInvalidInput, err.Error()))
			return
		}
		opts = append(opts, interfaces.WithStatus(status))
	}
	if raw := q.Get("department"); raw != "" {
		opts = append(opts, interfaces.WithDepartment(types.DepartmentID(raw)))
	}
	for name, opt := range map[string]func(time.Time) interfaces.ListTaskOption{
		"due_on":     interfaces.WithDueOn,
		"due_before": interfaces.WithDueBefore,
		"due_after":  interfaces.WithDueAfter,
	} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		date, err := time.Parse(dateLayout, raw)
		if err != nil {
			respondError(w, r, goerr.Wrap(usecase.ErrInvalidInput, "invalid date filter",
				goerr.V("param", name), goerr.V("value", raw)))
			return
		}
		opts = append(opts, opt(date))
	}

	tasks, err := s.uc.Tasks.List(r.Context(), actor, opts...)
	if err != nil {
		respondError(w, r, err)
		return
	}

	resp := make([]*taskResponse, 0, len(tasks))
	for _, t := range tasks {
		resp = append(resp, toTaskResponse(t))
	}
	respondJSON(w, r, http.StatusOK, map[string]any{"tasks": resp})
}

type createTaskRequest struct {
	Name              string `json:"name"`
	DepartmentID      string `json:"department_id"`
	Priority          int    `json:"priority"`
	DueDate           string `json:"due_date,omitempty"`
	RegulatorContact  string `json:"regulator_contact,omitempty"`
	ComplianceContact string `json:"compliance_contact,omitempty"`
	CircularDetails   string `json:"circular_details,omitempty"`
	ReturnNumber      string `json:"return_number,omitempty"`
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r.Context())
	if !ok {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, goerr.Wrap(usecase.ErrInvalidInput, "invalid request body"))
		return
	}

	task := &model.Task{
		Name:              req.Name,
		DepartmentID:      types.DepartmentID(req.DepartmentID),
		Priority:          types.Priority(req.Priority),
		RegulatorContact:  req.RegulatorContact,
		ComplianceContact: req.ComplianceContact,
		CircularDetails:   req.CircularDetails,
		ReturnNumber:      req.ReturnNumber,
	}
	if req.DueDate != "" {
		due, err := time.Parse(dateLayout, req.DueDate)
		if err != nil {
			respondError(w, r, goerr.Wrap(usecase.ErrInvalidInput, "invalid due date",
				goerr.V("value", req.DueDate)))
			return
		}
		task.DueDate = &due
	}

	created, err := s.uc.Tasks.Create(r.Context(), actor, task)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusCreated, toTaskResponse(created))
}

type transitionRequest struct {
	Action         string `json:"action"`
	ReasonForDelay string `json:"reason_for_delay,omitempty"`
}

func (s *Server) transitionTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r.Context())
	if !ok {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	id, err := taskIDFrom(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, goerr.Wrap(usecase.ErrInvalidInput, "invalid request body"))
		return
	}

	action, err := types.ParseTaskAction(req.Action)
	if err != nil {
		respondError(w, r, goerr.Wrap(usecase.ErrInvalidInput, err.Error()))
		return
	}

	task, err := s.uc.Lifecycle.Transition(r.Context(), actor, id, action, req.ReasonForDelay)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, toTaskResponse(task))
}

type boardMeetingDateRequest struct {
	Date string `json:"date"`
}

func (s *Server) setBoardMeetingDate(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r.Context())
	if !ok {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	id, err := taskIDFrom(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req boardMeetingDateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, goerr.Wrap(usecase.ErrInvalidInput, "invalid request body"))
		return
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		respondError(w, r, goerr.Wrap(usecase.ErrInvalidInput, "invalid meeting date",
			goerr.V("value", req.Date)))
		return
	}

	task, err := s.uc.Lifecycle.SetBoardMeetingDate(r.Context(), actor, id, date)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, toTaskResponse(task))
}

type remarkRequest struct {
	Text string `json:"text"`
}

type remarkResponse struct {
	ID        string `json:"id"`
	TaskID    int64  `json:"task_id"`
	Author    string `json:"author"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}

func (s *Server) addRemark(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r.Context())
	if !ok {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	id, err := taskIDFrom(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req remarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, goerr.Wrap(usecase.ErrInvalidInput, "invalid request body"))
		return
	}

	remark, err := s.uc.Lifecycle.AddRemark(r.Context(), actor, id, req.Text)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusCreated, &remarkResponse{
		ID:        remark.ID,
		TaskID:    remark.TaskID,
		Author:    remark.Author.String(),
		Text:      remark.Text,
		CreatedAt: remark.CreatedAt.Format(time.RFC3339),
	})
}

func (s *Server) listRemarks(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r.Context())
	if !ok {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	id, err := taskIDFrom(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	remarks, err := s.uc.Tasks.ListRemarks(r.Context(), actor, id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	resp := make([]*remarkResponse, 0, len(remarks))
	for _, rm := range remarks {
		resp = append(resp, &remarkResponse{
			ID:        rm.ID,
			TaskID:    rm.TaskID,
			Author:    rm.Author.String(),
			Text:      rm.Text,
			CreatedAt: rm.CreatedAt.Format(time.RFC3339),
		})
	}
	respondJSON(w, r, http.StatusOK, map[string]any{"remarks": resp})
}

type eventResponse struct {
	ID        string `json:"id"`
	TaskID    int64  `json:"task_id"`
	Field     string `json:"field"`
	OldValue  string `json:"old_value"`
	NewValue  string `json:"new_value"`
	Actor     string `json:"actor"`
	Timestamp string `json:"timestamp"`
}

func (s *Server) listEvents(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r.Context())
	if !ok {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	id, err := taskIDFrom(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	events, err := s.uc.Tasks.ListEvents(r.Context(), actor, id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	resp := make([]*eventResponse, 0, len(events))
	for _, ev := range events {
		resp = append(resp, &eventResponse{
			ID:        ev.ID,
			TaskID:    ev.TaskID,
			Field:     ev.Field,
			OldValue:  ev.OldValue,
			NewValue:  ev.NewValue,
			Actor:     ev.Actor.String(),
			Timestamp: ev.Timestamp.Format(time.RFC3339),
		})
	}
	respondJSON(w, r, http.StatusOK, map[string]any{"events": resp})
}

func (s *Server) attachDocument(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r.Context())
	if !ok {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	id, err := taskIDFrom(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	slot := usecase.DocumentSlot(chi.URLParam(r, "slot"))
	filename := r.URL.Query().Get("filename")
	if filename == "" {
		filename = string(slot)
	}

	task, err := s.uc.Tasks.AttachDocument(r.Context(), actor, id, slot, filename, r.Body)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, toTaskResponse(task))
}

func (s *Server) getDocument(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r.Context())
	if !ok {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	id, err := taskIDFrom(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	slot := usecase.DocumentSlot(chi.URLParam(r, "slot"))
	doc, err := s.uc.Tasks.OpenDocument(r.Context(), actor, id, slot)
	if err != nil {
		respondError(w, r, err)
		return
	}
	defer safe.Close(r.Context(), doc)

	w.Header().Set("Content-Type", "application/octet-stream")
	safe.Copy(r.Context(), w, doc)
}

type populateRequest struct {
	Interval string `json:"interval"`
	RunDate  string `json:"run_date,omitempty"`
}

func (s *Server) populateTasks(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r.Context())
	if !ok {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}
	if actor.Role != types.RoleComplianceAdmin {
		respondError(w, r, goerr.Wrap(usecase.ErrAccessDenied, "only compliance admin can populate tasks"))
		return
	}

	var req populateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, goerr.Wrap(usecase.ErrInvalidInput, "invalid request body"))
		return
	}

	interval, err := types.ParseRecurringInterval(req.Interval)
	if err != nil {
		respondError(w, r, goerr.Wrap(usecase.ErrInvalidInput, err.Error()))
		return
	}

	var runDate *time.Time
	if req.RunDate != "" {
		date, err := time.Parse(dateLayout, req.RunDate)
		if err != nil {
			respondError(w, r, goerr.Wrap(usecase.ErrInvalidInput, "invalid run date",
				goerr.V("value", req.RunDate)))
			return
		}
		runDate = &date
	}

	result, err := s.uc.Expander.PopulateTasks(r.Context(), interval, runDate)
	if err != nil {
		respondError(w, r, err)
		return
	}

	created := make([]*taskResponse, 0, len(result.Created))
	for _, t := range result.Created {
		created = append(created, toTaskResponse(t))
	}
	respondJSON(w, r, http.StatusOK, map[string]any{
		"interval": result.Interval.String(),
		"run_date": result.RunDate.Format(dateLayout),
		"created":  created,
		"skipped":  result.Skipped,
		"failures": result.Failures,
	})
}
