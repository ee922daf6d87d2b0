// SPDX-License-Identifier: Apache-2.0

package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/clearrecordproj/clearrecord/internal/documents"
	"github.com/clearrecordproj/clearrecord/internal/eligibility"
	"github.com/clearrecordproj/clearrecord/internal/intake"
	"github.com/clearrecordproj/clearrecord/internal/rules"
	"github.com/clearrecordproj/clearrecord/internal/screening"
)

// Handler wires the screening endpoints to the screening service.
type Handler struct {
	service *screening.Service
	logger  *slog.Logger
}

func NewHandler(service *screening.Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the v1 endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/v1/jurisdictions", func(r chi.Router) {
		r.Get("/", h.HandleListJurisdictions)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/offenses", h.HandleListOffenses)
			r.Post("/intake/{step}", h.HandleIntakeStep)
			r.Post("/evaluate", h.HandleEvaluate)
			r.Post("/documents", h.HandleDocuments)
		})
	})
}

type jurisdictionSummary struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Version       string          `json:"version"`
	EffectiveDate string          `json:"effectiveDate"`
	Court         rules.Court     `json:"court"`
	ReliefTypes   []reliefSummary `json:"reliefTypes"`
}

type reliefSummary struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Description    string         `json:"description,omitempty"`
	Standard       rules.Standard `json:"standard"`
	FilingFeeCents int64          `json:"filingFeeCents"`
}

// HandleListJurisdictions handles GET /v1/jurisdictions.
func (h *Handler) HandleListJurisdictions(w http.ResponseWriter, r *http.Request) {
	tables := h.service.Jurisdictions()
	out := make([]jurisdictionSummary, 0, len(tables))
	for _, j := range tables {
		js := jurisdictionSummary{
			ID:            j.ID,
			Name:          j.Name,
			Version:       j.Version,
			EffectiveDate: j.EffectiveDate,
			Court:         j.Court,
			ReliefTypes:   make([]reliefSummary, 0, len(j.ReliefTypes)),
		}
		for _, rt := range j.ReliefTypes {
			js.ReliefTypes = append(js.ReliefTypes, reliefSummary{
				ID:             rt.ID,
				Name:           rt.Name,
				Description:    rt.Description,
				Standard:       rt.Standard,
				FilingFeeCents: rt.FilingFeeCents,
			})
		}
		out = append(out, js)
	}
	WriteJSON(w, http.StatusOK, map[string]any{"jurisdictions": out})
}

// HandleListOffenses handles GET /v1/jurisdictions/{id}/offenses.
func (h *Handler) HandleListOffenses(w http.ResponseWriter, r *http.Request) {
	j, err := h.service.Jurisdiction(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"jurisdiction":     j.ID,
		"rulesVersion":     j.Version,
		"offenses":         j.Offenses,
		"excludedOffenses": j.ExcludedOffenses,
	})
}

// HandleIntakeStep handles POST /v1/jurisdictions/{id}/intake/{step}. Field
// problems are a normal 200 response; the wizard shows them next to the form.
func (h *Handler) HandleIntakeStep(w http.ResponseWriter, r *http.Request) {
	j, err := h.service.Jurisdiction(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, err)
		return
	}
	step, ok := intake.ParseStep(chi.URLParam(r, "step"))
	if !ok {
		WriteError(w, &requestError{status: http.StatusNotFound, code: "unknown_step", msg: "unknown intake step " + chi.URLParam(r, "step")})
		return
	}

	var d intake.Draft
	if err := decode(w, r, &d); err != nil {
		WriteError(w, err)
		return
	}
	d = d.WithJurisdiction(j.ID)

	errs := intake.ValidateStep(step, d)
	resp := StepResponse{Step: step, Valid: len(errs) == 0, Errors: errs}
	if resp.Errors == nil {
		resp.Errors = []intake.FieldError{}
	}
	if resp.Valid {
		resp.Next, _ = step.Next()
	}
	WriteJSON(w, http.StatusOK, resp)
}

// HandleEvaluate handles POST /v1/jurisdictions/{id}/evaluate. The body is
// the wizard draft.
func (h *Handler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetReqID(ctx)
	start := time.Now()

	var d intake.Draft
	if err := decode(w, r, &d); err != nil {
		WriteError(w, err)
		return
	}
	result, _, err := h.evaluate(r, d)
	if err != nil {
		h.logger.InfoContext(ctx, "evaluate request rejected",
			"request_id", requestID,
			"error", err,
		)
		WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "evaluate request served",
		"request_id", requestID,
		"jurisdiction", result.Jurisdiction,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	WriteJSON(w, http.StatusOK, result)
}

// HandleDocuments handles POST /v1/jurisdictions/{id}/documents. A package
// with some failed relief types is still a 200; its failures list says why.
func (h *Handler) HandleDocuments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetReqID(ctx)
	start := time.Now()

	var req DocumentsRequest
	if err := decode(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}
	result, c, err := h.evaluate(r, req.Draft)
	if err != nil {
		WriteError(w, err)
		return
	}

	pkg, err := h.service.Generate(ctx, documents.Request{
		Result:      result,
		Case:        c,
		Person:      req.Draft.DocumentsPerson(),
		Statement:   req.Draft.Statement,
		ReliefTypes: req.ReliefTypes,
		FeeWaiver:   req.FeeWaiver,
	})
	if pkg == nil {
		h.logger.InfoContext(ctx, "documents request rejected",
			"request_id", requestID,
			"jurisdiction", result.Jurisdiction,
			"error", err,
		)
		WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "documents request served",
		"request_id", requestID,
		"jurisdiction", result.Jurisdiction,
		"package_id", pkg.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	WriteJSON(w, http.StatusOK, pkg)
}

// evaluate screens d against the jurisdiction named in the path.
func (h *Handler) evaluate(r *http.Request, d intake.Draft) (*eligibility.Result, eligibility.Case, error) {
	id := chi.URLParam(r, "id")
	if _, err := h.service.Jurisdiction(id); err != nil {
		return nil, eligibility.Case{}, err
	}
	c, err := d.WithJurisdiction(id).Case()
	if err != nil {
		return nil, eligibility.Case{}, err
	}
	result, err := h.service.Evaluate(r.Context(), id, c)
	if err != nil {
		return nil, eligibility.Case{}, err
	}
	return result, c, nil
}
