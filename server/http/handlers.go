package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/w-h-a/tailor/fault"
	"github.com/w-h-a/tailor/store"
)

type searchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

type generateRequest struct {
	JobDescription string   `json:"job_description"`
	NumBullets     int      `json:"num_bullets"`
	ExperienceIds  []string `json:"experience_ids"`
}

type batchRequest struct {
	Experiences []store.Record `json:"experiences"`
}

func (s *Server) addExperience(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var record store.Record
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		writeError(ctx, w, fault.Wrap(fault.Validation, err, "decode experience"))
		return
	}

	if err := s.options.Service.AddExperience(ctx, ownerFrom(ctx), record); err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "success", "id": record.Id})
}

func (s *Server) addExperiences(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(ctx, w, fault.Wrap(fault.Validation, err, "decode experiences"))
		return
	}

	if err := s.options.Service.AddExperiences(ctx, ownerFrom(ctx), req.Experiences); err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "count": len(req.Experiences)})
}

func (s *Server) listExperiences(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	records, err := s.options.Service.ListExperiences(ctx, ownerFrom(ctx))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"experiences": records, "count": len(records)})
}

func (s *Server) updateExperience(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	var record store.Record
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		writeError(ctx, w, fault.Wrap(fault.Validation, err, "decode experience"))
		return
	}

	if err := s.options.Service.UpdateExperience(ctx, id, ownerFrom(ctx), record); err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "updated", "id": id})
}

func (s *Server) deleteExperience(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	if err := s.options.Service.DeleteExperience(ctx, id, ownerFrom(ctx)); err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(ctx, w, fault.Wrap(fault.Validation, err, "decode search request"))
		return
	}

	if req.Limit < 1 {
		req.Limit = 5
	}

	results, err := s.options.Service.Search(ctx, req.Query, req.Limit)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"results": results, "count": len(results)})
}

func (s *Server) generate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(ctx, w, fault.Wrap(fault.Validation, err, "decode generate request"))
		return
	}

	bullets, err := s.options.Service.GenerateBullets(ctx, ownerFrom(ctx), req.JobDescription, req.NumBullets, req.ExperienceIds)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"bullets": bullets})
}
