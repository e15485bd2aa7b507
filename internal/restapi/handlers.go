package restapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"plcgateway/internal/apperror"
	"plcgateway/internal/audit"
	"plcgateway/internal/export"
	"plcgateway/internal/reconnect"
	"plcgateway/internal/tagstore"
)

func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

const tagsPrefix = "/api/v1/tags/"

func (s *Server) handleTagsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listTags(w, r)
	case http.MethodPost:
		s.createTags(w, r)
	default:
		writeAppError(w, apperror.ErrMethodNotAllowed)
	}
}

func (s *Server) listTags(w http.ResponseWriter, _ *http.Request) {
	tags := s.store.ListTags()
	out := make([]map[string]any, 0, len(tags))
	for _, t := range tags {
		raw := s.store.GetRawValue(t.TagID)
		out = append(out, tagDTO(t, tagstore.SerializeValue(raw, false)))
	}
	writeJSON(w, http.StatusOK, map[string]any{"tags": out})
}

func (s *Server) createTags(w http.ResponseWriter, r *http.Request) {
	var body json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeAppError(w, apperror.ErrInvalidPayload)
		return
	}

	var batch createBatchPayload
	if err := json.Unmarshal(body, &batch); err == nil && len(batch.Tags) > 0 {
		ids, err := s.addTags(r, batch.Tags)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"created": ids})
		return
	}

	var single tagPayload
	if err := json.Unmarshal(body, &single); err != nil {
		writeAppError(w, apperror.ErrInvalidPayload)
		return
	}
	ids, err := s.addTags(r, []tagPayload{single})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"created": ids})
}

func (s *Server) addTags(r *http.Request, payloads []tagPayload) ([]string, error) {
	ids := make([]string, 0, len(payloads))
	for _, p := range payloads {
		id := p.TagID
		if id == "" {
			id = p.Name
		}
		if id == "" {
			return nil, apperror.ErrMissingTagID
		}
		p.TagID = id
		t := p.toTag()
		s.store.AddTag(t, p.Value)
		if s.bridge != nil {
			raw := s.store.GetRawValue(id)
			s.bridge.CreateNode(id, t.Name, t.DataType, t.Writable, raw)
		}
		audit.Log(r.Context(), audit.NewEntry().
			Action(audit.ActionCreate).
			Outcome(audit.OutcomeSuccess).
			Client(clientIP(r)).
			Resource("tag", id).
			Build())
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *Server) handleTagItem(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, tagsPrefix)
	if id == "" {
		writeAppError(w, apperror.ErrMissingTagID)
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.getTag(w, id)
	case http.MethodPatch:
		s.patchTag(w, r, id)
	case http.MethodDelete:
		s.deleteTag(w, r, id)
	default:
		writeAppError(w, apperror.ErrMethodNotAllowed)
	}
}

func (s *Server) getTag(w http.ResponseWriter, id string) {
	t := s.store.GetTag(id)
	if t == nil {
		writeAppError(w, apperror.ErrTagNotFound)
		return
	}
	raw := s.store.GetRawValue(id)
	// Single-tag GET preserves decimal precision as a string.
	writeJSON(w, http.StatusOK, map[string]any{"tag": tagDTO(t, tagstore.SerializeValue(raw, true))})
}

var patchWhitelist = map[string]bool{
	"name": true, "plc_id": true, "address": true, "data_type": true,
	"group_id": true, "description": true, "enabled": true, "project_id": true,
	"scale_mul": true, "scale_add": true, "writable": true, "client_visible": true,
}

func (s *Server) patchTag(w http.ResponseWriter, r *http.Request, id string) {
	if s.store.GetTag(id) == nil {
		writeAppError(w, apperror.ErrTagNotFound)
		return
	}

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeAppError(w, apperror.ErrInvalidPayload)
		return
	}

	partial := map[string]any{}
	for field, rawVal := range raw {
		if field == "value" {
			v, err := tagstore.ParseIncomingValue(rawVal)
			if err != nil {
				writeAppError(w, apperror.NewWithField(apperror.CodeInvalidPayload, "invalid value", "value"))
				return
			}
			s.store.SetValue(id, v)
			continue
		}
		if !patchWhitelist[field] {
			continue
		}
		var v any
		if err := json.Unmarshal(rawVal, &v); err != nil {
			writeAppError(w, apperror.NewWithField(apperror.CodeInvalidPayload, "invalid field value", field))
			return
		}
		partial[field] = v
	}

	if len(partial) > 0 {
		s.store.UpdateTag(id, partial)
	}

	if s.bridge != nil {
		if scaled, ok := s.store.GetValue(id); ok {
			s.bridge.UpdateValue(id, scaled)
		}
	}

	fields := make([]string, 0, len(partial))
	for k := range partial {
		fields = append(fields, k)
	}
	audit.Log(r.Context(), audit.NewEntry().
		Action(audit.ActionUpdate).
		Outcome(audit.OutcomeSuccess).
		Client(clientIP(r)).
		Resource("tag", id).
		Changes(&audit.ChangeSet{After: partial, Fields: fields}).
		Build())

	writeJSON(w, http.StatusOK, map[string]any{"updated": id})
}

func (s *Server) deleteTag(w http.ResponseWriter, r *http.Request, id string) {
	if s.store.GetTag(id) == nil {
		writeAppError(w, apperror.ErrTagNotFound)
		return
	}
	s.store.RemoveTag(id)
	if s.bridge != nil {
		s.bridge.DeleteNode(id)
	}
	audit.Log(r.Context(), audit.NewEntry().
		Action(audit.ActionDelete).
		Outcome(audit.OutcomeSuccess).
		Client(clientIP(r)).
		Resource("tag", id).
		Build())
	writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

func (s *Server) handleTagsImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		writeAppError(w, apperror.ErrMethodNotAllowed)
		return
	}

	replaceAll := r.URL.Query().Get("replace_all") == "true" || r.URL.Query().Get("replace_all") == "1"

	var payload importPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeAppError(w, apperror.ErrInvalidPayload)
		return
	}

	if replaceAll {
		s.store.ClearTags()
	}

	ids, err := s.addTags(r, payload.Tags)
	if err != nil {
		writeAppError(w, apperror.Wrap(err, apperror.CodeImportFailed, "tag import failed"))
		return
	}
	audit.Log(r.Context(), audit.NewEntry().
		Action(audit.ActionImport).
		Outcome(audit.OutcomeSuccess).
		Client(clientIP(r)).
		Meta("replace_all", replaceAll).
		Meta("count", len(ids)).
		Build())
	writeJSON(w, http.StatusOK, map[string]any{"imported": ids})
}

func (s *Server) handleHMIData(w http.ResponseWriter, _ *http.Request) {
	snapshot := s.store.Snapshot()
	out := make(map[string]any, len(snapshot))
	for id, v := range snapshot {
		out[id] = tagstore.SerializeValue(v, false)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"timestamp": float64(time.Now().UnixNano()) / 1e9,
		"tags":      out,
	})
}

func (s *Server) handleHMIConfig(w http.ResponseWriter, _ *http.Request) {
	tags := s.store.ListTags()
	out := make([]map[string]any, 0, len(tags))
	for _, t := range tags {
		out = append(out, tagDTO(t, nil))
	}
	writeJSON(w, http.StatusOK, map[string]any{"tags": out})
}

func (s *Server) handleHMIReady(w http.ResponseWriter, _ *http.Request) {
	ready := s.schedulerInitialized != nil && s.schedulerInitialized()
	if ready {
		writeJSON(w, http.StatusOK, map[string]any{"ready": true})
		return
	}
	writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ready": false})
}

func (s *Server) handleHMIHealth(w http.ResponseWriter, _ *http.Request) {
	now := time.Now()
	var last int64
	if s.plcLastUpdate != nil {
		last = s.plcLastUpdate()
	}

	var age *float64
	healthy := false
	if last != 0 {
		a := now.Sub(time.Unix(last, 0)).Seconds()
		age = &a
		healthy = a < 5
	}

	tags := s.store.ListTags()
	ids := make([]string, 0, len(tags))
	for _, t := range tags {
		ids = append(ids, t.TagID)
	}

	plcHealth := make(map[string]any, len(s.controllers))
	for key, sm := range s.controllers {
		h := sm.Health()
		lastBackoff := h.LastBackoff
		if lastBackoff == 0 && h.FailCount > 0 {
			lastBackoff = reconnect.ComputeBackoffDelay(h.FailCount, reconnect.DefaultBase, reconnect.DefaultMax)
		}
		recent := make([]map[string]any, 0, len(h.RecentErrors))
		for _, e := range h.RecentErrors {
			recent = append(recent, map[string]any{"ts": e.Timestamp, "error": e.Error})
		}
		plcHealth[key] = map[string]any{
			"ok":            h.OK,
			"last_success":  h.LastSuccess,
			"last_error":    h.LastError,
			"fail_count":    h.FailCount,
			"next_attempt":  h.NextAttempt,
			"last_backoff":  lastBackoff,
			"recent_errors": recent,
		}
	}

	status := "degraded"
	if healthy {
		status = "ok"
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":           status,
		"timestamp":        float64(now.UnixNano()) / 1e9,
		"last_plc_update":  last,
		"age_seconds":      age,
		"tags_available":   ids,
		"plc_health":       plcHealth,
	})
}

func (s *Server) handleTagsExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeAppError(w, apperror.ErrMethodNotAllowed)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "xlsx"
	}

	tags := s.store.ListTags()

	var (
		body        []byte
		err         error
		contentType string
		filename    string
	)
	switch format {
	case "xlsx":
		body, err = export.Excel(tags)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		filename = "tags.xlsx"
	case "pdf":
		body, err = export.PDF(tags)
		contentType = "application/pdf"
		filename = "tags.pdf"
	default:
		writeAppError(w, apperror.NewWithField(apperror.CodeInvalidPayload, "unsupported export format", "format"))
		return
	}
	if err != nil {
		writeAppError(w, apperror.Wrap(err, apperror.CodeExportFailed, "tag export failed"))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) handleHMIStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeAppError(w, apperror.ErrMethodNotAllowed)
		return
	}

	initialized := s.schedulerInitialized != nil && s.schedulerInitialized()

	audit.Log(r.Context(), audit.NewEntry().
		Action(audit.ActionStop).
		Outcome(audit.OutcomeSuccess).
		Client(clientIP(r)).
		Build())

	if s.onStop != nil {
		if s.cfg.MockMode {
			// Test/mock mode: wait briefly for the scheduled shutdown so
			// callers observe it having run, but never block the response
			// indefinitely if it takes longer.
			done := make(chan struct{})
			go func() {
				s.onStop()
				close(done)
			}()
			select {
			case <-done:
			case <-time.After(500 * time.Millisecond):
			}
		} else {
			go s.onStop()
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":                "shutting_down",
		"scheduler_initialized": initialized,
	})
}
