package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/JonMunkholm/matchboard/internal/core"
)

// handleHealth reports whether storage is reachable.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleUpload ingests pasted CSV text, replacing all stored games.
//
// Body: {"csv": "...", "matchDate": "2024-05-10"}. Both keys are required;
// matchDate may be blank when every row carries its own date.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	body, ok := s.decodeObject(w, r)
	if !ok {
		return
	}

	csvRaw, ok := body["csv"]
	if !ok {
		badPayload(w, r, "Formato de conteúdo inválido.")
		return
	}
	if _, ok := body["matchDate"]; !ok {
		respondError(w, r, &core.Error{
			Kind:    core.KindValidation,
			Code:    core.CodeMissingMatchDate,
			Message: "Selecione a data dos jogos antes de enviar.",
			Index:   -1,
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Upload.Timeout)
	defer cancel()

	result, err := s.service.Ingest(ctx, scalarString(csvRaw), scalarString(body["matchDate"]))
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleListGames returns the header labels and games. ?selected=1 limits
// the list to selected games.
func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	selectedOnly := r.URL.Query().Get("selected") == "1"

	list, err := s.service.ListGames(r.Context(), selectedOnly)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, list)
}

// handleUpdateSelections applies a batch of selection changes atomically.
//
// Body: {"updates": [{"id": 7, "selected": true, "method_id": 3,
// "expected_goals": "2,5", "link": "example.com/jogo"}, ...]}
func (s *Server) handleUpdateSelections(w http.ResponseWriter, r *http.Request) {
	body, ok := s.decodeObject(w, r)
	if !ok {
		return
	}

	var updates []json.RawMessage
	if err := json.Unmarshal(body["updates"], &updates); err != nil || updates == nil {
		badPayload(w, r, "Formato de payload inválido.")
		return
	}

	reqs := make([]core.SelectionRequest, len(updates))
	for i, raw := range updates {
		req, err := parseSelectionRequest(raw)
		if err != nil {
			respondError(w, r, &core.Error{
				Kind:    core.KindInputFormat,
				Code:    core.CodeInvalidPayload,
				Message: "Atualização inválida.",
				Index:   i,
				Err:     err,
			})
			return
		}
		reqs[i] = req
	}

	updated, err := s.service.UpdateSelections(r.Context(), reqs)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"updated": updated})
}

// handleListMethods returns every method ordered by name.
func (s *Server) handleListMethods(w http.ResponseWriter, r *http.Request) {
	methods, err := s.service.ListMethods(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"methods": methods})
}

// handleCreateMethod registers a method. Body: {"name": "...", "color": "#1A2B3C"}.
func (s *Server) handleCreateMethod(w http.ResponseWriter, r *http.Request) {
	body, ok := s.decodeObject(w, r)
	if !ok {
		return
	}

	m, err := s.service.CreateMethod(r.Context(), scalarString(body["name"]), scalarString(body["color"]))
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"method": m})
}

// decodeObject reads a size-limited JSON object body.
func (s *Server) decodeObject(w http.ResponseWriter, r *http.Request) (map[string]json.RawMessage, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxBodySize)

	var body map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body == nil {
		badPayload(w, r, "Não foi possível ler os dados enviados.")
		return nil, false
	}
	return body, true
}

// parseSelectionRequest converts one update object. Values the core rules
// reject (bad ids, bad method ids) are passed through so the batch error
// names the right rule.
func parseSelectionRequest(raw json.RawMessage) (core.SelectionRequest, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return core.SelectionRequest{}, err
	}
	if fields == nil {
		return core.SelectionRequest{}, errNotObject
	}

	req := core.SelectionRequest{
		ID:       parseID(fields["id"]),
		Selected: truthy(fields["selected"]),
	}

	if v, ok := fields["method_id"]; ok && !isNull(v) {
		id := parseID(v)
		req.MethodID = &id
	}
	if v, ok := fields["expected_goals"]; ok {
		req.ExpectedGoals = optionalFrom(v)
	}
	if v, ok := fields["link"]; ok {
		req.Link = optionalFrom(v)
	}
	return req, nil
}

type payloadError string

func (e payloadError) Error() string { return string(e) }

const errNotObject = payloadError("update is not an object")

// parseID reads a JSON number or numeric string. Anything else is 0.
func parseID(raw json.RawMessage) int64 {
	s := scalarString(raw)
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// truthy treats false, 0, "", "0" and null as false.
func truthy(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || isNull(raw) {
		return false
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != "" && t != "0"
	case []any:
		return len(t) > 0
	default:
		return true
	}
}

// optionalFrom keeps null apart from a value. Values that are neither a
// string nor a number keep their JSON text and fail validation later.
func optionalFrom(raw json.RawMessage) core.Optional {
	var o core.Optional
	if err := o.UnmarshalJSON(raw); err != nil {
		return core.Some(string(bytes.TrimSpace(raw)))
	}
	return o
}

// scalarString returns a JSON string's value, a number's text, or "".
func scalarString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || isNull(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
