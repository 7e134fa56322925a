package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	stdmime "mime"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/msgtext/entdecode/internal/entity"
	"github.com/msgtext/entdecode/internal/mime"
	"github.com/msgtext/entdecode/internal/textutil"
)

// DecodeRequest is the JSON body of POST /api/v1/decode.
// JSON text is already UTF-8; a charset only applies to raw bodies.
type DecodeRequest struct {
	Text *string `json:"text"`
}

// DecodeResponse reports the decoded text. Decoded is null and Found false
// when the input had no decodable reference.
type DecodeResponse struct {
	Decoded *string `json:"decoded"`
	Found   bool    `json:"found"`
}

// EntityInfo describes one named character reference.
type EntityInfo struct {
	Name      string `json:"name"`
	CodePoint string `json:"code_point"`
	Char      string `json:"char"`
}

// EntityList is the response of GET /api/v1/entities.
type EntityList struct {
	Total    int          `json:"total"`
	Entities []EntityInfo `json:"entities"`
}

// MessageResponse is a parsed message with references decoded.
type MessageResponse struct {
	Subject   string   `json:"subject"`
	From      string   `json:"from"`
	To        []string `json:"to"`
	Date      string   `json:"date,omitempty"`
	MessageID string   `json:"message_id,omitempty"`
	Body      string   `json:"body"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, err string, message string) {
	writeJSON(w, status, ErrorResponse{Error: err, Message: message})
}

// readBody reads at most limit bytes of the request body. It writes the
// error response itself and returns ok=false on failure.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	limit := s.cfg.Decode.MaxInputBytes
	if limit <= 0 {
		limit = 10 << 20
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "too_large",
				fmt.Sprintf("Request body exceeds %d bytes", limit))
			return nil, false
		}
		writeError(w, http.StatusBadRequest, "invalid_request", "Failed to read request body")
		return nil, false
	}
	return data, true
}

// handleDecode decodes character references. A JSON body carries the text
// in "text"; any other content type is taken as the raw text, with the
// charset from the Content-Type parameter.
func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	data, ok := s.readBody(w, r)
	if !ok {
		return
	}

	var text string
	mediaType, params, _ := stdmime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "" || mediaType == "application/json" {
		var req DecodeRequest
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "Request body must be a JSON object with a \"text\" field")
			return
		}
		if req.Text == nil {
			writeJSON(w, http.StatusOK, DecodeResponse{})
			return
		}
		text = *req.Text
	} else {
		charset := params["charset"]
		converted, err := textutil.ToUTF8(data, charset)
		if err != nil {
			if errors.Is(err, textutil.ErrUnknownCharset) {
				writeError(w, http.StatusBadRequest, "unknown_charset", err.Error())
				return
			}
			s.logger.Error("charset conversion failed", "charset", charset, "error", err)
			writeError(w, http.StatusBadRequest, "invalid_text", "Text could not be converted to UTF-8")
			return
		}
		text = converted
	}

	resp := DecodeResponse{}
	if decoded, found := entity.DecodeString(text); found {
		resp.Decoded = &decoded
		resp.Found = true
	}
	writeJSON(w, http.StatusOK, resp)
}

func entityInfo(name string, r rune) EntityInfo {
	return EntityInfo{
		Name:      name,
		CodePoint: fmt.Sprintf("U+%04X", r),
		Char:      string(r),
	}
}

// handleGetEntity looks up one named reference. A trailing ';' or leading
// '&' in the path is tolerated.
func (s *Server) handleGetEntity(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSuffix(strings.TrimPrefix(chi.URLParam(r, "name"), "&"), ";")
	cp, ok := entity.Lookup(name)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", fmt.Sprintf("No character reference named %q", name))
		return
	}
	writeJSON(w, http.StatusOK, entityInfo(name, cp))
}

// handleListEntities lists the named reference table, optionally filtered
// by the "prefix" query parameter.
func (s *Server) handleListEntities(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")
	list := EntityList{Entities: []EntityInfo{}}
	for name, cp := range entity.All() {
		if strings.HasPrefix(name, prefix) {
			list.Entities = append(list.Entities, entityInfo(name, cp))
		}
	}
	list.Total = len(list.Entities)
	writeJSON(w, http.StatusOK, list)
}

// handleMessage parses a raw RFC 5322 message and returns its headers and
// body for display.
func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	data, ok := s.readBody(w, r)
	if !ok {
		return
	}

	msg, err := mime.Parse(data)
	if err != nil {
		s.logger.Warn("message parse failed", "error", err)
		writeError(w, http.StatusBadRequest, "invalid_message", "Failed to parse message")
		return
	}
	for _, e := range msg.Errors {
		s.logger.Debug("message parse warning", "warning", e)
	}

	resp := MessageResponse{
		Subject:   msg.DisplaySubject(),
		From:      msg.GetFirstFrom().String(),
		To:        make([]string, 0, len(msg.To)),
		MessageID: msg.MessageID,
		Body:      msg.GetBodyText(),
	}
	for _, addr := range msg.To {
		resp.To = append(resp.To, addr.String())
	}
	if !msg.Date.IsZero() {
		resp.Date = msg.Date.Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, resp)
}
