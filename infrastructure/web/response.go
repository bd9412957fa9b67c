package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
)

// HTTPStatus is implemented by responses that choose their own status code.
type HTTPStatus interface {
	HTTPStatus() int
}

// JSONResponse encodes Data as JSON with a 200 status.
type JSONResponse[T any] struct {
	Data T
}

// NewJSONResponse wraps data for a JSON reply.
func NewJSONResponse[T any](data T) *JSONResponse[T] {
	return &JSONResponse[T]{Data: data}
}

func (j *JSONResponse[T]) Encode() ([]byte, string, error) {
	data, err := json.Marshal(j.Data)
	if err != nil {
		return nil, "", err
	}
	return data, "application/json; charset=utf-8", nil
}

// HTMLResponse renders the template called name from a parsed set.
type HTMLResponse struct {
	tmpl *template.Template
	name string
	data any
}

// NewHTMLResponse prepares the named template to be rendered with data.
func NewHTMLResponse(tmpl *template.Template, name string, data any) *HTMLResponse {
	return &HTMLResponse{tmpl: tmpl, name: name, data: data}
}

// Encode renders into a buffer so a template failure never leaves a partial
// page on the wire.
func (h *HTMLResponse) Encode() ([]byte, string, error) {
	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, h.name, h.data); err != nil {
		return nil, "", fmt.Errorf("execute template %s: %w", h.name, err)
	}
	return buf.Bytes(), "text/html; charset=utf-8", nil
}

// Respond writes resp. A nil resp is a 204, an error value without its own
// status is a 500. Nothing is written once the client has gone away.
func Respond(ctx context.Context, w http.ResponseWriter, resp Encoder) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return errors.New("client disconnected")
	}

	if resp == nil {
		w.WriteHeader(http.StatusNoContent)
		return nil
	}

	status := http.StatusOK
	switch v := resp.(type) {
	case HTTPStatus:
		status = v.HTTPStatus()
	case error:
		status = http.StatusInternalServerError
	}

	data, contentType, err := resp.Encode()
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return fmt.Errorf("encode: %w", err)
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}
