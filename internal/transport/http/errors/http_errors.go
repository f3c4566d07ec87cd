package errors

import (
	"encoding/json"
	"net/http"
)

// Envelope is the response shape every endpoint uses, success and failure
// alike. Errors carries field-level validation messages on 422 responses.
type Envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    any               `json:"data,omitempty"`
	Meta    *Meta             `json:"meta,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

type Meta struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
}

func Write(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func OK(w http.ResponseWriter, message string, data any) {
	Write(w, http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

func OKMeta(w http.ResponseWriter, message string, data any, meta Meta) {
	Write(w, http.StatusOK, Envelope{Success: true, Message: message, Data: data, Meta: &meta})
}

func Created(w http.ResponseWriter, message string, data any) {
	Write(w, http.StatusCreated, Envelope{Success: true, Message: message, Data: data})
}

func Fail(w http.ResponseWriter, status int, message string) {
	Write(w, status, Envelope{Success: false, Message: message})
}

func FailFields(w http.ResponseWriter, status int, message string, fields map[string]string) {
	Write(w, status, Envelope{Success: false, Message: message, Errors: fields})
}
