// Package transport defines the JSON wire shapes of the HTTP API: the
// response envelope plus the request bodies for task, category and auth
// endpoints.
package transport

import "encoding/json"

// Envelope wraps every API response. Data carries the task, category or
// credential payload on success, Error the message on failure, Meta
// optional collection info such as ListMeta.
type Envelope struct {
	Status string      `json:"status"`
	Code   string      `json:"code,omitempty"`
	Data   interface{} `json:"data,omitempty"`
	Error  interface{} `json:"error,omitempty"`
	Meta   interface{} `json:"meta,omitempty"`
}

// ListMeta annotates collection responses with their size.
type ListMeta struct {
	Total int `json:"total"`
}

// NewSuccess returns a success envelope.
func NewSuccess(data interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "success",
		Data:   data,
		Meta:   meta,
	}
}

// NewList wraps a collection payload with its count.
func NewList(data interface{}, total int) Envelope {
	return NewSuccess(data, ListMeta{Total: total})
}

// NewError returns an error envelope with optional metadata.
func NewError(code string, err interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "error",
		Code:   code,
		Error:  err,
		Meta:   meta,
	}
}

// String returns the JSON representation (best-effort) for logging purposes.
func (e Envelope) String() string {
	out, err := json.Marshal(e)
	if err != nil {
		return "{}"
	}
	return string(out)
}
