package core

import (
	"encoding/json"
	"errors"
)

// Result is the envelope returned to CLI and agent callers.
type Result struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo is the serialized form of a failure.
type ErrorInfo struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ElementInfo represents the attributes of a resolved UI element.
type ElementInfo struct {
	Class       string `json:"class,omitempty"`
	ResourceID  string `json:"resourceId,omitempty"`
	Text        string `json:"text,omitempty"`
	ContentDesc string `json:"contentDesc,omitempty"`
	Bounds      Bounds `json:"bounds"`
	Clickable   bool   `json:"clickable"`
	Enabled     bool   `json:"enabled"`
	Checked     bool   `json:"checked,omitempty"`
	Focused     bool   `json:"focused,omitempty"`
	Scrollable  bool   `json:"scrollable,omitempty"`
	CenterX     int    `json:"centerX"`
	CenterY     int    `json:"centerY"`
}

// OK builds a successful Result carrying data.
func OK(data interface{}) Result {
	return Result{Success: true, Data: data}
}

// Fail builds a failed Result from an error. AutomationError codes and
// details survive the conversion; other errors get the code "error".
func Fail(err error) Result {
	info := &ErrorInfo{Code: "error", Message: err.Error()}
	var ae *AutomationError
	if errors.As(err, &ae) {
		info.Code = ae.Code
		info.Details = ae.Details
	}
	return Result{Success: false, Error: info}
}

// JSON renders the result as indented JSON.
func (r Result) JSON() string {
	out, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return `{"success":false,"error":{"code":"encoding","message":"result not serializable"}}`
	}
	return string(out)
}
