package unzer

import (
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Response is a parsed API response.
type Response struct {
	// StatusCode is informational; error statuses are not turned into errors.
	StatusCode int
	// Body is the raw response body.
	Body []byte
	// Data is the decoded JSON value.
	Data any
}

// Object returns Data as a JSON object, or nil when it is not one.
func (r *Response) Object() map[string]any {
	if r == nil {
		return nil
	}
	obj, _ := r.Data.(map[string]any)
	return obj
}

// String returns the string field key of the response object.
func (r *Response) String(key string) string {
	s, _ := r.Object()[key].(string)
	return s
}

// IsError reports whether the API flagged the payload as an error.
func (r *Response) IsError() bool {
	v, _ := r.Object()["isError"].(bool)
	return v
}

// Decode unmarshals the raw body into v.
func (r *Response) Decode(v any) error {
	if r == nil {
		return invalidArgument("decode nil response")
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return &ParseError{StatusCode: r.StatusCode, Body: r.Body, Err: err}
	}
	return nil
}
