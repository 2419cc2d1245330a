package canvas

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// errorPayload is the shape Canvas uses to report failures with a 2xx or 4xx status
type errorPayload struct {
	Status string `json:"status"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
	Message string `json:"message"`
}

// DecodeList decodes a list payload. Accepted shapes are a JSON array,
// null or an empty body (empty list), and a Canvas error object.
// Anything else fails with ErrUnrecognizedShape.
func DecodeList[T any](body []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []T{}, nil
	}

	switch trimmed[0] {
	case '[':
		var out []T
		if err := json.Unmarshal(trimmed, &out); err != nil {
			return nil, &APIError{Kind: KindDecode, Err: fmt.Errorf("%w: %v", ErrUnrecognizedShape, err)}
		}
		return out, nil
	case '{':
		if err := decodeErrorPayload(trimmed); err != nil {
			return nil, err
		}
	}

	return nil, &APIError{Kind: KindDecode, Err: ErrUnrecognizedShape}
}

// DecodeObject decodes a single object payload, or a Canvas error object
func DecodeObject[T any](body []byte) (*T, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, &APIError{Kind: KindDecode, Err: ErrUnrecognizedShape}
	}

	if err := decodeErrorPayload(trimmed); err != nil {
		return nil, err
	}

	out := new(T)
	if err := json.Unmarshal(trimmed, out); err != nil {
		return nil, &APIError{Kind: KindDecode, Err: fmt.Errorf("%w: %v", ErrUnrecognizedShape, err)}
	}

	return out, nil
}

// decodeErrorPayload returns an *APIError when the object is a Canvas error,
// nil when it is a regular object
func decodeErrorPayload(object []byte) error {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(object, &keys); err != nil {
		return &APIError{Kind: KindDecode, Err: fmt.Errorf("%w: %v", ErrUnrecognizedShape, err)}
	}

	_, hasErrors := keys["errors"]
	_, hasStatus := keys["status"]
	_, hasID := keys["id"]
	if !hasErrors && !(hasStatus && !hasID) {
		return nil
	}

	var payload errorPayload
	_ = json.Unmarshal(object, &payload)

	messages := []string{}
	if payload.Message != "" {
		messages = append(messages, payload.Message)
	}
	for _, e := range payload.Errors {
		if e.Message != "" {
			messages = append(messages, e.Message)
		}
	}

	message := strings.Join(messages, "; ")
	if message == "" {
		message = payload.Status
	}

	return &APIError{Kind: payloadKind(payload.Status, message), Err: fmt.Errorf("canvas error: %s", message)}
}

func payloadKind(status, message string) Kind {
	status = strings.ToLower(status)
	message = strings.ToLower(message)

	switch {
	case status == "unauthorized" || strings.Contains(message, "not authorized") || strings.Contains(message, "unauthorized"):
		return KindPermissionDenied
	case status == "not_found" || status == "not found" || strings.Contains(message, "does not exist"):
		return KindNotFound
	default:
		return KindRemote
	}
}
