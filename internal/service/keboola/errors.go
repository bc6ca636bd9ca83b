package keboola

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxErrorBody limits how much of a failed response is kept.
const maxErrorBody = 4 << 10

// APIError is a non-2xx Storage API response.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("storage api %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("storage api %d: %s", e.Status, e.Message)
}

// decodeAPIError reads the {"error": ..., "code": ...} envelope, falling back to the raw body.
func decodeAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var envelope struct {
		Error   string `json:"error"`
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	apiErr := &APIError{Status: resp.StatusCode}
	if err := json.Unmarshal(body, &envelope); err == nil && (envelope.Error != "" || envelope.Message != "") {
		apiErr.Code = envelope.Code
		apiErr.Message = envelope.Error
		if apiErr.Message == "" {
			apiErr.Message = envelope.Message
		}
		return apiErr
	}

	apiErr.Message = strings.TrimSpace(string(body))
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
