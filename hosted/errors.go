package hosted

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ServiceError captures a normalized error response from the hosted backend.
type ServiceError struct {
	Operation string
	Status    int
	Code      string
	Message   string
	Raw       map[string]any
}

func (e *ServiceError) Error() string {
	if e == nil {
		return "hosted service error"
	}
	scope := "hosted"
	if e.Operation != "" {
		scope = "hosted " + e.Operation
	}
	if e.Message != "" {
		return fmt.Sprintf("%s failed: %s", scope, e.Message)
	}
	if e.Code != "" {
		return fmt.Sprintf("%s failed: %s", scope, e.Code)
	}
	return fmt.Sprintf("%s failed with status %d", scope, e.Status)
}

// ServiceMessage returns the backend's own message text.
func (e *ServiceError) ServiceMessage() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func (e *ServiceError) Metadata() map[string]any {
	if e == nil {
		return nil
	}
	meta := map[string]any{"status": e.Status}
	if e.Operation != "" {
		meta["operation"] = e.Operation
	}
	if e.Code != "" {
		meta["code"] = e.Code
	}
	if e.Message != "" {
		meta["message"] = e.Message
	}
	if len(e.Raw) > 0 {
		meta["raw"] = e.Raw
	}
	return meta
}

// parseServiceError reads the shapes the auth API uses for failures:
// {"error_code","msg"}, {"error","error_description"} and {"message"}.
func parseServiceError(operation string, status int, body []byte) *ServiceError {
	svcErr := &ServiceError{Operation: operation, Status: status}

	raw := map[string]any{}
	if err := json.Unmarshal(body, &raw); err != nil || len(raw) == 0 {
		if len(body) > 0 {
			svcErr.Message = string(body)
		}
		return svcErr
	}
	svcErr.Raw = raw

	svcErr.Code = firstString(raw, "error_code", "error")
	if svcErr.Code == "" {
		if n, ok := raw["code"].(float64); ok {
			svcErr.Code = strconv.Itoa(int(n))
		} else if s, ok := raw["code"].(string); ok {
			svcErr.Code = s
		}
	}
	svcErr.Message = firstString(raw, "msg", "error_description", "message")
	if svcErr.Message == "" {
		svcErr.Message = firstString(raw, "error")
	}
	return svcErr
}

func firstString(raw map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := raw[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
