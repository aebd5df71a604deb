package errs

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// codes maps application error codes to http status codes.
var codes = map[string]int{
	ECONFLICT:        http.StatusConflict,
	EINVALID:         http.StatusBadRequest,
	ENOTFOUND:        http.StatusNotFound,
	EUNAUTHENTICATED: http.StatusUnauthorized,
	EUNAUTHORIZED:    http.StatusForbidden,
	EINTERNAL:        http.StatusInternalServerError,
}

// StatusCode returns the http status code for an application error code.
func StatusCode(code string) int {
	if v, ok := codes[code]; ok {
		return v
	}
	return http.StatusInternalServerError
}

// ReturnError writes the failure envelope {"success": false, "error": "..."} for err.
// Internal errors are logged, since their cause never reaches the client.
func ReturnError(w http.ResponseWriter, r *http.Request, err error) {
	code, message := ErrorCode(err), ErrorMessage(err)
	if code == EINTERNAL {
		LogError(r, err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(StatusCode(code))
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   message,
		"code":    code,
	}); err != nil {
		LogError(r, err)
	}
}

// LogError logs an error together with the request that caused it.
func LogError(r *http.Request, err error) {
	slog.Error("request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err)
}
