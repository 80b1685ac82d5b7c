package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
)

// writeJSON 输出 JSON 响应
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError 输出错误响应
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}

// writeErrorDetails 输出带 details 的错误响应
func writeErrorDetails(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   message,
		"details": details,
	})
}

// readBodyJSON 解析请求体 JSON
func readBodyJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return fmt.Errorf("request body is required")
	}
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// parseIntQuery 解析整型查询参数，缺失或非法时返回默认值
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	if s := r.URL.Query().Get(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return defaultValue
}
