package handlers

import (
	"net/http"
	"strconv"
)

// getParam returns a path or query parameter value regardless of whether
// the router stores it with a leading colon or not.
func getParam(r *http.Request, name string) string {
	if r == nil {
		return ""
	}
	if val := r.URL.Query().Get(":" + name); val != "" {
		return val
	}
	return r.URL.Query().Get(name)
}

func paramInt64(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(getParam(r, name), 10, 64)
}

func queryInt(r *http.Request, name string, fallback int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return fallback
	}
	return v
}

func queryFloat(r *http.Request, name string) (float64, error) {
	return strconv.ParseFloat(r.URL.Query().Get(name), 64)
}

// userIDFromContext returns the authenticated user id set by the JWT
// middleware, or 0 when the request is anonymous.
func userIDFromContext(r *http.Request) int64 {
	if id, ok := r.Context().Value("user_id").(int64); ok {
		return id
	}
	return 0
}
