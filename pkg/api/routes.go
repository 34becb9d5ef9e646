package api

import (
	"fmt"
	"net/http"
	"strings"
)

// Mux is the minimal interface required to register a net/http handler.
// It is satisfied by *http.ServeMux.
type Mux interface {
	Handle(pattern string, handler http.Handler)
}

// RegisterRoutes mounts handler under basePath and returns the pattern used.
func RegisterRoutes(mux Mux, basePath string, handler http.Handler) (string, error) {
	if mux == nil {
		return "", fmt.Errorf("api: missing mux")
	}
	if handler == nil {
		return "", fmt.Errorf("api: missing handler")
	}
	base := mountPath(basePath)
	if base == "" {
		mux.Handle("/", handler)
		return "/", nil
	}
	pattern := base + "/"
	mux.Handle(pattern, http.StripPrefix(base, handler))
	return pattern, nil
}

func mountPath(basePath string) string {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" || basePath == "/" {
		return ""
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	return strings.TrimRight(basePath, "/")
}
