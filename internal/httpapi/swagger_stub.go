//go:build !swagger

package httpapi

import "github.com/go-chi/chi/v5"

// MountSwagger leaves /swagger/* unrouted; the UI and OpenAPI document are
// only compiled in with -tags=swagger.
func MountSwagger(chi.Router) {}
