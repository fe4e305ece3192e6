package httpapi

// maxBodyBytes controls the maximum allowed request body size for JSON endpoints.
var maxBodyBytes int64 = 1 << 20

// SetMaxBodyBytes allows configuring the maximum request body size.
func SetMaxBodyBytes(n int64) {
	if n <= 0 {
		maxBodyBytes = 1 << 20
		return
	}
	maxBodyBytes = n
}

// maxUploadBytes bounds a multipart upload body. The staging layer applies
// its own per-file ceiling on top.
var maxUploadBytes int64 = 20 << 20

// multipartOverhead is allowed on top of maxUploadBytes for form fields and
// part headers.
const multipartOverhead = 1 << 20

// SetMaxUploadBytes sets the multipart body ceiling (non-positive restores 20 MiB).
func SetMaxUploadBytes(n int64) {
	if n <= 0 {
		maxUploadBytes = 20 << 20
		return
	}
	maxUploadBytes = n
}

// CORS configuration. The gateway serves a browser frontend, so CORS is on
// by default and allows every origin.
var (
	corsEnabled        = true
	corsAllowedOrigins = []string{"*"}
	corsAllowedMethods = []string{"GET", "POST", "OPTIONS"}
	corsAllowedHeaders = []string{"*"}
)

// SetCORSOptions configures CORS behavior for the HTTP server. Empty method
// or header lists keep the defaults.
func SetCORSOptions(enabled bool, origins, methods, headers []string) {
	corsEnabled = enabled
	corsAllowedOrigins = append([]string(nil), origins...)
	if len(methods) > 0 {
		corsAllowedMethods = append([]string(nil), methods...)
	}
	if len(headers) > 0 {
		corsAllowedHeaders = append([]string(nil), headers...)
	}
}
