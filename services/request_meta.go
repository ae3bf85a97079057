package services

// RequestMeta carries per-request client details handed down from the HTTP
// layer for the audit trail.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}
