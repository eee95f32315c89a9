package server

import "time"

// Server timeouts
const (
	ReadHeaderTimeout = 5 * time.Second
)

// Log messages for server lifecycle and request handling
const (
	LogMsgServerStarting   = "Server starting"
	LogMsgRequestStarted   = "Request started"
	LogMsgRequestCompleted = "Request completed"
)

// HTTP header names
const (
	HeaderContentTypeOptions = "X-Content-Type-Options"
	HeaderFrameOptions       = "X-Frame-Options"
	HeaderCacheControl       = "Cache-Control"
	HeaderAllow              = "Allow"
)

// Header values
const (
	HeaderValueNoSniff = "nosniff"
	HeaderValueDeny    = "DENY"
	HeaderValueNoStore = "no-store"
	AllowedMethods     = "GET, HEAD"
)

// QuietPaths are served without request logging
var QuietPaths = []string{
	"/healthz",
	"/readyz",
	"/metrics",
}
