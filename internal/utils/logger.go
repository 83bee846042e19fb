package utils

import (
	"log"
	"strings"
)

// LogEvent prints one structured line: [MODULE] action=.. request_id=.. msg=..
// Background jobs pass their own name as the request id. Never pass raw payloads.
func LogEvent(requestID, module, action, message string) {
	req := strings.TrimSpace(requestID)
	if req == "" {
		req = "-"
	}
	log.Printf("[%s] action=%s request_id=%s msg=%s", strings.ToUpper(module), action, req, message)
}
