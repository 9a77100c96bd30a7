package domain

import "github.com/google/uuid"

// RequestContext identifies who is acting on a request.
type RequestContext struct {
	ViewerID  uuid.UUID
	Root      bool // operator token; may trigger reaper cycles
	RequestID string
	ClientIP  string
}
