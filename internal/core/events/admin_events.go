package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypePermissionCreated     = "permission.created"
	EventTypePermissionDeleted     = "permission.deleted"
	EventTypePermissionAssigned    = "permission.assigned"
	EventTypePermissionRevoked     = "permission.revoked"
	EventTypeUserPermissionGranted = "permission.user_granted"
	EventTypeUserPermissionRevoked = "permission.user_revoked"
	EventTypeUserCreated           = "user.created"
	EventTypeUserDeleted           = "user.deleted"
)

// AdminEventTypes lists every event an admin mutation can emit.
var AdminEventTypes = []string{
	EventTypePermissionCreated,
	EventTypePermissionDeleted,
	EventTypePermissionAssigned,
	EventTypePermissionRevoked,
	EventTypeUserPermissionGranted,
	EventTypeUserPermissionRevoked,
	EventTypeUserCreated,
	EventTypeUserDeleted,
}

// AdminEvent records who changed what. Subject carries the affected entity, e.g. the role
// or user id a permission was bound to.
type AdminEvent struct {
	BaseEvent
	ActorID      int64  `json:"actor_id"`
	PermissionID int64  `json:"permission_id,omitempty"`
	Permission   string `json:"permission,omitempty"`
	Subject      string `json:"subject,omitempty"`
}

func newAdminEvent(eventType string, actorID int64, data map[string]interface{}) AdminEvent {
	if data == nil {
		data = map[string]interface{}{}
	}
	data["actor_id"] = actorID
	return AdminEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data:      data,
		},
		ActorID: actorID,
	}
}

func NewPermissionCreatedEvent(actorID, permissionID int64, name string) *AdminEvent {
	e := newAdminEvent(EventTypePermissionCreated, actorID, map[string]interface{}{
		"permission_id": permissionID,
		"permission":    name,
	})
	e.PermissionID = permissionID
	e.Permission = name
	return &e
}

func NewPermissionDeletedEvent(actorID, permissionID int64, name string) *AdminEvent {
	e := newAdminEvent(EventTypePermissionDeleted, actorID, map[string]interface{}{
		"permission_id": permissionID,
		"permission":    name,
	})
	e.PermissionID = permissionID
	e.Permission = name
	return &e
}

func NewPermissionAssignedEvent(actorID, permissionID int64, name, roleName string) *AdminEvent {
	e := newAdminEvent(EventTypePermissionAssigned, actorID, map[string]interface{}{
		"permission_id": permissionID,
		"permission":    name,
		"role":          roleName,
	})
	e.PermissionID = permissionID
	e.Permission = name
	e.Subject = roleName
	return &e
}

func NewPermissionRevokedEvent(actorID, permissionID int64, name, roleName string) *AdminEvent {
	e := newAdminEvent(EventTypePermissionRevoked, actorID, map[string]interface{}{
		"permission_id": permissionID,
		"permission":    name,
		"role":          roleName,
	})
	e.PermissionID = permissionID
	e.Permission = name
	e.Subject = roleName
	return &e
}

func NewUserPermissionGrantedEvent(actorID, permissionID int64, name, userID string) *AdminEvent {
	e := newAdminEvent(EventTypeUserPermissionGranted, actorID, map[string]interface{}{
		"permission_id": permissionID,
		"permission":    name,
		"user_id":       userID,
	})
	e.PermissionID = permissionID
	e.Permission = name
	e.Subject = userID
	return &e
}

func NewUserPermissionRevokedEvent(actorID, permissionID int64, name, userID string) *AdminEvent {
	e := newAdminEvent(EventTypeUserPermissionRevoked, actorID, map[string]interface{}{
		"permission_id": permissionID,
		"permission":    name,
		"user_id":       userID,
	})
	e.PermissionID = permissionID
	e.Permission = name
	e.Subject = userID
	return &e
}

func NewUserCreatedEvent(actorID, userID int64, email, roleName string) *AdminEvent {
	e := newAdminEvent(EventTypeUserCreated, actorID, map[string]interface{}{
		"user_id": userID,
		"email":   email,
		"role":    roleName,
	})
	e.Subject = email
	return &e
}

func NewUserDeletedEvent(actorID, userID int64, email string) *AdminEvent {
	e := newAdminEvent(EventTypeUserDeleted, actorID, map[string]interface{}{
		"user_id": userID,
		"email":   email,
	})
	e.Subject = email
	return &e
}
