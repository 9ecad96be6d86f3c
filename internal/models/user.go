package models

import (
	"time"
)

type User struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Phone    string    `json:"phone,omitempty"`
	Role     Role      `json:"role"`
	JoinDate time.Time `json:"joinDate"`
}

type AuditEntry struct {
	ID        string         `json:"id"`
	UserID    string         `json:"userId"`
	Action    string         `json:"action"`
	Resource  string         `json:"resource"`
	Details   map[string]any `json:"details,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID   string
	Role Role
}
