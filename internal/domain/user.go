package domain

import "time"

// User is the target of assignee, created_by, comment and activity references.
type User struct {
	ID        string
	Username  string
	CreatedAt time.Time
}
