package models

import "time"

// Profile represents a student profile record. The integrity core never
// writes profiles; it only reads them as a display-name fallback when a
// certificate's own metadata lacks the names.
type Profile struct {
	ID          string    `json:"id"`
	FullName    string    `json:"full_name"`
	TeacherName string    `json:"teacher_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
