package store

import "time"

// User is a registered account. PasswordHash never leaves the store package's
// callers via JSON.
type User struct {
	ID           string    `json:"user_id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Class is one classroom with its enrollment join code.
type Class struct {
	ID          string    `json:"class_id"`
	Code        string    `json:"class_code"`
	Name        string    `json:"class_name"`
	Section     string    `json:"section"`
	Subject     string    `json:"subject"`
	Room        string    `json:"room"`
	Description string    `json:"description"`
	TeacherID   string    `json:"teacher_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Assignment belongs to a class.
type Assignment struct {
	ID          string    `json:"assignment_id"`
	ClassID     string    `json:"class_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     string    `json:"due_date"`
	MaxPoints   int       `json:"max_points"`
	CreatedAt   time.Time `json:"created_at"`
}

// Submission is one student's answer to an assignment.
type Submission struct {
	ID           string    `json:"submission_id"`
	AssignmentID string    `json:"assignment_id"`
	StudentID    string    `json:"student_id"`
	StudentName  string    `json:"student_name,omitempty"`
	StudentEmail string    `json:"student_email,omitempty"`
	FilePath     string    `json:"file_path"`
	TextContent  string    `json:"text_content"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

// Announcement is a teacher post visible to the whole class.
type Announcement struct {
	ID        string    `json:"announcement_id"`
	ClassID   string    `json:"class_id"`
	TeacherID string    `json:"teacher_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	FilePath  string    `json:"file_path,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Comment hangs off an announcement, assignment or material.
type Comment struct {
	ID         string    `json:"comment_id"`
	ItemID     string    `json:"item_id"`
	ItemType   string    `json:"item_type"`
	ClassID    string    `json:"class_id"`
	UserID     string    `json:"user_id"`
	UserName   string    `json:"user_name,omitempty"`
	Text       string    `json:"comment_text"`
	ParentID   string    `json:"parent_comment_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Material is a file or link a teacher shared with a class.
type Material struct {
	ID           string    `json:"material_id"`
	ClassID      string    `json:"class_id"`
	TeacherID    string    `json:"teacher_id"`
	Title        string    `json:"title"`
	MaterialType string    `json:"material_type"`
	FilePath     string    `json:"file_path"`
	CreatedAt    time.Time `json:"created_at"`
}

// Message is one discussion chat message.
type Message struct {
	ID         string    `json:"msg_id"`
	ClassID    string    `json:"class_id"`
	SentBy     string    `json:"sent_by"`
	Content    string    `json:"content"`
	Attachment string    `json:"attachment,omitempty"`
	ReplyTo    string    `json:"reply,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Notification is a persisted copy of a pushed notification, kept so offline
// users can fetch it later.
type Notification struct {
	ID        string    `json:"notification_id"`
	UserID    string    `json:"user_id"`
	Payload   string    `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}
