package handlers

import (
	"context"
	"time"

	"github.com/learnlive/server/internal/presence"
	"github.com/learnlive/server/internal/session"
	"github.com/learnlive/server/internal/store"
	"github.com/learnlive/server/internal/transfer"
)

// IdentityQueries is the subset of account operations used by handlers.
type IdentityQueries interface {
	CreateUser(ctx context.Context, email, password, name, role string) (store.User, error)
	Authenticate(ctx context.Context, email, password string) (store.User, error)
	GetUserByID(ctx context.Context, id string) (store.User, error)
}

// ClassQueries is the subset of class operations used by handlers.
type ClassQueries interface {
	CreateClass(ctx context.Context, teacherID, name, section, subject, room, description string) (store.Class, error)
	GetClassByID(ctx context.Context, id string) (store.Class, error)
	JoinClass(ctx context.Context, studentID, code string) (store.Class, error)
	ClassesForUser(ctx context.Context, userID, role string) ([]store.Class, error)
	ClassStudents(ctx context.Context, classID string) ([]store.User, error)
	RemoveStudent(ctx context.Context, classID, studentID string) error
	DeleteClass(ctx context.Context, classID string) error
}

// AssignmentQueries is the subset of assignment operations used by handlers.
type AssignmentQueries interface {
	CreateAssignment(ctx context.Context, classID, title, description, dueDate string, maxPoints int) (store.Assignment, error)
	GetAssignmentByID(ctx context.Context, id string) (store.Assignment, error)
	AssignmentsForClass(ctx context.Context, classID string) ([]store.Assignment, error)
	StudentAllAssignments(ctx context.Context, studentID string) ([]store.Assignment, error)
	SubmitAssignment(ctx context.Context, assignmentID, studentID, filePath, textContent string) (store.Submission, error)
	SubmissionsForAssignment(ctx context.Context, assignmentID string) ([]store.Submission, error)
	StudentSubmission(ctx context.Context, assignmentID, studentID string) (store.Submission, error)
	TeacherSubmissions(ctx context.Context, teacherID string) ([]store.Submission, error)
}

// ContentQueries is the subset of announcement/comment/material operations
// used by handlers.
type ContentQueries interface {
	PostAnnouncement(ctx context.Context, classID, teacherID, title, content, filePath string) (store.Announcement, error)
	AnnouncementsForClass(ctx context.Context, classID string) ([]store.Announcement, error)
	PostComment(ctx context.Context, itemID, itemType, classID, userID, text, parentID string) (store.Comment, error)
	CommentsForItem(ctx context.Context, itemID, itemType string) ([]store.Comment, error)
	AddMaterial(ctx context.Context, classID, teacherID, title, materialType, filePath string) (store.Material, error)
	MaterialsForClass(ctx context.Context, classID string) ([]store.Material, error)
}

// MessageQueries is the subset of discussion operations used by handlers.
type MessageQueries interface {
	SaveMessage(ctx context.Context, classID, sentBy, content, attachment, replyTo string) (store.Message, error)
	MessagesForClass(ctx context.Context, classID string, limit int) ([]store.Message, error)
}

// NotificationQueries is the persisted notification log.
type NotificationQueries interface {
	NotificationsForUser(ctx context.Context, userID string, limit int) ([]store.Notification, error)
}

// Notifier fans classroom events out to online users, the notification log
// and email.
type Notifier interface {
	AssignmentCreated(ctx context.Context, class store.Class, assignment store.Assignment)
	AnnouncementPosted(ctx context.Context, class store.Class, announcement store.Announcement)
	MaterialUploaded(ctx context.Context, class store.Class, material store.Material, fileName string)
	CommentPosted(ctx context.Context, class store.Class, comment store.Comment, commenterName string)
	StudentJoined(ctx context.Context, class store.Class, studentEmail string)
	SubmissionReceived(ctx context.Context, class store.Class, assignment store.Assignment, studentEmail string)
	MessageSent(message store.Message) int
}

// Deps holds the narrow dependencies handlers are built on.
type Deps struct {
	identity      IdentityQueries
	classes       ClassQueries
	assignments   AssignmentQueries
	content       ContentQueries
	messages      MessageQueries
	notifications NotificationQueries
	notifier      Notifier
	sessions      *session.Registry
	presence      *presence.Registry
	tracker       *transfer.Tracker
	uploadDir     string
	now           func() time.Time
}

// NewDeps builds the dependency bundle handlers receive. In production every
// query interface is satisfied by *store.Store.
func NewDeps(
	identity IdentityQueries,
	classes ClassQueries,
	assignments AssignmentQueries,
	content ContentQueries,
	messages MessageQueries,
	notifications NotificationQueries,
	notifier Notifier,
	sessions *session.Registry,
	presences *presence.Registry,
	tracker *transfer.Tracker,
	uploadDir string,
) Deps {
	return Deps{
		identity:      identity,
		classes:       classes,
		assignments:   assignments,
		content:       content,
		messages:      messages,
		notifications: notifications,
		notifier:      notifier,
		sessions:      sessions,
		presence:      presences,
		tracker:       tracker,
		uploadDir:     uploadDir,
		now:           time.Now,
	}
}

func (d Deps) Now() time.Time {
	if d.now != nil {
		return d.now()
	}
	return time.Now()
}
