package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/learnlive/server/internal/presence"
	"github.com/learnlive/server/internal/session"
	"github.com/learnlive/server/internal/store"
	"github.com/learnlive/server/internal/transfer"
)

type fakeIdentity struct {
	createUser   func(ctx context.Context, email, password, name, role string) (store.User, error)
	authenticate func(ctx context.Context, email, password string) (store.User, error)
	getUserByID  func(ctx context.Context, id string) (store.User, error)
}

func (f fakeIdentity) CreateUser(ctx context.Context, email, password, name, role string) (store.User, error) {
	return f.createUser(ctx, email, password, name, role)
}

func (f fakeIdentity) Authenticate(ctx context.Context, email, password string) (store.User, error) {
	return f.authenticate(ctx, email, password)
}

func (f fakeIdentity) GetUserByID(ctx context.Context, id string) (store.User, error) {
	if f.getUserByID == nil {
		return store.User{}, store.ErrNotFound
	}
	return f.getUserByID(ctx, id)
}

type fakeClasses struct {
	createClass  func(ctx context.Context, teacherID, name, section, subject, room, description string) (store.Class, error)
	getClassByID func(ctx context.Context, id string) (store.Class, error)
	joinClass    func(ctx context.Context, studentID, code string) (store.Class, error)
}

func (f fakeClasses) CreateClass(ctx context.Context, teacherID, name, section, subject, room, description string) (store.Class, error) {
	return f.createClass(ctx, teacherID, name, section, subject, room, description)
}

func (f fakeClasses) GetClassByID(ctx context.Context, id string) (store.Class, error) {
	if f.getClassByID == nil {
		return store.Class{}, store.ErrNotFound
	}
	return f.getClassByID(ctx, id)
}

func (f fakeClasses) JoinClass(ctx context.Context, studentID, code string) (store.Class, error) {
	return f.joinClass(ctx, studentID, code)
}

func (f fakeClasses) ClassesForUser(ctx context.Context, userID, role string) ([]store.Class, error) {
	return nil, nil
}

func (f fakeClasses) ClassStudents(ctx context.Context, classID string) ([]store.User, error) {
	return nil, nil
}

func (f fakeClasses) RemoveStudent(ctx context.Context, classID, studentID string) error {
	return nil
}

func (f fakeClasses) DeleteClass(ctx context.Context, classID string) error {
	return nil
}

type fakeMessages struct {
	saveMessage func(ctx context.Context, classID, sentBy, content, attachment, replyTo string) (store.Message, error)
	forClass    func(ctx context.Context, classID string, limit int) ([]store.Message, error)
}

func (f fakeMessages) SaveMessage(ctx context.Context, classID, sentBy, content, attachment, replyTo string) (store.Message, error) {
	return f.saveMessage(ctx, classID, sentBy, content, attachment, replyTo)
}

func (f fakeMessages) MessagesForClass(ctx context.Context, classID string, limit int) ([]store.Message, error) {
	return f.forClass(ctx, classID, limit)
}

type fakeNotifications struct {
	forUser func(ctx context.Context, userID string, limit int) ([]store.Notification, error)
}

func (f fakeNotifications) NotificationsForUser(ctx context.Context, userID string, limit int) ([]store.Notification, error) {
	return f.forUser(ctx, userID, limit)
}

type fakeNotifier struct {
	assignmentCreated  int
	announcementPosted int
	materialUploaded   int
	commentPosted      int
	studentJoined      int
	submissionReceived int
	messagesSent       []store.Message
}

func (f *fakeNotifier) AssignmentCreated(ctx context.Context, class store.Class, assignment store.Assignment) {
	f.assignmentCreated++
}

func (f *fakeNotifier) AnnouncementPosted(ctx context.Context, class store.Class, announcement store.Announcement) {
	f.announcementPosted++
}

func (f *fakeNotifier) MaterialUploaded(ctx context.Context, class store.Class, material store.Material, fileName string) {
	f.materialUploaded++
}

func (f *fakeNotifier) CommentPosted(ctx context.Context, class store.Class, comment store.Comment, commenterName string) {
	f.commentPosted++
}

func (f *fakeNotifier) StudentJoined(ctx context.Context, class store.Class, studentEmail string) {
	f.studentJoined++
}

func (f *fakeNotifier) SubmissionReceived(ctx context.Context, class store.Class, assignment store.Assignment, studentEmail string) {
	f.submissionReceived++
}

func (f *fakeNotifier) MessageSent(message store.Message) int {
	f.messagesSent = append(f.messagesSent, message)
	return len(f.messagesSent)
}

// testDepsConfig collects the fakes a test cares about; everything left nil
// gets a harmless default.
type testDepsConfig struct {
	identity      IdentityQueries
	classes       ClassQueries
	assignments   AssignmentQueries
	content       ContentQueries
	messages      MessageQueries
	notifications NotificationQueries
	notifier      Notifier
	sessions      *session.Registry
	presence      *presence.Registry
	uploadDir     string
}

func newTestDeps(t *testing.T, cfg testDepsConfig) Deps {
	t.Helper()
	if cfg.sessions == nil {
		cfg.sessions = session.NewRegistry()
	}
	if cfg.presence == nil {
		cfg.presence = presence.NewRegistry()
	}
	if cfg.notifier == nil {
		cfg.notifier = &fakeNotifier{}
	}
	if cfg.uploadDir == "" {
		cfg.uploadDir = t.TempDir()
	}
	tracker, err := transfer.NewTracker(cfg.uploadDir)
	require.NoError(t, err)
	return NewDeps(
		cfg.identity, cfg.classes, cfg.assignments, cfg.content,
		cfg.messages, cfg.notifications, cfg.notifier,
		cfg.sessions, cfg.presence, tracker, cfg.uploadDir,
	)
}
