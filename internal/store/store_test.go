package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateUserAndAuthenticate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, "Ada@Example.com", "secret", "Ada", "teacher")
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", u.Email)

	got, err := s.Authenticate(ctx, "ada@example.com", "secret")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	_, err = s.Authenticate(ctx, "ada@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.Authenticate(ctx, "nobody@example.com", "secret")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateUser(ctx, "bob@example.com", "pw", "Bob", "student")
	require.NoError(t, err)
	_, err = s.CreateUser(ctx, "bob@example.com", "pw2", "Bobby", "student")
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestCreateUserInvalidRole(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CreateUser(context.Background(), "x@example.com", "pw", "X", "admin")
	require.Error(t, err)
}

func seedClass(t *testing.T, s *Store) (User, Class) {
	t.Helper()
	ctx := context.Background()
	teacher, err := s.CreateUser(ctx, "teach@example.com", "pw", "Teach", "teacher")
	require.NoError(t, err)
	class, err := s.CreateClass(ctx, teacher.ID, "Algebra", "A", "Math", "101", "intro")
	require.NoError(t, err)
	return teacher, class
}

func TestCreateAndJoinClass(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, class := seedClass(t, s)
	require.Len(t, class.Code, 6)

	student, err := s.CreateUser(ctx, "stud@example.com", "pw", "Stud", "student")
	require.NoError(t, err)

	joined, err := s.JoinClass(ctx, student.ID, class.Code)
	require.NoError(t, err)
	require.Equal(t, class.ID, joined.ID)

	_, err = s.JoinClass(ctx, student.ID, class.Code)
	require.ErrorIs(t, err, ErrAlreadyEnrolled)

	_, err = s.JoinClass(ctx, student.ID, "ZZZZZZ")
	require.ErrorIs(t, err, ErrNotFound)

	students, err := s.ClassStudents(ctx, class.ID)
	require.NoError(t, err)
	require.Len(t, students, 1)
	require.Equal(t, student.ID, students[0].ID)

	ids, err := s.EnrolledStudentIDs(ctx, class.ID)
	require.NoError(t, err)
	require.Equal(t, []string{student.ID}, ids)
}

func TestClassesForUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	teacher, class := seedClass(t, s)

	student, err := s.CreateUser(ctx, "stud@example.com", "pw", "Stud", "student")
	require.NoError(t, err)
	_, err = s.JoinClass(ctx, student.ID, class.Code)
	require.NoError(t, err)

	taught, err := s.ClassesForUser(ctx, teacher.ID, "teacher")
	require.NoError(t, err)
	require.Len(t, taught, 1)

	attending, err := s.ClassesForUser(ctx, student.ID, "student")
	require.NoError(t, err)
	require.Len(t, attending, 1)
	require.Equal(t, class.ID, attending[0].ID)
}

func TestRemoveStudentAndDeleteClass(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, class := seedClass(t, s)

	student, err := s.CreateUser(ctx, "stud@example.com", "pw", "Stud", "student")
	require.NoError(t, err)
	_, err = s.JoinClass(ctx, student.ID, class.Code)
	require.NoError(t, err)

	require.NoError(t, s.RemoveStudent(ctx, class.ID, student.ID))
	require.ErrorIs(t, s.RemoveStudent(ctx, class.ID, student.ID), ErrNotFound)

	require.NoError(t, s.DeleteClass(ctx, class.ID))
	_, err = s.GetClassByID(ctx, class.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAssignmentLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, class := seedClass(t, s)

	a, err := s.CreateAssignment(ctx, class.ID, "HW1", "do it", "2026-09-15", 100)
	require.NoError(t, err)

	list, err := s.AssignmentsForClass(ctx, class.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, a.ID, list[0].ID)

	got, err := s.GetAssignmentByID(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, "HW1", got.Title)
}

func TestSubmissionUpsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, class := seedClass(t, s)

	student, err := s.CreateUser(ctx, "stud@example.com", "pw", "Stud", "student")
	require.NoError(t, err)
	_, err = s.JoinClass(ctx, student.ID, class.Code)
	require.NoError(t, err)

	a, err := s.CreateAssignment(ctx, class.ID, "HW1", "", "", 100)
	require.NoError(t, err)

	first, err := s.SubmitAssignment(ctx, a.ID, student.ID, "", "draft")
	require.NoError(t, err)

	// Resubmitting replaces, not duplicates.
	_, err = s.SubmitAssignment(ctx, a.ID, student.ID, "", "final")
	require.NoError(t, err)

	subs, err := s.SubmissionsForAssignment(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	require.Equal(t, "final", subs[0].TextContent)

	sub, err := s.StudentSubmission(ctx, a.ID, student.ID)
	require.NoError(t, err)
	require.Equal(t, "final", sub.TextContent)
	_ = first

	_, err = s.StudentSubmission(ctx, a.ID, "nobody")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestTeacherSubmissions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	teacher, class := seedClass(t, s)

	student, err := s.CreateUser(ctx, "stud@example.com", "pw", "Stud", "student")
	require.NoError(t, err)
	_, err = s.JoinClass(ctx, student.ID, class.Code)
	require.NoError(t, err)

	a, err := s.CreateAssignment(ctx, class.ID, "HW1", "", "", 100)
	require.NoError(t, err)
	_, err = s.SubmitAssignment(ctx, a.ID, student.ID, "", "text")
	require.NoError(t, err)

	subs, err := s.TeacherSubmissions(ctx, teacher.ID)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	require.Equal(t, student.ID, subs[0].StudentID)
}

func TestStudentAllAssignments(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, class := seedClass(t, s)

	student, err := s.CreateUser(ctx, "stud@example.com", "pw", "Stud", "student")
	require.NoError(t, err)
	_, err = s.JoinClass(ctx, student.ID, class.Code)
	require.NoError(t, err)

	_, err = s.CreateAssignment(ctx, class.ID, "HW1", "", "", 100)
	require.NoError(t, err)
	_, err = s.CreateAssignment(ctx, class.ID, "HW2", "", "", 100)
	require.NoError(t, err)

	all, err := s.StudentAllAssignments(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestAnnouncementsAndComments(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	teacher, class := seedClass(t, s)

	a, err := s.PostAnnouncement(ctx, class.ID, teacher.ID, "Welcome", "hello class", "")
	require.NoError(t, err)

	list, err := s.AnnouncementsForClass(ctx, class.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, a.ID, list[0].ID)

	c, err := s.PostComment(ctx, a.ID, "announcement", class.ID, teacher.ID, "first", "")
	require.NoError(t, err)

	comments, err := s.CommentsForItem(ctx, a.ID, "announcement")
	require.NoError(t, err)
	require.Len(t, comments, 1)
	require.Equal(t, c.ID, comments[0].ID)
	require.Equal(t, "Teach", comments[0].UserName)
}

func TestMaterials(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	teacher, class := seedClass(t, s)

	m, err := s.AddMaterial(ctx, class.ID, teacher.ID, "Syllabus", "document", "/uploads/syllabus.pdf")
	require.NoError(t, err)

	list, err := s.MaterialsForClass(ctx, class.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, m.ID, list[0].ID)
}

func TestMessages(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, class := seedClass(t, s)

	_, err := s.SaveMessage(ctx, class.ID, "teach@example.com", "hello", "", "")
	require.NoError(t, err)
	m2, err := s.SaveMessage(ctx, class.ID, "stud@example.com", "hi", "", "")
	require.NoError(t, err)

	msgs, err := s.MessagesForClass(ctx, class.ID, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	one, err := s.MessagesForClass(ctx, class.ID, 1)
	require.NoError(t, err)
	require.Len(t, one, 1)
	_ = m2

	_, err = s.SaveMessage(ctx, "", "x", "y", "", "")
	require.Error(t, err)
}

func TestNotifications(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, "n@example.com", "pw", "N", "student")
	require.NoError(t, err)

	require.NoError(t, s.SaveNotification(ctx, u.ID, []byte(`{"type":"NEW_ASSIGNMENT"}`)))
	require.NoError(t, s.SaveNotification(ctx, u.ID, []byte(`{"type":"NEW_COMMENT"}`)))

	list, err := s.NotificationsForUser(ctx, u.ID, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)

	none, err := s.NotificationsForUser(ctx, "nobody", 0)
	require.NoError(t, err)
	require.Empty(t, none)
}
