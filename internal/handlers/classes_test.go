package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/learnlive/server/internal/session"
	"github.com/learnlive/server/internal/store"
	"github.com/learnlive/server/internal/wire"
)

func teacherSession() *session.Session {
	return &session.Session{Token: "tok", UserID: "t1", Role: "teacher", Name: "Teach", Email: "t@example.com"}
}

func TestCreateClassTeacherOnly(t *testing.T) {
	deps := newTestDeps(t, testDepsConfig{})

	req := newRequest(t, wire.TypeCreateClass, map[string]string{"class_name": "Algebra"})
	req.Session = studentSession()

	er, ok := CreateClass(context.Background(), deps, req).(wire.ErrorResponse)
	require.True(t, ok)
	require.Equal(t, "Only teachers can create classes", er.Error)
}

func TestCreateClassReturnsJoinCode(t *testing.T) {
	deps := newTestDeps(t, testDepsConfig{
		classes: fakeClasses{
			createClass: func(ctx context.Context, teacherID, name, section, subject, room, description string) (store.Class, error) {
				require.Equal(t, "t1", teacherID)
				require.Equal(t, "Algebra", name)
				return store.Class{ID: "c1", Code: "AB23CD", Name: name, TeacherID: teacherID}, nil
			},
		},
	})

	req := newRequest(t, wire.TypeCreateClass, map[string]string{"class_name": "Algebra"})
	req.Session = teacherSession()

	resp, ok := CreateClass(context.Background(), deps, req).(CreateClassResponse)
	require.True(t, ok)
	require.True(t, resp.Success)
	require.Equal(t, "AB23CD", resp.ClassCode)
	require.Equal(t, "c1", resp.ClassID)
}

func TestJoinClassNotifiesTeacher(t *testing.T) {
	notifier := &fakeNotifier{}
	deps := newTestDeps(t, testDepsConfig{
		notifier: notifier,
		classes: fakeClasses{
			joinClass: func(ctx context.Context, studentID, code string) (store.Class, error) {
				require.Equal(t, "u1", studentID)
				require.Equal(t, "AB23CD", code)
				return store.Class{ID: "c1", Code: code, TeacherID: "t1"}, nil
			},
		},
	})

	req := newRequest(t, wire.TypeJoinClass, map[string]string{"class_code": "AB23CD"})
	req.Session = studentSession()

	resp := JoinClass(context.Background(), deps, req)
	_, isErr := resp.(wire.ErrorResponse)
	require.False(t, isErr, "got %v", resp)
	require.Equal(t, 1, notifier.studentJoined)
}

func TestJoinClassInvalidCode(t *testing.T) {
	deps := newTestDeps(t, testDepsConfig{
		classes: fakeClasses{
			joinClass: func(ctx context.Context, studentID, code string) (store.Class, error) {
				return store.Class{}, store.ErrNotFound
			},
		},
	})

	req := newRequest(t, wire.TypeJoinClass, map[string]string{"class_code": "ZZZZZZ"})
	req.Session = studentSession()

	er, ok := JoinClass(context.Background(), deps, req).(wire.ErrorResponse)
	require.True(t, ok)
	require.Equal(t, "Invalid class code", er.Error)
}

func TestJoinClassTeacherRejected(t *testing.T) {
	deps := newTestDeps(t, testDepsConfig{})

	req := newRequest(t, wire.TypeJoinClass, map[string]string{"class_code": "AB23CD"})
	req.Session = teacherSession()

	er, ok := JoinClass(context.Background(), deps, req).(wire.ErrorResponse)
	require.True(t, ok)
	require.Equal(t, "Only students can join classes", er.Error)
}
