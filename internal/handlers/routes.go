package handlers

import (
	"context"

	"github.com/learnlive/server/internal/router"
	"github.com/learnlive/server/internal/wire"
)

type handlerFunc func(ctx context.Context, deps Deps, req *router.Request) any

func bind(deps Deps, h handlerFunc) router.Handler {
	return func(ctx context.Context, req *router.Request) any {
		return h(ctx, deps, req)
	}
}

// Register wires every message type to its handler. Only LOGIN and SIGNUP are
// open; everything else requires an active session token.
func Register(r *router.Router, deps Deps) {
	open := func(tag string, h handlerFunc) { r.Register(tag, bind(deps, h), false) }
	gated := func(tag string, h handlerFunc) { r.Register(tag, bind(deps, h), true) }

	open(wire.TypeLogin, Login)
	open(wire.TypeSignup, Signup)
	gated(wire.TypeLogout, Logout)

	gated(wire.TypeCreateClass, CreateClass)
	gated(wire.TypeJoinClass, JoinClass)
	gated(wire.TypeViewClasses, ViewClasses)
	gated(wire.TypeViewStudents, ViewStudents)
	gated(wire.TypeRemoveStudent, RemoveStudent)
	gated(wire.TypeDeleteClass, DeleteClass)

	gated(wire.TypeCreateAssignment, CreateAssignment)
	gated(wire.TypeViewAssignments, ViewAssignments)
	gated(wire.TypeSubmitAssignment, SubmitAssignment)
	gated(wire.TypeViewSubmissions, ViewSubmissions)
	gated(wire.TypeGetStudentSubmission, GetStudentSubmission)
	gated(wire.TypeGetTeacherSubmissions, GetTeacherSubmissions)
	gated(wire.TypeGetStudentAllAssignments, GetStudentAllAssignments)

	gated(wire.TypePostAnnouncement, PostAnnouncement)
	gated(wire.TypeViewAnnouncements, ViewAnnouncements)
	gated(wire.TypePostComment, PostComment)
	gated(wire.TypeViewComments, ViewComments)

	gated(wire.TypeUploadMaterial, UploadMaterial)
	gated(wire.TypeViewMaterials, ViewMaterials)

	gated(wire.TypeStartFileTransfer, StartFileTransfer)
	gated(wire.TypeFileChunk, FileChunk)
	gated(wire.TypeEndFileTransfer, EndFileTransfer)
	gated(wire.TypeDownloadFile, DownloadFile)

	gated(wire.TypeGetNotifications, GetNotifications)
	gated(wire.TypeSendMessage, SendMessage)
	gated(wire.TypeFetchMessages, FetchMessages)
}
