package handlers

import (
	"context"
	"errors"

	"github.com/learnlive/server/internal/router"
	"github.com/learnlive/server/internal/store"
	"github.com/learnlive/server/internal/wire"
	"github.com/learnlive/server/pkg/logger"
)

// CreateClassResponse acknowledges class creation with the join code the
// teacher hands out to students.
type CreateClassResponse struct {
	Type      string `json:"type"`
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	ClassID   string `json:"class_id"`
	ClassCode string `json:"class_code"`
}

// CreateClass creates a class owned by the authenticated teacher.
func CreateClass(ctx context.Context, deps Deps, req *router.Request) any {
	if errResp := requireRole(req, "teacher", "create classes"); errResp != nil {
		return errResp
	}
	var p struct {
		ClassName   string `json:"class_name"`
		Section     string `json:"section"`
		Subject     string `json:"subject"`
		Room        string `json:"room"`
		Description string `json:"description"`
	}
	if err := decodeData(req, &p); err != nil {
		return wire.Errorf("Invalid request data")
	}

	c, err := deps.classes.CreateClass(ctx, req.Session.UserID, p.ClassName, p.Section, p.Subject, p.Room, p.Description)
	if err != nil {
		return wire.Errorf(err.Error())
	}
	return CreateClassResponse{
		Type: wire.TypeSuccess, Success: true,
		Message:   "Class created successfully! Class Code: " + c.Code,
		ClassID:   c.ID,
		ClassCode: c.Code,
	}
}

// JoinClass enrolls the authenticated student via join code and notifies the
// teacher.
func JoinClass(ctx context.Context, deps Deps, req *router.Request) any {
	if errResp := requireRole(req, "student", "join classes"); errResp != nil {
		return errResp
	}
	var p struct {
		ClassCode string `json:"class_code"`
	}
	if err := decodeData(req, &p); err != nil {
		return wire.Errorf("Invalid request data")
	}

	c, err := deps.classes.JoinClass(ctx, req.Session.UserID, p.ClassCode)
	if errors.Is(err, store.ErrNotFound) {
		return wire.Errorf("Invalid class code")
	}
	if errors.Is(err, store.ErrAlreadyEnrolled) {
		return wire.Errorf("Already enrolled in this class")
	}
	if err != nil {
		return wire.Errorf(err.Error())
	}

	deps.notifier.StudentJoined(ctx, c, req.Session.Email)

	return struct {
		Type    string `json:"type"`
		Success bool   `json:"success"`
		ClassID string `json:"class_id"`
	}{wire.TypeSuccess, true, c.ID}
}

// ViewClasses lists the classes the user teaches or attends.
func ViewClasses(ctx context.Context, deps Deps, req *router.Request) any {
	classes, err := deps.classes.ClassesForUser(ctx, req.Session.UserID, req.Session.Role)
	if err != nil {
		logger.Errorf("view classes: %v", err)
		return wire.Errorf("Failed to load classes")
	}
	return struct {
		Type    string        `json:"type"`
		Success bool          `json:"success"`
		Classes []store.Class `json:"classes"`
	}{wire.TypeSuccess, true, classes}
}

// ViewStudents lists a class's roster.
func ViewStudents(ctx context.Context, deps Deps, req *router.Request) any {
	var p struct {
		ClassID string `json:"class_id"`
	}
	if err := decodeData(req, &p); err != nil {
		return wire.Errorf("Invalid request data")
	}
	students, err := deps.classes.ClassStudents(ctx, p.ClassID)
	if err != nil {
		logger.Errorf("view students: %v", err)
		return wire.Errorf("Failed to load students")
	}
	return struct {
		Type     string       `json:"type"`
		Success  bool         `json:"success"`
		Students []store.User `json:"students"`
	}{wire.TypeSuccess, true, students}
}

// RemoveStudent drops a student from the teacher's class.
func RemoveStudent(ctx context.Context, deps Deps, req *router.Request) any {
	if errResp := requireRole(req, "teacher", "remove students"); errResp != nil {
		return errResp
	}
	var p struct {
		ClassID   string `json:"class_id"`
		StudentID string `json:"student_id"`
	}
	if err := decodeData(req, &p); err != nil {
		return wire.Errorf("Invalid request data")
	}
	if err := deps.classes.RemoveStudent(ctx, p.ClassID, p.StudentID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return wire.Errorf("Student not enrolled in this class")
		}
		return wire.Errorf(err.Error())
	}
	return wire.OK("")
}

// DeleteClass removes the teacher's class and everything in it.
func DeleteClass(ctx context.Context, deps Deps, req *router.Request) any {
	if errResp := requireRole(req, "teacher", "delete classes"); errResp != nil {
		return errResp
	}
	var p struct {
		ClassID string `json:"class_id"`
	}
	if err := decodeData(req, &p); err != nil {
		return wire.Errorf("Invalid request data")
	}
	if err := deps.classes.DeleteClass(ctx, p.ClassID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return wire.Errorf("Class not found")
		}
		return wire.Errorf(err.Error())
	}
	return wire.OK("")
}
