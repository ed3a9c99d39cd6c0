package handlers

import (
	"context"
	"errors"

	"github.com/learnlive/server/internal/router"
	"github.com/learnlive/server/internal/store"
	"github.com/learnlive/server/internal/wire"
	"github.com/learnlive/server/pkg/logger"
)

// CreateAssignment adds an assignment to one of the teacher's classes and
// notifies enrolled students.
func CreateAssignment(ctx context.Context, deps Deps, req *router.Request) any {
	if errResp := requireRole(req, "teacher", "create assignments"); errResp != nil {
		return errResp
	}
	var p struct {
		ClassID     string `json:"class_id"`
		Title       string `json:"title"`
		Description string `json:"description"`
		DueDate     string `json:"due_date"`
		MaxPoints   int    `json:"max_points"`
	}
	if err := decodeData(req, &p); err != nil {
		return wire.Errorf("Invalid request data")
	}

	a, err := deps.assignments.CreateAssignment(ctx, p.ClassID, p.Title, p.Description, p.DueDate, p.MaxPoints)
	if err != nil {
		return wire.Errorf(err.Error())
	}

	if c, err := deps.classes.GetClassByID(ctx, p.ClassID); err == nil {
		deps.notifier.AssignmentCreated(ctx, c, a)
	}

	return struct {
		Type         string `json:"type"`
		Success      bool   `json:"success"`
		AssignmentID string `json:"assignment_id"`
	}{wire.TypeSuccess, true, a.ID}
}

// ViewAssignments lists a class's assignments.
func ViewAssignments(ctx context.Context, deps Deps, req *router.Request) any {
	var p struct {
		ClassID string `json:"class_id"`
	}
	if err := decodeData(req, &p); err != nil {
		return wire.Errorf("Invalid request data")
	}
	assignments, err := deps.assignments.AssignmentsForClass(ctx, p.ClassID)
	if err != nil {
		logger.Errorf("view assignments: %v", err)
		return wire.Errorf("Failed to load assignments")
	}
	return struct {
		Type        string             `json:"type"`
		Success     bool               `json:"success"`
		Assignments []store.Assignment `json:"assignments"`
	}{wire.TypeSuccess, true, assignments}
}

// SubmitAssignment records the student's submission. When the metadata
// declares an attached file, the raw bytes follow the frame on the same
// connection (bulk binary upload) and are stored before the submission row is
// written.
func SubmitAssignment(ctx context.Context, deps Deps, req *router.Request) any {
	var p struct {
		AssignmentID string `json:"assignment_id"`
		TextContent  string `json:"text_content"`
		Filename     string `json:"filename"`
		FileSize     int64  `json:"file_size"`
	}
	if err := decodeData(req, &p); err != nil {
		return wire.Errorf("Invalid request data")
	}
	if errResp := requireRole(req, "student", "submit assignments"); errResp != nil {
		discardBlob(req, p.FileSize)
		return errResp
	}

	filePath := ""
	if p.Filename != "" || p.FileSize > 0 {
		path, errResp := receiveBlob(deps, req, p.Filename, p.FileSize)
		if errResp != nil {
			return errResp
		}
		filePath = path
	}

	sub, err := deps.assignments.SubmitAssignment(ctx, p.AssignmentID, req.Session.UserID, filePath, p.TextContent)
	if err != nil {
		return wire.Errorf(err.Error())
	}

	if a, err := deps.assignments.GetAssignmentByID(ctx, p.AssignmentID); err == nil {
		if c, err := deps.classes.GetClassByID(ctx, a.ClassID); err == nil {
			deps.notifier.SubmissionReceived(ctx, c, a, req.Session.Email)
		}
	}

	return struct {
		Type         string `json:"type"`
		Success      bool   `json:"success"`
		SubmissionID string `json:"submission_id"`
	}{wire.TypeSuccess, true, sub.ID}
}

// ViewSubmissions lists every submission for one assignment.
func ViewSubmissions(ctx context.Context, deps Deps, req *router.Request) any {
	if errResp := requireRole(req, "teacher", "view submissions"); errResp != nil {
		return errResp
	}
	var p struct {
		AssignmentID string `json:"assignment_id"`
	}
	if err := decodeData(req, &p); err != nil {
		return wire.Errorf("Invalid request data")
	}
	subs, err := deps.assignments.SubmissionsForAssignment(ctx, p.AssignmentID)
	if err != nil {
		logger.Errorf("view submissions: %v", err)
		return wire.Errorf("Failed to load submissions")
	}
	return submissionsResponse(subs)
}

// GetStudentSubmission returns one student's submission for an assignment.
func GetStudentSubmission(ctx context.Context, deps Deps, req *router.Request) any {
	var p struct {
		AssignmentID string `json:"assignment_id"`
		StudentID    string `json:"student_id"`
	}
	if err := decodeData(req, &p); err != nil {
		return wire.Errorf("Invalid request data")
	}
	studentID := p.StudentID
	if req.Session.Role == "student" {
		// Students can only fetch their own submission.
		studentID = req.Session.UserID
	}
	sub, err := deps.assignments.StudentSubmission(ctx, p.AssignmentID, studentID)
	if errors.Is(err, store.ErrNotFound) {
		return wire.Errorf("No submission found")
	}
	if err != nil {
		logger.Errorf("get student submission: %v", err)
		return wire.Errorf("Failed to load submission")
	}
	return struct {
		Type       string           `json:"type"`
		Success    bool             `json:"success"`
		Submission store.Submission `json:"submission"`
	}{wire.TypeSuccess, true, sub}
}

// GetTeacherSubmissions lists submissions across all of the teacher's
// classes.
func GetTeacherSubmissions(ctx context.Context, deps Deps, req *router.Request) any {
	if errResp := requireRole(req, "teacher", "view all submissions"); errResp != nil {
		return errResp
	}
	subs, err := deps.assignments.TeacherSubmissions(ctx, req.Session.UserID)
	if err != nil {
		logger.Errorf("teacher submissions: %v", err)
		return wire.Errorf("Failed to load submissions")
	}
	return submissionsResponse(subs)
}

// GetStudentAllAssignments lists assignments across every class the student
// attends.
func GetStudentAllAssignments(ctx context.Context, deps Deps, req *router.Request) any {
	if errResp := requireRole(req, "student", "view their assignments"); errResp != nil {
		return errResp
	}
	assignments, err := deps.assignments.StudentAllAssignments(ctx, req.Session.UserID)
	if err != nil {
		logger.Errorf("student assignments: %v", err)
		return wire.Errorf("Failed to load assignments")
	}
	return struct {
		Type        string             `json:"type"`
		Success     bool               `json:"success"`
		Assignments []store.Assignment `json:"assignments"`
	}{wire.TypeSuccess, true, assignments}
}

func submissionsResponse(subs []store.Submission) any {
	return struct {
		Type        string             `json:"type"`
		Success     bool               `json:"success"`
		Submissions []store.Submission `json:"submissions"`
	}{wire.TypeSuccess, true, subs}
}
