package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// CreateAssignment adds an assignment to a class.
func (s *Store) CreateAssignment(ctx context.Context, classID, title, description, dueDate string, maxPoints int) (Assignment, error) {
	if title == "" {
		return Assignment{}, fmt.Errorf("store: assignment title is required")
	}
	if maxPoints <= 0 {
		maxPoints = 100
	}
	a := Assignment{
		ID:          uuid.New().String(),
		ClassID:     classID,
		Title:       title,
		Description: description,
		DueDate:     dueDate,
		MaxPoints:   maxPoints,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO assignments (id, class_id, title, description, due_date, max_points)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.ClassID, a.Title, a.Description, a.DueDate, a.MaxPoints)
	if err != nil {
		return Assignment{}, fmt.Errorf("store: create assignment: %w", err)
	}
	return a, nil
}

// GetAssignmentByID returns one assignment.
func (s *Store) GetAssignmentByID(ctx context.Context, id string) (Assignment, error) {
	var a Assignment
	err := s.db.QueryRowContext(ctx,
		`SELECT id, class_id, title, description, due_date, max_points, created_at
		 FROM assignments WHERE id = ?`, id).
		Scan(&a.ID, &a.ClassID, &a.Title, &a.Description, &a.DueDate, &a.MaxPoints, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return Assignment{}, ErrNotFound
	}
	if err != nil {
		return Assignment{}, fmt.Errorf("store: get assignment: %w", err)
	}
	return a, nil
}

// AssignmentsForClass lists a class's assignments, newest first.
func (s *Store) AssignmentsForClass(ctx context.Context, classID string) ([]Assignment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, class_id, title, description, due_date, max_points, created_at
		 FROM assignments WHERE class_id = ? ORDER BY created_at DESC`, classID)
	if err != nil {
		return nil, fmt.Errorf("store: list assignments: %w", err)
	}
	defer rows.Close()
	return scanAssignments(rows)
}

// StudentAllAssignments lists assignments across every class the student is
// enrolled in, newest first.
func (s *Store) StudentAllAssignments(ctx context.Context, studentID string) ([]Assignment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT a.id, a.class_id, a.title, a.description, a.due_date, a.max_points, a.created_at
		 FROM assignments a JOIN enrollments e ON e.class_id = a.class_id
		 WHERE e.student_id = ? ORDER BY a.created_at DESC`, studentID)
	if err != nil {
		return nil, fmt.Errorf("store: list student assignments: %w", err)
	}
	defer rows.Close()
	return scanAssignments(rows)
}

func scanAssignments(rows *sql.Rows) ([]Assignment, error) {
	assignments := []Assignment{}
	for rows.Next() {
		var a Assignment
		if err := rows.Scan(&a.ID, &a.ClassID, &a.Title, &a.Description, &a.DueDate,
			&a.MaxPoints, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: scan assignment: %w", err)
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// SubmitAssignment records a student submission. Resubmitting replaces the
// earlier attempt.
func (s *Store) SubmitAssignment(ctx context.Context, assignmentID, studentID, filePath, textContent string) (Submission, error) {
	sub := Submission{
		ID:           uuid.New().String(),
		AssignmentID: assignmentID,
		StudentID:    studentID,
		FilePath:     filePath,
		TextContent:  textContent,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO submissions (id, assignment_id, student_id, file_path, text_content)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (assignment_id, student_id) DO UPDATE SET
			file_path = excluded.file_path,
			text_content = excluded.text_content,
			submitted_at = CURRENT_TIMESTAMP`,
		sub.ID, sub.AssignmentID, sub.StudentID, sub.FilePath, sub.TextContent)
	if err != nil {
		return Submission{}, fmt.Errorf("store: submit assignment: %w", err)
	}
	return sub, nil
}

// SubmissionsForAssignment lists all submissions for one assignment with
// student display fields joined in.
func (s *Store) SubmissionsForAssignment(ctx context.Context, assignmentID string) ([]Submission, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT sub.id, sub.assignment_id, sub.student_id, u.name, u.email,
			sub.file_path, sub.text_content, sub.submitted_at
		 FROM submissions sub JOIN users u ON u.id = sub.student_id
		 WHERE sub.assignment_id = ? ORDER BY sub.submitted_at DESC`, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("store: list submissions: %w", err)
	}
	defer rows.Close()
	return scanSubmissions(rows)
}

// StudentSubmission returns one student's submission for an assignment.
func (s *Store) StudentSubmission(ctx context.Context, assignmentID, studentID string) (Submission, error) {
	var sub Submission
	err := s.db.QueryRowContext(ctx,
		`SELECT sub.id, sub.assignment_id, sub.student_id, u.name, u.email,
			sub.file_path, sub.text_content, sub.submitted_at
		 FROM submissions sub JOIN users u ON u.id = sub.student_id
		 WHERE sub.assignment_id = ? AND sub.student_id = ?`, assignmentID, studentID).
		Scan(&sub.ID, &sub.AssignmentID, &sub.StudentID, &sub.StudentName, &sub.StudentEmail,
			&sub.FilePath, &sub.TextContent, &sub.SubmittedAt)
	if err == sql.ErrNoRows {
		return Submission{}, ErrNotFound
	}
	if err != nil {
		return Submission{}, fmt.Errorf("store: get submission: %w", err)
	}
	return sub, nil
}

// TeacherSubmissions lists every submission across all of a teacher's
// classes, newest first.
func (s *Store) TeacherSubmissions(ctx context.Context, teacherID string) ([]Submission, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT sub.id, sub.assignment_id, sub.student_id, u.name, u.email,
			sub.file_path, sub.text_content, sub.submitted_at
		 FROM submissions sub
		 JOIN users u ON u.id = sub.student_id
		 JOIN assignments a ON a.id = sub.assignment_id
		 JOIN classes c ON c.id = a.class_id
		 WHERE c.teacher_id = ? ORDER BY sub.submitted_at DESC`, teacherID)
	if err != nil {
		return nil, fmt.Errorf("store: list teacher submissions: %w", err)
	}
	defer rows.Close()
	return scanSubmissions(rows)
}

func scanSubmissions(rows *sql.Rows) ([]Submission, error) {
	subs := []Submission{}
	for rows.Next() {
		var sub Submission
		if err := rows.Scan(&sub.ID, &sub.AssignmentID, &sub.StudentID, &sub.StudentName,
			&sub.StudentEmail, &sub.FilePath, &sub.TextContent, &sub.SubmittedAt); err != nil {
			return nil, fmt.Errorf("store: scan submission: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}
