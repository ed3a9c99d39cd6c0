package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
)

const classCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// newClassCode generates a 6-character join code from an alphabet without
// easily-confused characters.
func newClassCode() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("store: generate class code: %w", err)
	}
	for i, b := range buf {
		buf[i] = classCodeAlphabet[int(b)%len(classCodeAlphabet)]
	}
	return string(buf), nil
}

// CreateClass creates a class owned by teacherID and assigns a join code.
func (s *Store) CreateClass(ctx context.Context, teacherID, name, section, subject, room, description string) (Class, error) {
	if name == "" {
		return Class{}, fmt.Errorf("store: class name is required")
	}

	for {
		code, err := newClassCode()
		if err != nil {
			return Class{}, err
		}
		c := Class{
			ID:          uuid.New().String(),
			Code:        code,
			Name:        name,
			Section:     section,
			Subject:     subject,
			Room:        room,
			Description: description,
			TeacherID:   teacherID,
		}
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO classes (id, code, name, section, subject, room, description, teacher_id)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID, c.Code, c.Name, c.Section, c.Subject, c.Room, c.Description, c.TeacherID)
		if err != nil {
			// Retry on the astronomically unlikely code collision.
			if sqliteErr, ok := err.(sqlite3.Error); ok && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
				continue
			}
			return Class{}, fmt.Errorf("store: create class: %w", err)
		}
		return c, nil
	}
}

// GetClassByID returns one class.
func (s *Store) GetClassByID(ctx context.Context, id string) (Class, error) {
	return s.scanClass(s.db.QueryRowContext(ctx,
		`SELECT id, code, name, section, subject, room, description, teacher_id, created_at
		 FROM classes WHERE id = ?`, id))
}

// GetClassByCode returns the class with the given join code.
func (s *Store) GetClassByCode(ctx context.Context, code string) (Class, error) {
	return s.scanClass(s.db.QueryRowContext(ctx,
		`SELECT id, code, name, section, subject, room, description, teacher_id, created_at
		 FROM classes WHERE code = ?`, code))
}

func (s *Store) scanClass(row *sql.Row) (Class, error) {
	var c Class
	err := row.Scan(&c.ID, &c.Code, &c.Name, &c.Section, &c.Subject, &c.Room,
		&c.Description, &c.TeacherID, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return Class{}, ErrNotFound
	}
	if err != nil {
		return Class{}, fmt.Errorf("store: get class: %w", err)
	}
	return c, nil
}

// JoinClass enrolls a student via join code and returns the class.
func (s *Store) JoinClass(ctx context.Context, studentID, code string) (Class, error) {
	c, err := s.GetClassByCode(ctx, code)
	if err != nil {
		return Class{}, err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO enrollments (class_id, student_id) VALUES (?, ?)`, c.ID, studentID)
	if err != nil {
		if sqliteErr, ok := err.(sqlite3.Error); ok && sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
			return Class{}, ErrAlreadyEnrolled
		}
		return Class{}, fmt.Errorf("store: join class: %w", err)
	}
	return c, nil
}

// ClassesForUser lists the classes a user teaches or is enrolled in,
// depending on role.
func (s *Store) ClassesForUser(ctx context.Context, userID, role string) ([]Class, error) {
	query := `SELECT id, code, name, section, subject, room, description, teacher_id, created_at
		 FROM classes WHERE teacher_id = ? ORDER BY created_at DESC`
	if role == "student" {
		query = `SELECT c.id, c.code, c.name, c.section, c.subject, c.room, c.description, c.teacher_id, c.created_at
		 FROM classes c JOIN enrollments e ON e.class_id = c.id
		 WHERE e.student_id = ? ORDER BY c.created_at DESC`
	}

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("store: list classes: %w", err)
	}
	defer rows.Close()

	classes := []Class{}
	for rows.Next() {
		var c Class
		if err := rows.Scan(&c.ID, &c.Code, &c.Name, &c.Section, &c.Subject, &c.Room,
			&c.Description, &c.TeacherID, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: scan class: %w", err)
		}
		classes = append(classes, c)
	}
	return classes, rows.Err()
}

// ClassStudents lists the accounts enrolled in a class.
func (s *Store) ClassStudents(ctx context.Context, classID string) ([]User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT u.id, u.email, u.name, u.role, u.created_at
		 FROM users u JOIN enrollments e ON e.student_id = u.id
		 WHERE e.class_id = ? ORDER BY u.name`, classID)
	if err != nil {
		return nil, fmt.Errorf("store: list students: %w", err)
	}
	defer rows.Close()

	students := []User{}
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: scan student: %w", err)
		}
		students = append(students, u)
	}
	return students, rows.Err()
}

// EnrolledStudentIDs returns the ids of every student in a class, used for
// notification fan-out.
func (s *Store) EnrolledStudentIDs(ctx context.Context, classID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT student_id FROM enrollments WHERE class_id = ?`, classID)
	if err != nil {
		return nil, fmt.Errorf("store: list enrollment ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("store: scan enrollment id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// RemoveStudent drops a student's enrollment.
func (s *Store) RemoveStudent(ctx context.Context, classID, studentID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM enrollments WHERE class_id = ? AND student_id = ?`, classID, studentID)
	if err != nil {
		return fmt.Errorf("store: remove student: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteClass removes a class; enrollments, assignments and content cascade.
func (s *Store) DeleteClass(ctx context.Context, classID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM classes WHERE id = ?`, classID)
	if err != nil {
		return fmt.Errorf("store: delete class: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
