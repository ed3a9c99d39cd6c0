package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// PostAnnouncement publishes an announcement to a class.
func (s *Store) PostAnnouncement(ctx context.Context, classID, teacherID, title, content, filePath string) (Announcement, error) {
	if title == "" {
		return Announcement{}, fmt.Errorf("store: announcement title is required")
	}
	a := Announcement{
		ID:        uuid.New().String(),
		ClassID:   classID,
		TeacherID: teacherID,
		Title:     title,
		Content:   content,
		FilePath:  filePath,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO announcements (id, class_id, teacher_id, title, content, file_path)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.ClassID, a.TeacherID, a.Title, a.Content, a.FilePath)
	if err != nil {
		return Announcement{}, fmt.Errorf("store: post announcement: %w", err)
	}
	return a, nil
}

// AnnouncementsForClass lists a class's announcements, newest first.
func (s *Store) AnnouncementsForClass(ctx context.Context, classID string) ([]Announcement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, class_id, teacher_id, title, content, file_path, created_at
		 FROM announcements WHERE class_id = ? ORDER BY created_at DESC`, classID)
	if err != nil {
		return nil, fmt.Errorf("store: list announcements: %w", err)
	}
	defer rows.Close()

	announcements := []Announcement{}
	for rows.Next() {
		var a Announcement
		if err := rows.Scan(&a.ID, &a.ClassID, &a.TeacherID, &a.Title, &a.Content,
			&a.FilePath, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: scan announcement: %w", err)
		}
		announcements = append(announcements, a)
	}
	return announcements, rows.Err()
}

// PostComment adds a comment to an announcement, assignment or material.
func (s *Store) PostComment(ctx context.Context, itemID, itemType, classID, userID, text, parentID string) (Comment, error) {
	if text == "" {
		return Comment{}, fmt.Errorf("store: comment text is required")
	}
	c := Comment{
		ID:       uuid.New().String(),
		ItemID:   itemID,
		ItemType: itemType,
		ClassID:  classID,
		UserID:   userID,
		Text:     text,
		ParentID: parentID,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO comments (id, item_id, item_type, class_id, user_id, text, parent_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.ItemID, c.ItemType, c.ClassID, c.UserID, c.Text, c.ParentID)
	if err != nil {
		return Comment{}, fmt.Errorf("store: post comment: %w", err)
	}
	return c, nil
}

// CommentsForItem lists the comments on one item, oldest first so threads
// read top to bottom.
func (s *Store) CommentsForItem(ctx context.Context, itemID, itemType string) ([]Comment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.id, c.item_id, c.item_type, c.class_id, c.user_id, u.name, c.text, c.parent_id, c.created_at
		 FROM comments c JOIN users u ON u.id = c.user_id
		 WHERE c.item_id = ? AND c.item_type = ? ORDER BY c.created_at ASC`, itemID, itemType)
	if err != nil {
		return nil, fmt.Errorf("store: list comments: %w", err)
	}
	defer rows.Close()

	comments := []Comment{}
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.ItemID, &c.ItemType, &c.ClassID, &c.UserID,
			&c.UserName, &c.Text, &c.ParentID, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// AddMaterial records an uploaded class material.
func (s *Store) AddMaterial(ctx context.Context, classID, teacherID, title, materialType, filePath string) (Material, error) {
	if title == "" {
		return Material{}, fmt.Errorf("store: material title is required")
	}
	if materialType == "" {
		materialType = "Document"
	}
	m := Material{
		ID:           uuid.New().String(),
		ClassID:      classID,
		TeacherID:    teacherID,
		Title:        title,
		MaterialType: materialType,
		FilePath:     filePath,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO materials (id, class_id, teacher_id, title, material_type, file_path)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.ClassID, m.TeacherID, m.Title, m.MaterialType, m.FilePath)
	if err != nil {
		return Material{}, fmt.Errorf("store: add material: %w", err)
	}
	return m, nil
}

// MaterialsForClass lists a class's materials, newest first.
func (s *Store) MaterialsForClass(ctx context.Context, classID string) ([]Material, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, class_id, teacher_id, title, material_type, file_path, created_at
		 FROM materials WHERE class_id = ? ORDER BY created_at DESC`, classID)
	if err != nil {
		return nil, fmt.Errorf("store: list materials: %w", err)
	}
	defer rows.Close()

	materials := []Material{}
	for rows.Next() {
		var m Material
		if err := rows.Scan(&m.ID, &m.ClassID, &m.TeacherID, &m.Title, &m.MaterialType,
			&m.FilePath, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: scan material: %w", err)
		}
		materials = append(materials, m)
	}
	return materials, rows.Err()
}
