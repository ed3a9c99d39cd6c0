package handlers

import (
	"context"
	"path/filepath"

	"github.com/learnlive/server/internal/router"
	"github.com/learnlive/server/internal/store"
	"github.com/learnlive/server/internal/wire"
	"github.com/learnlive/server/pkg/logger"
)

// PostAnnouncement publishes an announcement and notifies the class.
func PostAnnouncement(ctx context.Context, deps Deps, req *router.Request) any {
	if errResp := requireRole(req, "teacher", "post announcements"); errResp != nil {
		return errResp
	}
	var p struct {
		ClassID  string `json:"class_id"`
		Title    string `json:"title"`
		Content  string `json:"content"`
		FilePath string `json:"file_path"`
	}
	if err := decodeData(req, &p); err != nil {
		return wire.Errorf("Invalid request data")
	}

	a, err := deps.content.PostAnnouncement(ctx, p.ClassID, req.Session.UserID, p.Title, p.Content, p.FilePath)
	if err != nil {
		return wire.Errorf(err.Error())
	}

	if c, err := deps.classes.GetClassByID(ctx, p.ClassID); err == nil {
		deps.notifier.AnnouncementPosted(ctx, c, a)
	}

	return struct {
		Type           string `json:"type"`
		Success        bool   `json:"success"`
		AnnouncementID string `json:"announcement_id"`
	}{wire.TypeSuccess, true, a.ID}
}

// ViewAnnouncements lists a class's announcements.
func ViewAnnouncements(ctx context.Context, deps Deps, req *router.Request) any {
	var p struct {
		ClassID string `json:"class_id"`
	}
	if err := decodeData(req, &p); err != nil {
		return wire.Errorf("Invalid request data")
	}
	announcements, err := deps.content.AnnouncementsForClass(ctx, p.ClassID)
	if err != nil {
		logger.Errorf("view announcements: %v", err)
		return wire.Errorf("Failed to load announcements")
	}
	return struct {
		Type          string               `json:"type"`
		Success       bool                 `json:"success"`
		Announcements []store.Announcement `json:"announcements"`
	}{wire.TypeSuccess, true, announcements}
}

// PostComment adds a comment to an item and notifies the class.
func PostComment(ctx context.Context, deps Deps, req *router.Request) any {
	var p struct {
		ItemID          string `json:"item_id"`
		ItemType        string `json:"item_type"`
		ClassID         string `json:"class_id"`
		CommentText     string `json:"comment_text"`
		ParentCommentID string `json:"parent_comment_id"`
	}
	if err := decodeData(req, &p); err != nil {
		return wire.Errorf("Invalid request data")
	}

	c, err := deps.content.PostComment(ctx, p.ItemID, p.ItemType, p.ClassID, req.Session.UserID, p.CommentText, p.ParentCommentID)
	if err != nil {
		return wire.Errorf(err.Error())
	}

	if class, err := deps.classes.GetClassByID(ctx, p.ClassID); err == nil {
		deps.notifier.CommentPosted(ctx, class, c, req.Session.Name)
	}

	return struct {
		Type      string `json:"type"`
		Success   bool   `json:"success"`
		CommentID string `json:"comment_id"`
	}{wire.TypeSuccess, true, c.ID}
}

// ViewComments lists the comments on one item.
func ViewComments(ctx context.Context, deps Deps, req *router.Request) any {
	var p struct {
		ItemID   string `json:"item_id"`
		ItemType string `json:"item_type"`
	}
	if err := decodeData(req, &p); err != nil {
		return wire.Errorf("Invalid request data")
	}
	comments, err := deps.content.CommentsForItem(ctx, p.ItemID, p.ItemType)
	if err != nil {
		logger.Errorf("view comments: %v", err)
		return wire.Errorf("Failed to load comments")
	}
	return struct {
		Type     string          `json:"type"`
		Success  bool            `json:"success"`
		Comments []store.Comment `json:"comments"`
	}{wire.TypeSuccess, true, comments}
}

// UploadMaterial stores a class material. When the metadata declares a file,
// its raw bytes follow the frame as a bulk binary upload.
func UploadMaterial(ctx context.Context, deps Deps, req *router.Request) any {
	var p struct {
		ClassID      string `json:"class_id"`
		Title        string `json:"title"`
		MaterialType string `json:"material_type"`
		Filename     string `json:"filename"`
		FileSize     int64  `json:"file_size"`
	}
	if err := decodeData(req, &p); err != nil {
		return wire.Errorf("Invalid request data")
	}
	if errResp := requireRole(req, "teacher", "upload materials"); errResp != nil {
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

	m, err := deps.content.AddMaterial(ctx, p.ClassID, req.Session.UserID, p.Title, p.MaterialType, filePath)
	if err != nil {
		return wire.Errorf(err.Error())
	}

	if c, err := deps.classes.GetClassByID(ctx, p.ClassID); err == nil {
		deps.notifier.MaterialUploaded(ctx, c, m, filepath.Base(filePath))
	}

	return struct {
		Type       string `json:"type"`
		Success    bool   `json:"success"`
		MaterialID string `json:"material_id"`
	}{wire.TypeSuccess, true, m.ID}
}

// ViewMaterials lists a class's materials.
func ViewMaterials(ctx context.Context, deps Deps, req *router.Request) any {
	var p struct {
		ClassID string `json:"class_id"`
	}
	if err := decodeData(req, &p); err != nil {
		return wire.Errorf("Invalid request data")
	}
	materials, err := deps.content.MaterialsForClass(ctx, p.ClassID)
	if err != nil {
		logger.Errorf("view materials: %v", err)
		return wire.Errorf("Failed to load materials")
	}
	return struct {
		Type      string           `json:"type"`
		Success   bool             `json:"success"`
		Materials []store.Material `json:"materials"`
	}{wire.TypeSuccess, true, materials}
}
