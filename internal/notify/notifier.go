// Package notify fans classroom events out to their audience: a NOTIFICATION
// frame for users who are online, a persisted copy for everyone so offline
// users can fetch it later, and a best-effort email.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/learnlive/server/internal/mail"
	"github.com/learnlive/server/internal/store"
	"github.com/learnlive/server/internal/wire"
	"github.com/learnlive/server/pkg/logger"
)

// Broadcaster is the presence-side delivery surface.
type Broadcaster interface {
	SendTo(userID string, payload any) bool
	BroadcastAll(payload any) int
}

// Directory resolves recipients and persists notification copies.
type Directory interface {
	GetUserByID(ctx context.Context, id string) (store.User, error)
	EnrolledStudentIDs(ctx context.Context, classID string) ([]string, error)
	SaveNotification(ctx context.Context, userID string, payload []byte) error
}

// Notifier delivers classroom event notifications. Mail and push failures are
// logged and never surfaced to the request that triggered the event.
type Notifier struct {
	broadcaster Broadcaster
	directory   Directory
	sender      mail.Sender
	now         func() time.Time
}

func New(broadcaster Broadcaster, directory Directory, sender mail.Sender) *Notifier {
	return &Notifier{
		broadcaster: broadcaster,
		directory:   directory,
		sender:      sender,
		now:         time.Now,
	}
}

// deliver saves the payload for each recipient and pushes it to those online.
func (n *Notifier) deliver(ctx context.Context, recipientIDs []string, payload map[string]any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		logger.Errorf("notify: marshal payload: %v", err)
		return
	}
	event := wire.NotificationEvent{Type: wire.TypeNotification, Notification: payload}

	online := 0
	for _, id := range recipientIDs {
		if err := n.directory.SaveNotification(ctx, id, raw); err != nil {
			logger.Warnf("notify: save for %s: %v", id, err)
		}
		if n.broadcaster.SendTo(id, event) {
			online++
		}
	}
	logger.Infof("notify: %v delivered (%d/%d online)", payload["type"], online, len(recipientIDs))
}

// email fires one message per recipient from a goroutine.
func (n *Notifier) email(recipients []string, subject, body string) {
	go func() {
		for _, to := range recipients {
			if to == "" {
				continue
			}
			if err := n.sender.Send(mail.Message{To: to, Subject: subject, Body: body}); err != nil {
				logger.Warnf("notify: email to %s: %v", to, err)
			}
		}
	}()
}

// studentRecipients resolves enrolled student ids and their email addresses.
// The slices stay parallel; an id whose lookup fails gets an empty email,
// which the mailer skips.
func (n *Notifier) studentRecipients(ctx context.Context, classID string) ([]string, []string) {
	ids, err := n.directory.EnrolledStudentIDs(ctx, classID)
	if err != nil {
		logger.Warnf("notify: resolve students of %s: %v", classID, err)
		return nil, nil
	}
	emails := make([]string, len(ids))
	for i, id := range ids {
		if u, err := n.directory.GetUserByID(ctx, id); err == nil {
			emails[i] = u.Email
		}
	}
	return ids, emails
}

// AssignmentCreated notifies every enrolled student.
func (n *Notifier) AssignmentCreated(ctx context.Context, class store.Class, assignment store.Assignment) {
	ids, emails := n.studentRecipients(ctx, class.ID)
	n.deliver(ctx, ids, map[string]any{
		"type":             "NEW_ASSIGNMENT",
		"class_id":         class.ID,
		"class_name":       class.Name,
		"assignment_title": assignment.Title,
		"due_date":         assignment.DueDate,
		"timestamp":        n.now().Format(time.RFC3339),
	})
	n.email(emails,
		fmt.Sprintf("New Assignment: %s", assignment.Title),
		fmt.Sprintf("A new assignment has been posted in %s.\n\nAssignment: %s\nDue Date: %s\n\nLog in to LearnLive to view details and submit your work.",
			class.Name, assignment.Title, assignment.DueDate))
}

// AnnouncementPosted notifies every enrolled student.
func (n *Notifier) AnnouncementPosted(ctx context.Context, class store.Class, announcement store.Announcement) {
	ids, emails := n.studentRecipients(ctx, class.ID)
	preview := announcement.Content
	if len(preview) > 100 {
		preview = preview[:100]
	}
	n.deliver(ctx, ids, map[string]any{
		"type":               "NEW_ANNOUNCEMENT",
		"class_id":           class.ID,
		"class_name":         class.Name,
		"announcement_title": announcement.Title,
		"content_preview":    preview,
		"timestamp":          n.now().Format(time.RFC3339),
	})
	n.email(emails,
		fmt.Sprintf("New Announcement: %s", announcement.Title),
		fmt.Sprintf("A new announcement has been posted in %s.\n\nTitle: %s\n\n%s",
			class.Name, announcement.Title, preview))
}

// MaterialUploaded notifies every enrolled student.
func (n *Notifier) MaterialUploaded(ctx context.Context, class store.Class, material store.Material, fileName string) {
	ids, emails := n.studentRecipients(ctx, class.ID)
	n.deliver(ctx, ids, map[string]any{
		"type":           "NEW_MATERIAL",
		"class_id":       class.ID,
		"class_name":     class.Name,
		"material_title": material.Title,
		"file_name":      fileName,
		"timestamp":      n.now().Format(time.RFC3339),
	})
	n.email(emails,
		fmt.Sprintf("New Material: %s", material.Title),
		fmt.Sprintf("New learning material has been uploaded to %s.\n\nMaterial: %s\nFile: %s",
			class.Name, material.Title, fileName))
}

// CommentPosted notifies the whole class: every student plus the teacher,
// except the commenter.
func (n *Notifier) CommentPosted(ctx context.Context, class store.Class, comment store.Comment, commenterName string) {
	ids, emails := n.studentRecipients(ctx, class.ID)
	if teacher, err := n.directory.GetUserByID(ctx, class.TeacherID); err == nil {
		ids = append(ids, teacher.ID)
		emails = append(emails, teacher.Email)
	}
	recipients := ids[:0]
	recipientEmails := emails[:0]
	for i, id := range ids {
		if id == comment.UserID {
			continue
		}
		recipients = append(recipients, id)
		recipientEmails = append(recipientEmails, emails[i])
	}
	preview := comment.Text
	if len(preview) > 100 {
		preview = preview[:100]
	}
	n.deliver(ctx, recipients, map[string]any{
		"type":            "NEW_COMMENT",
		"class_id":        class.ID,
		"class_name":      class.Name,
		"item_id":         comment.ItemID,
		"item_type":       comment.ItemType,
		"commenter_name":  commenterName,
		"comment_preview": preview,
		"timestamp":       n.now().Format(time.RFC3339),
	})
	n.email(recipientEmails,
		fmt.Sprintf("New Comment in %s", class.Name),
		fmt.Sprintf("%s commented on a %s in %s:\n\n%s",
			commenterName, comment.ItemType, class.Name, preview))
}

// StudentJoined notifies the class's teacher.
func (n *Notifier) StudentJoined(ctx context.Context, class store.Class, studentEmail string) {
	n.deliver(ctx, []string{class.TeacherID}, map[string]any{
		"type":          "STUDENT_JOINED",
		"class_id":      class.ID,
		"class_name":    class.Name,
		"student_email": studentEmail,
		"timestamp":     n.now().Format(time.RFC3339),
	})
	if teacher, err := n.directory.GetUserByID(ctx, class.TeacherID); err == nil {
		n.email([]string{teacher.Email},
			fmt.Sprintf("New Student Joined %s", class.Name),
			fmt.Sprintf("%s has joined your class %s (code %s).", studentEmail, class.Name, class.Code))
	}
}

// SubmissionReceived notifies the teacher of the assignment's class.
func (n *Notifier) SubmissionReceived(ctx context.Context, class store.Class, assignment store.Assignment, studentEmail string) {
	n.deliver(ctx, []string{class.TeacherID}, map[string]any{
		"type":             "NEW_SUBMISSION",
		"assignment_id":    assignment.ID,
		"assignment_title": assignment.Title,
		"class_name":       class.Name,
		"student_email":    studentEmail,
		"timestamp":        n.now().Format(time.RFC3339),
	})
}

// MessageSent broadcasts a discussion message to every online user.
func (n *Notifier) MessageSent(message store.Message) int {
	return n.broadcaster.BroadcastAll(wire.MessageEvent{Type: wire.TypeMessage, Message: message})
}
