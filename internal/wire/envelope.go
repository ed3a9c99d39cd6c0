package wire

import "encoding/json"

// Request message types. Tags are what the desktop client puts in the
// envelope "type" field.
const (
	TypeLogin  = "LOGIN"
	TypeSignup = "SIGNUP"
	TypeLogout = "LOGOUT"

	TypeCreateClass   = "CREATE_CLASS"
	TypeJoinClass     = "JOIN_CLASS"
	TypeViewClasses   = "VIEW_CLASSES"
	TypeViewStudents  = "VIEW_STUDENTS"
	TypeRemoveStudent = "REMOVE_STUDENT"
	TypeDeleteClass   = "DELETE_CLASS"

	TypeCreateAssignment         = "CREATE_ASSIGNMENT"
	TypeViewAssignments          = "VIEW_ASSIGNMENTS"
	TypeSubmitAssignment         = "SUBMIT_ASSIGNMENT"
	TypeViewSubmissions          = "VIEW_SUBMISSIONS"
	TypeGetStudentSubmission     = "GET_STUDENT_SUBMISSION"
	TypeGetTeacherSubmissions    = "GET_TEACHER_SUBMISSIONS"
	TypeGetStudentAllAssignments = "GET_STUDENT_ALL_ASSIGNMENTS"

	TypePostAnnouncement  = "POST_ANNOUNCEMENT"
	TypeViewAnnouncements = "VIEW_ANNOUNCEMENTS"
	TypePostComment       = "POST_COMMENT"
	TypeViewComments      = "VIEW_COMMENTS"

	TypeUploadMaterial = "UPLOAD_MATERIAL"
	TypeViewMaterials  = "VIEW_MATERIALS"

	TypeStartFileTransfer = "START_FILE_TRANSFER"
	TypeFileChunk         = "FILE_CHUNK"
	TypeEndFileTransfer   = "END_FILE_TRANSFER"
	TypeDownloadFile      = "DOWNLOAD_FILE"

	TypeGetNotifications = "GET_NOTIFICATIONS"
	TypeSendMessage      = "SEND_MESSAGE"
	TypeFetchMessages    = "FETCH_MESSAGES"
)

// Response message types.
const (
	TypeSuccess           = "SUCCESS"
	TypeError             = "ERROR"
	TypeChunkAck          = "CHUNK_ACK"
	TypeUploadCompleteAck = "UPLOAD_COMPLETE_ACK"
	TypeNotification      = "NOTIFICATION"
	TypeMessage           = "MESSAGE"
	TypeFileData          = "FILE_DATA"
)

// Envelope is the decoded JSON payload of one request frame.
type Envelope struct {
	Type  string          `json:"type"`
	Token string          `json:"token,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// ErrorResponse is the generic error envelope.
type ErrorResponse struct {
	Type    string `json:"type"`
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Errorf builds an ERROR response envelope.
func Errorf(msg string) ErrorResponse {
	return ErrorResponse{Type: TypeError, Success: false, Error: msg}
}

// SuccessResponse is the minimal success envelope. Handlers that return more
// fields define their own response structs.
type SuccessResponse struct {
	Type    string `json:"type"`
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// OK builds a bare SUCCESS response envelope.
func OK(message string) SuccessResponse {
	return SuccessResponse{Type: TypeSuccess, Success: true, Message: message}
}

// NotificationEvent is pushed to online users by the broadcaster.
type NotificationEvent struct {
	Type         string `json:"type"`
	Notification any    `json:"notification"`
}

// MessageEvent carries one discussion message broadcast to online users.
type MessageEvent struct {
	Type    string `json:"type"`
	Message any    `json:"message"`
}
