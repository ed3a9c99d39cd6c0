package handlers

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/learnlive/server/internal/presence"
	"github.com/learnlive/server/internal/router"
	"github.com/learnlive/server/internal/store"
	"github.com/learnlive/server/internal/wire"
	"github.com/learnlive/server/pkg/logger"
)

// decodeData unmarshals the envelope's data object into v. An absent data
// object leaves v at its zero value.
func decodeData(req *router.Request, v any) error {
	if len(req.Envelope.Data) == 0 {
		return nil
	}
	return json.Unmarshal(req.Envelope.Data, v)
}

// AuthResponse is the login/signup success envelope. The client keeps the
// token and sends it on every gated request.
type AuthResponse struct {
	Type    string `json:"type"`
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Token   string `json:"token"`
	UserID  string `json:"user_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Role    string `json:"role"`
}

// Login authenticates an account, establishes a session and registers the
// connection for real-time pushes.
func Login(ctx context.Context, deps Deps, req *router.Request) any {
	var p struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeData(req, &p); err != nil {
		return wire.Errorf("Invalid request data")
	}

	u, err := deps.identity.Authenticate(ctx, p.Email, p.Password)
	if errors.Is(err, store.ErrInvalidCredentials) {
		return wire.Errorf("Invalid email or password")
	}
	if err != nil {
		logger.Errorf("login: %v", err)
		return wire.Errorf("Login failed")
	}

	s, err := deps.sessions.Create(u.ID, u.Role, u.Name, u.Email)
	if err != nil {
		logger.Errorf("login: create session: %v", err)
		return wire.Errorf("Login failed")
	}
	if req.BindSession != nil {
		req.BindSession(s)
	}
	if req.Pusher != nil {
		deps.presence.Register(u.ID, req.Pusher, presence.Display{Name: u.Name, Email: u.Email, Role: u.Role})
	}

	logger.Infof("login: %s (%s)", u.Email, u.Role)
	return AuthResponse{
		Type: wire.TypeSuccess, Success: true,
		Token: s.Token, UserID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role,
	}
}

// Signup creates an account and logs it straight in.
func Signup(ctx context.Context, deps Deps, req *router.Request) any {
	var p struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
		Role     string `json:"role"`
	}
	if err := decodeData(req, &p); err != nil {
		return wire.Errorf("Invalid request data")
	}

	u, err := deps.identity.CreateUser(ctx, p.Email, p.Password, p.Name, p.Role)
	if errors.Is(err, store.ErrEmailTaken) {
		return wire.Errorf("Email already registered")
	}
	if err != nil {
		return wire.Errorf(err.Error())
	}

	s, err := deps.sessions.Create(u.ID, u.Role, u.Name, u.Email)
	if err != nil {
		logger.Errorf("signup: create session: %v", err)
		return wire.Errorf("Signup failed")
	}
	if req.BindSession != nil {
		req.BindSession(s)
	}
	if req.Pusher != nil {
		deps.presence.Register(u.ID, req.Pusher, presence.Display{Name: u.Name, Email: u.Email, Role: u.Role})
	}

	logger.Infof("signup: %s (%s)", u.Email, u.Role)
	return AuthResponse{
		Type: wire.TypeSuccess, Success: true, Message: "User created successfully",
		Token: s.Token, UserID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role,
	}
}

// Logout revokes the session and drops the presence entry.
func Logout(ctx context.Context, deps Deps, req *router.Request) any {
	deps.sessions.Revoke(req.Session.Token)
	if req.Pusher != nil {
		deps.presence.UnregisterIf(req.Session.UserID, req.Pusher)
	}
	if req.ClearSession != nil {
		req.ClearSession()
	}
	return wire.OK("Logged out")
}

// requireRole returns an error envelope when the authenticated session does
// not have the wanted role, nil otherwise.
func requireRole(req *router.Request, role, action string) any {
	if req.Session.Role != role {
		return wire.Errorf("Only " + role + "s can " + action)
	}
	return nil
}
