package service

import (
	"context"
	"fmt"

	"agora/internal/authz"
	"agora/internal/cache"
	"agora/internal/models"
	"agora/internal/repository"
)

const maskedEmail = "***"

// AdminService backs the administration dashboard.
type AdminService struct {
	users repository.UserRepository
	logs  repository.AdminLogRepository
	cache *cache.Store
}

// UserPage is one page of the admin user listing.
type UserPage struct {
	Users []models.User `json:"users"`
	Total int64         `json:"total"`
}

// LogPage is one page of the audit log.
type LogPage struct {
	Logs  []models.AdminLog `json:"logs"`
	Total int64             `json:"total"`
}

// NewAdminService creates an AdminService. store may be nil.
func NewAdminService(users repository.UserRepository, logs repository.AdminLogRepository, store *cache.Store) *AdminService {
	return &AdminService{users: users, logs: logs, cache: store}
}

// ListUsers searches accounts. Only developers see email addresses.
func (s *AdminService) ListUsers(ctx context.Context, actor *models.Actor, filter repository.UserFilter) (*UserPage, error) {
	if err := authz.Require(actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleDeveloper {
		for i := range users {
			users[i].Email = maskedEmail
		}
	}
	return &UserPage{Users: users, Total: total}, nil
}

// ChangeRole moves a user to a new role on behalf of actor.
func (s *AdminService) ChangeRole(ctx context.Context, actor *models.Actor, targetID uint, role, ip string) (*models.User, error) {
	if err := authz.RequireWrite(actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	newRole, ok := models.ParseRole(role)
	if !ok {
		return nil, models.NewValidationError("Invalid role")
	}
	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if err := authz.RequireRoleChange(actor, target, newRole); err != nil {
		return nil, err
	}

	audit := newAudit(actor, models.ActionChangeRole, "user", target.ID,
		fmt.Sprintf("%s: %s -> %s", target.Username, target.Role, newRole), ip)
	if err := s.users.UpdateRole(ctx, target.ID, newRole, audit); err != nil {
		return nil, err
	}
	recordAudit(audit)
	return s.users.GetByID(ctx, target.ID)
}

// SetRoleByEmail assigns a role without an acting user. It exists for the
// operator CLI and is never reachable over HTTP.
func (s *AdminService) SetRoleByEmail(ctx context.Context, email, role string) (*models.User, error) {
	newRole, ok := models.ParseRole(role)
	if !ok {
		return nil, models.NewValidationError("Invalid role")
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	audit := &models.AdminLog{
		Action:     models.ActionChangeRole,
		TargetType: "user",
		TargetID:   user.ID,
		Details:    fmt.Sprintf("%s: %s -> %s (cli)", user.Username, user.Role, newRole),
		IPAddress:  "local",
	}
	if err := s.users.UpdateRole(ctx, user.ID, newRole, audit); err != nil {
		return nil, err
	}
	recordAudit(audit)
	user.Role = newRole
	return user, nil
}

func (s *AdminService) Logs(ctx context.Context, actor *models.Actor, limit, offset int) (*LogPage, error) {
	if err := authz.Require(actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	logs, total, err := s.logs.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	return &LogPage{Logs: logs, Total: total}, nil
}

// Stats returns dashboard totals, cached briefly.
func (s *AdminService) Stats(ctx context.Context, actor *models.Actor) (*models.ForumStats, error) {
	if err := authz.Require(actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	var stats models.ForumStats
	err := s.cache.Aside(ctx, cache.StatsKey, &stats, cache.StatsTTL, func() error {
		fresh, err := s.logs.Stats(ctx)
		if err != nil {
			return err
		}
		stats = *fresh
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
