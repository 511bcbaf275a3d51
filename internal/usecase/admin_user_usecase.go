package usecase

import (
	"context"
	"fmt"
	"net/http"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type AdminUserUsecase struct {
	userRepo  repo.UserRepository
	auditRepo repo.AuditLogRepository
}

// DI
func NewAdminUserUsecase(userRepo repo.UserRepository, auditRepo repo.AuditLogRepository) *AdminUserUsecase {
	return &AdminUserUsecase{
		userRepo:  userRepo,
		auditRepo: auditRepo,
	}
}

type UserListOutput struct {
	Items []UserDTO `json:"items"`
	Total int64     `json:"total"`
	Page  int       `json:"page"`
	Limit int       `json:"limit"`
}

func (u *AdminUserUsecase) List(ctx context.Context, page int, limit int) (UserListOutput, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	users, total, err := u.userRepo.List(ctx, page, limit)
	if err != nil {
		return UserListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	items := make([]UserDTO, 0, len(users))
	for i := range users {
		items = append(items, toUserDTO(&users[i]))
	}
	return UserListOutput{Items: items, Total: total, Page: page, Limit: limit}, nil
}

type AdminUpdateUserInput struct {
	Role     *string `json:"role"`
	IsActive *bool   `json:"isActive"`
}

// ロール変更とアカウント停止/再開。最後の管理者を消す保護はしない（運用上1人にしない）。
func (u *AdminUserUsecase) Update(ctx context.Context, adminUserID int64, targetUserID int64, in AdminUpdateUserInput) (UserDTO, error) {
	if adminUserID <= 0 {
		return UserDTO{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if targetUserID <= 0 {
		return UserDTO{}, NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	user, err := u.userRepo.FindByID(ctx, targetUserID)
	if err != nil {
		return UserDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if user == nil {
		return UserDTO{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	before := fmt.Sprintf(`{"role":%q,"is_active":%t}`, user.Role, user.IsActive)

	if in.Role != nil {
		switch model.Role(*in.Role) {
		case model.RoleUser, model.RoleAdmin:
			user.Role = model.Role(*in.Role)
		default:
			return UserDTO{}, NewHTTPError(http.StatusBadRequest, "invalid role")
		}
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}

	if err := u.userRepo.Update(ctx, user); err != nil {
		if err == repo.ErrUserNotFound {
			return UserDTO{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return UserDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  adminUserID,
		Action:       model.AuditActionUpdateUser,
		ResourceType: model.AuditResourceUser,
		ResourceID:   targetUserID,
		BeforeJSON:   before,
		AfterJSON:    fmt.Sprintf(`{"role":%q,"is_active":%t}`, user.Role, user.IsActive),
	}); err != nil {
		logger.Error().Err(err).Int64("user_id", targetUserID).Msg("audit log write failed")
	}

	return toUserDTO(user), nil
}
