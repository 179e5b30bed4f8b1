package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"storeadmin/internal/model"
	"storeadmin/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DenyReason classifies why an authorization check failed.
type DenyReason string

const (
	DenyReasonNone                   DenyReason = ""
	DenyReasonNotAuthenticated       DenyReason = "not_authenticated"
	DenyReasonNotAdmin               DenyReason = "not_admin"
	DenyReasonInsufficientPermission DenyReason = "insufficient_permission"
)

// Decision is the outcome of an authorization check. AdminID carries the
// resolved admin account id on Allow so callers can attribute the action.
type Decision struct {
	Allowed bool       `json:"allowed"`
	Reason  DenyReason `json:"reason,omitempty"`
	AdminID string     `json:"admin_id,omitempty"`
}

func Allow(adminID string) Decision {
	return Decision{Allowed: true, AdminID: adminID}
}

func Deny(reason DenyReason) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Err maps a deny decision onto the error taxonomy. Nil for Allow.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	switch d.Reason {
	case DenyReasonNotAuthenticated:
		return ErrNotAuthenticated
	case DenyReasonInsufficientPermission:
		return ErrInsufficientPermission
	default:
		return ErrNotAdmin
	}
}

// AccessPolicy decides whether a resolved, active admin account may perform
// an action on a resource. Exactly one policy is selected at startup; call
// sites never re-implement the check.
type AccessPolicy interface {
	Evaluate(admin *model.AdminUser, resource, action string) Decision
}

// rolePolicy is the current de facto behavior of the system: holding the
// admin role grants every action on every resource. The per-resource
// permission document is stored and editable but not consulted.
type rolePolicy struct{}

func (rolePolicy) Evaluate(admin *model.AdminUser, resource, action string) Decision {
	if admin.Role != model.RoleAdmin {
		return Deny(DenyReasonNotAdmin)
	}
	return Allow(admin.ID.String())
}

// permissionPolicy enforces the fine-grained permission document: the
// requested action must appear in the grant set for the resource.
type permissionPolicy struct{}

func (permissionPolicy) Evaluate(admin *model.AdminUser, resource, action string) Decision {
	if !admin.Permissions.Allows(resource, action) {
		return Deny(DenyReasonInsufficientPermission)
	}
	return Allow(admin.ID.String())
}

// NewAccessPolicy selects the policy by name ("role" or "permission").
// Unknown names fall back to the role policy.
func NewAccessPolicy(name string) AccessPolicy {
	if name == "permission" {
		return permissionPolicy{}
	}
	return rolePolicy{}
}

// --- DTOs ---

type CreateAdminRequest struct {
	Email       string              `json:"email" binding:"required,email"`
	Permissions model.PermissionSet `json:"permissions"` // defaults to all grants when empty
}

type UpdatePermissionsRequest struct {
	Permissions model.PermissionSet `json:"permissions" binding:"required"`
}

type AdminUserResponse struct {
	ID          string              `json:"id"`
	UserID      string              `json:"user_id"`
	Email       string              `json:"email"`
	Role        string              `json:"role"`
	Permissions model.PermissionSet `json:"permissions"`
	IsActive    bool                `json:"is_active"`
	CreatedAt   string              `json:"created_at"`
}

// --- Interface ---

// AuthorizationService gates every privileged operation and manages the
// admin account lifecycle. Authorize performs no writes; account mutations
// emit best-effort audit records.
type AuthorizationService interface {
	Authorize(ctx context.Context, callerID, resource, action string) (Decision, error)
	CreateAdminAccount(ctx context.Context, actorAdminID string, req CreateAdminRequest) (*AdminUserResponse, error)
	UpdateAdminPermissions(ctx context.Context, actorAdminID, adminID string, req UpdatePermissionsRequest) (*AdminUserResponse, error)
	DeactivateAdminAccount(ctx context.Context, actorAdminID, adminID string) error
	ListAdminAccounts(ctx context.Context, page, limit int) ([]AdminUserResponse, int64, error)
	GetAdminByCaller(ctx context.Context, callerID string) (*AdminUserResponse, error)
}

type authorizationService struct {
	adminRepo repository.AdminRepository
	userRepo  repository.UserRepository
	txManager repository.TransactionManager
	policy    AccessPolicy
	audit     AuditService
}

func NewAuthorizationService(
	adminRepo repository.AdminRepository,
	userRepo repository.UserRepository,
	txManager repository.TransactionManager,
	policy AccessPolicy,
	audit AuditService,
) AuthorizationService {
	return &authorizationService{
		adminRepo: adminRepo,
		userRepo:  userRepo,
		txManager: txManager,
		policy:    policy,
		audit:     audit,
	}
}

// --- Implementation ---

// Authorize resolves the caller's admin account and applies the configured
// policy. Missing or inactive accounts are denied before the policy runs.
func (s *authorizationService) Authorize(ctx context.Context, callerID, resource, action string) (Decision, error) {
	if callerID == "" {
		return Deny(DenyReasonNotAuthenticated), nil
	}

	userID, err := uuid.Parse(callerID)
	if err != nil {
		return Deny(DenyReasonNotAuthenticated), nil
	}

	admin, err := s.adminRepo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Deny(DenyReasonNotAdmin), nil
		}
		return Decision{}, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	if !admin.IsActive {
		return Deny(DenyReasonNotAdmin), nil
	}

	return s.policy.Evaluate(admin, resource, model.NormalizeAction(action)), nil
}

// CreateAdminAccount promotes an already-registered end user to admin.
// Preconditions: a profile must exist for the email and no admin account may
// exist for that identity. The pre-checks and the insert run in one
// transaction; the unique indexes remain the guarantee under concurrency and
// a lost race surfaces as ErrAlreadyAdmin, not an internal error.
func (s *authorizationService) CreateAdminAccount(ctx context.Context, actorAdminID string, req CreateAdminRequest) (*AdminUserResponse, error) {
	if req.Email == "" || !emailRegex.MatchString(req.Email) {
		return nil, fmt.Errorf("%w: a valid email is required", ErrInvalidArgument)
	}

	permissions := req.Permissions
	if len(permissions) == 0 {
		permissions = model.DefaultPermissions()
	} else {
		normalized, err := validatePermissions(permissions)
		if err != nil {
			return nil, err
		}
		permissions = normalized
	}

	var admin model.AdminUser
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		user, err := s.userRepo.GetByEmail(txCtx, req.Email)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotRegistered
			}
			return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}

		if _, err := s.adminRepo.FindByUserID(txCtx, user.ID); err == nil {
			return ErrAlreadyAdmin
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}

		admin = model.AdminUser{
			UserID:      user.ID,
			Email:       user.Email,
			Role:        model.RoleAdmin,
			Permissions: permissions,
			IsActive:    true,
		}

		if err := s.adminRepo.Create(txCtx, &admin); err != nil {
			if errors.Is(err, repository.ErrDuplicateAdmin) {
				return ErrAlreadyAdmin
			}
			return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actorAdminID, model.ActionCreateAdminUser, admin.ID.String(), admin.Email, req)

	resp := toAdminResponse(admin)
	return &resp, nil
}

func (s *authorizationService) UpdateAdminPermissions(ctx context.Context, actorAdminID, adminID string, req UpdatePermissionsRequest) (*AdminUserResponse, error) {
	id, err := uuid.Parse(adminID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid admin id", ErrInvalidArgument)
	}

	normalized, err := validatePermissions(req.Permissions)
	if err != nil {
		return nil, err
	}

	admin, err := s.adminRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	admin.Permissions = normalized
	if err := s.adminRepo.Update(ctx, admin); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	s.audit.Record(ctx, actorAdminID, model.ActionUpdateAdminPerms, admin.ID.String(), admin.Email, req)

	resp := toAdminResponse(*admin)
	return &resp, nil
}

// DeactivateAdminAccount flips is_active off; admin rows are never deleted.
func (s *authorizationService) DeactivateAdminAccount(ctx context.Context, actorAdminID, adminID string) error {
	id, err := uuid.Parse(adminID)
	if err != nil {
		return fmt.Errorf("%w: invalid admin id", ErrInvalidArgument)
	}

	admin, err := s.adminRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	admin.IsActive = false
	if err := s.adminRepo.Update(ctx, admin); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	s.audit.Record(ctx, actorAdminID, model.ActionDeactivateAdminUser, admin.ID.String(), admin.Email, nil)

	return nil
}

func (s *authorizationService) ListAdminAccounts(ctx context.Context, page, limit int) ([]AdminUserResponse, int64, error) {
	admins, total, err := s.adminRepo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	res := make([]AdminUserResponse, 0, len(admins))
	for _, a := range admins {
		res = append(res, toAdminResponse(a))
	}
	return res, total, nil
}

func (s *authorizationService) GetAdminByCaller(ctx context.Context, callerID string) (*AdminUserResponse, error) {
	userID, err := uuid.Parse(callerID)
	if err != nil {
		return nil, ErrNotAuthenticated
	}

	admin, err := s.adminRepo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotAdmin
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	resp := toAdminResponse(*admin)
	return &resp, nil
}

// --- Helpers ---

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// validatePermissions checks a supplied grant document against the closed
// resource/action sets and normalizes create/update to write.
func validatePermissions(perms model.PermissionSet) (model.PermissionSet, error) {
	known := make(map[string]bool, len(model.KnownResources))
	for _, r := range model.KnownResources {
		known[r] = true
	}

	normalized := make(model.PermissionSet, len(perms))
	for resource, actions := range perms {
		if !known[resource] {
			return nil, fmt.Errorf("%w: unknown resource '%s'", ErrInvalidArgument, resource)
		}
		seen := make(map[string]bool, len(actions))
		out := make([]string, 0, len(actions))
		for _, action := range actions {
			a := model.NormalizeAction(action)
			valid := false
			for _, k := range model.KnownActions {
				if a == k {
					valid = true
					break
				}
			}
			if !valid {
				return nil, fmt.Errorf("%w: unknown action '%s' on resource '%s'", ErrInvalidArgument, action, resource)
			}
			if !seen[a] {
				seen[a] = true
				out = append(out, a)
			}
		}
		normalized[resource] = out
	}
	return normalized, nil
}

func toAdminResponse(a model.AdminUser) AdminUserResponse {
	return AdminUserResponse{
		ID:          a.ID.String(),
		UserID:      a.UserID.String(),
		Email:       a.Email,
		Role:        a.Role,
		Permissions: a.Permissions,
		IsActive:    a.IsActive,
		CreatedAt:   a.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
