package repository

import (
	"context"
	"errors"

	"storeadmin/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrDuplicateAdmin signals a uniqueness violation on admin insert. The
// unique indexes on user_id and email are the actual race guarantee for
// concurrent promotion attempts; the service-level pre-check is advisory.
var ErrDuplicateAdmin = errors.New("admin account already exists for this identity")

// AdminRepository defines data access for AdminUser entities
type AdminRepository interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*model.AdminUser, error)
	FindByEmail(ctx context.Context, email string) (*model.AdminUser, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.AdminUser, error)
	Create(ctx context.Context, admin *model.AdminUser) error
	Update(ctx context.Context, admin *model.AdminUser) error
	List(ctx context.Context, page, limit int) ([]model.AdminUser, int64, error)
}

type adminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) AdminRepository {
	return &adminRepository{db: db}
}

func (r *adminRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*model.AdminUser, error) {
	var admin model.AdminUser
	if err := GetDB(ctx, r.db).First(&admin, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *adminRepository) FindByEmail(ctx context.Context, email string) (*model.AdminUser, error) {
	var admin model.AdminUser
	if err := GetDB(ctx, r.db).First(&admin, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *adminRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.AdminUser, error) {
	var admin model.AdminUser
	if err := GetDB(ctx, r.db).First(&admin, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *adminRepository) Create(ctx context.Context, admin *model.AdminUser) error {
	if err := GetDB(ctx, r.db).Create(admin).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateAdmin
		}
		return err
	}
	return nil
}

func (r *adminRepository) Update(ctx context.Context, admin *model.AdminUser) error {
	return GetDB(ctx, r.db).Save(admin).Error
}

func (r *adminRepository) List(ctx context.Context, page, limit int) ([]model.AdminUser, int64, error) {
	var admins []model.AdminUser
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.AdminUser{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("created_at desc").Offset(offset).Limit(limit).Find(&admins).Error; err != nil {
		return nil, 0, err
	}

	return admins, total, nil
}

// isUniqueViolation matches both GORM's translated error and the raw
// Postgres SQLSTATE, since translation depends on dialector config.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
