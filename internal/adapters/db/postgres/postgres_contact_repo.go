package postgres

import (
	"context"
	"errors"
	customErrors "github.com/Miraines/MoonyAndStarry/contacts-service/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/contacts-service/internal/domain/auth/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"strings"
)

type PostgresContactRepo struct {
	db *gorm.DB
}

func NewPostgresContactRepo(db *gorm.DB) *PostgresContactRepo {
	return &PostgresContactRepo{db: db}
}

func (p *PostgresContactRepo) owned(ctx context.Context, userID uuid.UUID) *gorm.DB {
	return p.db.WithContext(ctx).Preload("User").Where("user_id = ?", userID)
}

func (p *PostgresContactRepo) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Contact, error) {
	var out []model.Contact
	res := p.owned(ctx, userID).Order("id").Limit(limit).Offset(offset).Find(&out)
	if err := res.Error; err != nil {
		return nil, customErrors.WrapInternal(err, "ListContacts")
	}
	return out, nil
}

func (p *PostgresContactRepo) Get(ctx context.Context, userID uuid.UUID, id uint) (model.Contact, error) {
	var c model.Contact
	res := p.owned(ctx, userID).Where("id = ?", id).First(&c)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.Contact{}, customErrors.ErrNotFound
	}
	if err := res.Error; err != nil {
		return model.Contact{}, customErrors.WrapInternal(err, "GetContact")
	}
	return c, nil
}

func (p *PostgresContactRepo) Create(ctx context.Context, c model.Contact) (model.Contact, error) {
	c.User = nil
	res := p.db.WithContext(ctx).Create(&c)
	if err := res.Error; err != nil {
		if isUniqueViolation(err) {
			return model.Contact{}, customErrors.ErrAlreadyExists
		}
		return model.Contact{}, customErrors.WrapInternal(err, "CreateContact")
	}
	return p.Get(ctx, c.UserID, c.ID)
}

func (p *PostgresContactRepo) Update(ctx context.Context, userID uuid.UUID, id uint, c model.Contact) (model.Contact, error) {
	res := p.db.WithContext(ctx).Model(&model.Contact{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]any{
			"first_name": c.FirstName,
			"last_name":  c.LastName,
			"email":      c.Email,
			"phone":      c.Phone,
			"birthday":   c.Birthday,
			"data_add":   c.DataAdd,
			"updated_at": c.UpdatedAt,
		})
	if err := res.Error; err != nil {
		if isUniqueViolation(err) {
			return model.Contact{}, customErrors.ErrAlreadyExists
		}
		return model.Contact{}, customErrors.WrapInternal(err, "UpdateContact")
	}
	if res.RowsAffected == 0 {
		return model.Contact{}, customErrors.ErrNotFound
	}
	return p.Get(ctx, userID, id)
}

// Delete returns the removed row so callers can echo it back.
func (p *PostgresContactRepo) Delete(ctx context.Context, userID uuid.UUID, id uint) (model.Contact, error) {
	c, err := p.Get(ctx, userID, id)
	if err != nil {
		return model.Contact{}, err
	}
	res := p.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.Contact{}, id)
	if err := res.Error; err != nil {
		return model.Contact{}, customErrors.WrapInternal(err, "DeleteContact")
	}
	if res.RowsAffected == 0 {
		return model.Contact{}, customErrors.ErrNotFound
	}
	return c, nil
}

// Search matches each non-empty filter field as a case-insensitive substring.
func (p *PostgresContactRepo) Search(ctx context.Context, userID uuid.UUID, f model.ContactFilter) ([]model.Contact, error) {
	q := p.owned(ctx, userID)
	for column, value := range map[string]string{
		"first_name": f.FirstName,
		"last_name":  f.LastName,
		"email":      f.Email,
	} {
		if value == "" {
			continue
		}
		q = q.Where("LOWER("+column+") LIKE ?", "%"+strings.ToLower(value)+"%")
	}

	var out []model.Contact
	if err := q.Order("id").Find(&out).Error; err != nil {
		return nil, customErrors.WrapInternal(err, "SearchContacts")
	}
	return out, nil
}

func (p *PostgresContactRepo) All(ctx context.Context, userID uuid.UUID) ([]model.Contact, error) {
	var out []model.Contact
	if err := p.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&out).Error; err != nil {
		return nil, customErrors.WrapInternal(err, "AllContacts")
	}
	return out, nil
}
