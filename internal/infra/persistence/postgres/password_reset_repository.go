package postgres

import (
	"context"
	"time"

	"folio/internal/domain/entity"
	domainerrors "folio/internal/domain/errors"
	"folio/internal/domain/repository"
	"folio/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
)

// passwordResetRepository implements repository.PasswordResetRepository.
type passwordResetRepository struct {
	db *gorm.DB
}

// NewPasswordResetRepository is the constructor for passwordResetRepository.
func NewPasswordResetRepository(db *gorm.DB) repository.PasswordResetRepository {
	return &passwordResetRepository{db: db}
}

func (repo *passwordResetRepository) Create(ctx context.Context, request *entity.PasswordResetRequest) error {
	requestM := fromPasswordResetDomain(request)

	if err := repo.db.WithContext(ctx).Create(requestM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrInternalError.WrapMessage("reset token hash collision")
		}
		if isForeignKeyConstraintViolation(err) {
			return repository.ErrAccountNotFound
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create password reset request")
	}

	request.CreatedAt = requestM.CreatedAt

	return nil
}

// FindByTokenHash reads from the primary: the request is usually written moments
// before and a replica may not have it yet.
func (repo *passwordResetRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*entity.PasswordResetRequest, error) {
	var requestM model.PasswordResetModel
	err := repo.db.WithContext(ctx).
		Clauses(dbresolver.Write).
		Where("token_hash = ?", tokenHash).
		First(&requestM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrResetRequestNotFound
		}

		return nil, errors.Wrap(err, "failed to find password reset request")
	}

	return toPasswordResetDomain(&requestM), nil
}

// MarkConsumed is a compare-and-set on consumed_at; of two concurrent callers only one sees true.
func (repo *passwordResetRepository) MarkConsumed(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	result := repo.db.WithContext(ctx).
		Model(&model.PasswordResetModel{}).
		Where("id = ? AND consumed_at IS NULL", id).
		Update("consumed_at", at)
	if result.Error != nil {
		return false, domainerrors.NewDatabaseExecuteError(result.Error, "failed to consume password reset request")
	}

	return result.RowsAffected == 1, nil
}

func (repo *passwordResetRepository) InvalidatePending(ctx context.Context, accountID uuid.UUID, at time.Time) (int64, error) {
	result := repo.db.WithContext(ctx).
		Model(&model.PasswordResetModel{}).
		Where("account_id = ? AND consumed_at IS NULL", accountID).
		Update("consumed_at", at)
	if result.Error != nil {
		return 0, domainerrors.NewDatabaseExecuteError(result.Error, "failed to invalidate password reset requests")
	}

	return result.RowsAffected, nil
}

func toPasswordResetDomain(data *model.PasswordResetModel) *entity.PasswordResetRequest {
	if data == nil {
		return nil
	}

	return &entity.PasswordResetRequest{
		ID:         data.ID,
		AccountID:  data.AccountID,
		Email:      data.Email,
		TokenHash:  data.TokenHash,
		ExpiresAt:  data.ExpiresAt,
		ConsumedAt: data.ConsumedAt,
		CreatedAt:  data.CreatedAt,
	}
}

func fromPasswordResetDomain(data *entity.PasswordResetRequest) *model.PasswordResetModel {
	if data == nil {
		return nil
	}

	return &model.PasswordResetModel{
		ID:         data.ID,
		AccountID:  data.AccountID,
		Email:      data.Email,
		TokenHash:  data.TokenHash,
		ExpiresAt:  data.ExpiresAt,
		ConsumedAt: data.ConsumedAt,
	}
}
