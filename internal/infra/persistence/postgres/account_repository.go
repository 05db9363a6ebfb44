// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
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
)

// accountRepository implements repository.AccountRepository using GORM.
type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository is the constructor for accountRepository.
func NewAccountRepository(db *gorm.DB) repository.AccountRepository {
	return &accountRepository{db: db}
}

func (repo *accountRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Account, error) {
	var accountM model.AccountModel
	err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&accountM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrAccountNotFound
		}

		return nil, errors.Wrap(err, "failed to find account by id")
	}

	return toAccountDomain(&accountM), nil
}

func (repo *accountRepository) FindByEmail(ctx context.Context, email string) (*entity.Account, error) {
	var accountM model.AccountModel
	err := repo.db.WithContext(ctx).
		Where("email = ?", email).
		First(&accountM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrAccountNotFound
		}

		return nil, errors.Wrap(err, "failed to find account by email")
	}

	return toAccountDomain(&accountM), nil
}

// Create persists a new account. The id is left for the database default.
func (repo *accountRepository) Create(ctx context.Context, account *entity.Account) error {
	accountM := fromAccountDomain(account)

	if err := repo.db.WithContext(ctx).Create(accountM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrDuplicateAccount.WrapMessage("email already exists")
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("missing required account information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create account")
	}

	account.ID = accountM.ID
	account.CreatedAt = accountM.CreatedAt
	account.UpdatedAt = accountM.UpdatedAt

	return nil
}

// Update applies only the columns named by the update and reloads the row.
func (repo *accountRepository) Update(ctx context.Context, id uuid.UUID, update repository.AccountUpdate) (*entity.Account, error) {
	if update.IsEmpty() {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("empty account update")
	}

	cols := accountUpdateColumns(update)
	cols["updated_at"] = time.Now()

	result := repo.db.WithContext(ctx).
		Model(&model.AccountModel{}).
		Where("id = ?", id).
		Updates(cols)
	if err := result.Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return nil, domainerrors.ErrDuplicateAccount.WrapMessage("email already in use")
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to update account")
	}
	if result.RowsAffected == 0 {
		return nil, repository.ErrAccountNotFound
	}

	return repo.FindByID(ctx, id)
}

// --- Mapper Functions ---

func toAccountDomain(data *model.AccountModel) *entity.Account {
	if data == nil {
		return nil
	}

	account := &entity.Account{
		ID:               data.ID,
		Email:            data.Email,
		PasswordHash:     data.Password,
		Name:             data.Name,
		TwoFactorEnabled: data.TwoFactorEnabled,
		Telegram: entity.TelegramChannel{
			Token:   data.TelegramToken,
			ChatID:  data.TelegramChatID,
			Enabled: data.TelegramEnabled,
		},
		CreatedAt: data.CreatedAt,
		UpdatedAt: data.UpdatedAt,
	}
	if data.TwoFactorSecret != nil {
		account.TwoFactorSecret = *data.TwoFactorSecret
	}

	return account
}

func fromAccountDomain(data *entity.Account) *model.AccountModel {
	if data == nil {
		return nil
	}

	accountM := &model.AccountModel{
		ID:               data.ID,
		Email:            data.Email,
		Password:         data.PasswordHash,
		Name:             data.Name,
		TwoFactorEnabled: data.TwoFactorEnabled,
		TelegramToken:    data.Telegram.Token,
		TelegramChatID:   data.Telegram.ChatID,
		TelegramEnabled:  data.Telegram.Enabled,
	}
	if data.TwoFactorSecret != "" {
		secret := data.TwoFactorSecret
		accountM.TwoFactorSecret = &secret
	}

	return accountM
}
