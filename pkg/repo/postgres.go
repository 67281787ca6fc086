package repo

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kofiasare/momo-sms-importer/pkg/common"
	"github.com/kofiasare/momo-sms-importer/pkg/database"
)

type Postgres struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *Postgres {
	return &Postgres{
		db: db,
	}
}

func (p *Postgres) Migrate() error {
	m := gormigrate.New(p.db, &gormigrate.Options{
		TableName:                 "gorm_migrations",
		IDColumnName:              "id",
		IDColumnSize:              255,
		UseTransaction:            false,
		ValidateUnknownMigrations: false,
	}, getMigrations())

	return m.Migrate()
}

// UpsertTransaction inserts the transaction together with lazily created
// sender/receiver users and its category link, or updates the mutable fields
// of an existing row with the same identifier. The message body is treated
// as immutable: an existing row with a different body is a conflict, which
// the caller logs and skips.
func (p *Postgres) UpsertTransaction(
	ctx context.Context,
	tx *database.Transaction,
	category database.Category,
) error {
	return p.db.WithContext(ctx).Transaction(func(dbTx *gorm.DB) error {
		if tx.Sender != nil {
			sender, err := getOrCreateUser(dbTx, tx.Sender)
			if err != nil {
				return err
			}
			tx.SenderID = &sender.ID
			tx.Sender = sender
		}

		if tx.Receiver != nil {
			receiver, err := getOrCreateUser(dbTx, tx.Receiver)
			if err != nil {
				return err
			}
			tx.ReceiverID = &receiver.ID
			tx.Receiver = receiver
		}

		var existing database.Transaction
		err := dbTx.Where("transaction_id = ?", tx.ID).First(&existing).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			// fallthrough to insert
		case err != nil:
			return errors.Wrap(err, "failed to check existing transaction")
		case existing.MessageBody != tx.MessageBody:
			return errors.Wrapf(common.ErrConflict, "transaction %s", tx.ID)
		}

		if err = dbTx.Omit("Sender", "Receiver").Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "transaction_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"transaction_date", "amount", "transaction_type",
				"sender_id", "receiver_id", "status", "reference_code",
			}),
		}).Create(tx).Error; err != nil {
			return errors.Wrap(err, "failed to upsert transaction")
		}

		return linkCategory(dbTx, tx.ID, category)
	})
}

// getOrCreateUser is an explicit two-step get-or-create keyed by phone
// number. Attributes of an existing user are never overwritten by a later,
// non-authoritative observation.
func getOrCreateUser(dbTx *gorm.DB, user *database.User) (*database.User, error) {
	var existing database.User

	err := dbTx.Where("phone_number = ?", user.PhoneNumber).First(&existing).Error
	if err == nil {
		return &existing, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrap(err, "failed to look up user")
	}

	if user.AccountType == "" {
		user.AccountType = database.AccountTypeUnknown
	}

	if err = dbTx.Create(user).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to create user %s", user.PhoneNumber)
	}

	return user, nil
}

func linkCategory(dbTx *gorm.DB, transactionID string, category database.Category) error {
	var row database.CategoryRow

	if err := dbTx.Where("category_name = ?", category).First(&row).Error; err != nil {
		return errors.Wrapf(err, "unknown category %s", category)
	}

	return dbTx.Clauses(clause.OnConflict{DoNothing: true}).Create(&database.TransactionCategory{
		TransactionID: transactionID,
		CategoryID:    row.ID,
	}).Error
}

func (p *Postgres) GetTransaction(ctx context.Context, id string) (*database.Transaction, error) {
	var tx database.Transaction

	err := p.db.WithContext(ctx).
		Preload("Sender").Preload("Receiver").
		Where("transaction_id = ?", id).
		First(&tx).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrapf(common.ErrNotFound, "transaction %s", id)
	}
	if err != nil {
		return nil, err
	}

	return &tx, nil
}

func (p *Postgres) ListTransactions(ctx context.Context) ([]*database.Transaction, error) {
	var transactions []*database.Transaction

	err := p.db.WithContext(ctx).
		Preload("Sender").Preload("Receiver").
		Order("transaction_date").
		Find(&transactions).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list transactions")
	}

	return transactions, nil
}

// UpdateTransaction applies only the fields present in the patch, preserving
// everything else. The identifier itself is immutable. The pseudo-keys
// sender_phone and receiver_phone re-point the user references, creating the
// user on first sight like the pipeline does.
func (p *Postgres) UpdateTransaction(
	ctx context.Context,
	id string,
	patch map[string]any,
) (*database.Transaction, error) {
	delete(patch, "transaction_id")

	err := p.db.WithContext(ctx).Transaction(func(dbTx *gorm.DB) error {
		for key, column := range map[string]string{
			"sender_phone":   "sender_id",
			"receiver_phone": "receiver_id",
		} {
			phone, ok := patch[key].(string)
			if !ok {
				continue
			}
			delete(patch, key)

			user, userErr := getOrCreateUser(dbTx, &database.User{PhoneNumber: phone})
			if userErr != nil {
				return userErr
			}

			patch[column] = user.ID
		}

		result := dbTx.Model(&database.Transaction{}).
			Where("transaction_id = ?", id).
			Updates(patch)
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return errors.Wrapf(common.ErrNotFound, "transaction %s", id)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return p.GetTransaction(ctx, id)
}

// DeleteTransaction removes the row; category links and log entries go with
// it through the declared cascades.
func (p *Postgres) DeleteTransaction(ctx context.Context, id string) error {
	result := p.db.WithContext(ctx).
		Where("transaction_id = ?", id).
		Delete(&database.Transaction{})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return errors.Wrapf(common.ErrNotFound, "transaction %s", id)
	}

	return nil
}

// DeleteUser removes a user; sender/receiver references on existing
// transactions are nulled by the schema, never left dangling.
func (p *Postgres) DeleteUser(ctx context.Context, id int64) error {
	return p.db.WithContext(ctx).
		Where("user_id = ?", id).
		Delete(&database.User{}).Error
}

func (p *Postgres) AppendLog(ctx context.Context, entry database.LogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	if entry.LogTimestamp.IsZero() {
		entry.LogTimestamp = time.Now().UTC()
	}

	return p.db.WithContext(ctx).Create(&entry).Error
}

func (p *Postgres) AddDeadLetters(ctx context.Context, letters []database.DeadLetter) error {
	if len(letters) == 0 {
		return nil
	}

	return p.db.WithContext(ctx).CreateInBatches(letters, 100).Error
}

func (p *Postgres) ListUsers(ctx context.Context) ([]*database.User, error) {
	var users []*database.User

	return users, p.db.WithContext(ctx).Order("user_id").Find(&users).Error
}

func (p *Postgres) ListCategories(ctx context.Context) ([]*database.CategoryRow, error) {
	var categories []*database.CategoryRow

	return categories, p.db.WithContext(ctx).Order("category_id").Find(&categories).Error
}

func (p *Postgres) ListLogs(ctx context.Context) ([]*database.LogEntry, error) {
	var logs []*database.LogEntry

	return logs, p.db.WithContext(ctx).Order("log_timestamp").Find(&logs).Error
}

func (p *Postgres) ListTransactionCategories(ctx context.Context) (map[string][]database.Category, error) {
	type link struct {
		TransactionID string
		CategoryName  database.Category
	}

	var links []link

	err := p.db.WithContext(ctx).
		Table("transaction_categories").
		Select("transaction_categories.transaction_id, categories.category_name").
		Joins("join categories on categories.category_id = transaction_categories.category_id").
		Scan(&links).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list category links")
	}

	byTransaction := map[string][]database.Category{}
	for _, l := range links {
		byTransaction[l.TransactionID] = append(byTransaction[l.TransactionID], l.CategoryName)
	}

	return byTransaction, nil
}
