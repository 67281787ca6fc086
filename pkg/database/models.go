package database

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryAirtime    = Category("airtime")
	CategoryTransfer   = Category("transfer")
	CategoryReceived   = Category("received")
	CategoryPayment    = Category("payment")
	CategoryWithdrawal = Category("withdrawal")
	CategoryOther      = Category("other")
)

func Categories() []Category {
	return []Category{
		CategoryAirtime,
		CategoryTransfer,
		CategoryReceived,
		CategoryPayment,
		CategoryWithdrawal,
		CategoryOther,
	}
}

type TransactionStatus string

const (
	StatusCompleted = TransactionStatus("completed")
	StatusPending   = TransactionStatus("pending")
	StatusFailed    = TransactionStatus("failed")
	StatusReversed  = TransactionStatus("reversed")
)

type ProcessingStatus string

const (
	OutcomeSuccess = ProcessingStatus("success")
	OutcomeError   = ProcessingStatus("error")
	OutcomeWarning = ProcessingStatus("warning")
	OutcomeInfo    = ProcessingStatus("info")
)

type AccountType string

const (
	AccountTypePersonal = AccountType("personal")
	AccountTypeMerchant = AccountType("merchant")
	AccountTypeAgent    = AccountType("agent")
	AccountTypeUnknown  = AccountType("unknown")
)

type User struct {
	ID              int64  `gorm:"column:user_id;primaryKey;autoIncrement"`
	PhoneNumber     string `gorm:"uniqueIndex"`
	UserName        string
	AccountType     AccountType
	NetworkProvider string
}

func (User) TableName() string {
	return "users"
}

type CategoryRow struct {
	ID           int64    `gorm:"column:category_id;primaryKey;autoIncrement"`
	CategoryName Category `gorm:"uniqueIndex"`
	Description  string
}

func (CategoryRow) TableName() string {
	return "categories"
}

type Transaction struct {
	ID              string    `gorm:"column:transaction_id;primaryKey"`
	TransactionDate time.Time `gorm:"column:transaction_date"`
	Amount          decimal.Decimal
	TransactionType string
	SenderID        *int64
	ReceiverID      *int64
	Status          TransactionStatus
	ReferenceCode   string
	MessageBody     string

	Sender   *User `gorm:"foreignKey:SenderID"`
	Receiver *User `gorm:"foreignKey:ReceiverID"`
}

func (Transaction) TableName() string {
	return "transactions"
}

type TransactionCategory struct {
	TransactionID string `gorm:"primaryKey"`
	CategoryID    int64  `gorm:"primaryKey"`
}

func (TransactionCategory) TableName() string {
	return "transaction_categories"
}

type LogEntry struct {
	ID            string  `gorm:"column:log_id;primaryKey"`
	TransactionID *string `gorm:"column:transaction_id"`
	LogMessage    string
	LogTimestamp  time.Time
	Outcome       ProcessingStatus `gorm:"column:processing_status"`
}

func (LogEntry) TableName() string {
	return "logs"
}

// DeadLetter preserves an input fragment which failed extraction or
// validation, together with the diagnostic reason.
type DeadLetter struct {
	ID        string `gorm:"column:dead_letter_id;primaryKey"`
	Fragment  string
	Field     string
	Reason    string
	CreatedAt time.Time
}

func (DeadLetter) TableName() string {
	return "dead_letters"
}
