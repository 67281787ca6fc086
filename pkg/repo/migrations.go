package repo

import (
	"fmt"
	"strings"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"github.com/kofiasare/momo-sms-importer/pkg/database"
)

func getMigrations() []*gormigrate.Migration {
	return []*gormigrate.Migration{
		{
			ID: "2026_08_10_Initial",
			Migrate: func(db *gorm.DB) error {
				return db.Exec(`create table if not exists users
(
    user_id          bigserial primary key,
    phone_number     varchar(10) not null unique,
    user_name        text,
    account_type     varchar(16) not null default 'unknown',
    network_provider text
);

create table if not exists categories
(
    category_id   bigserial primary key,
    category_name varchar(16) not null unique,
    description   text
);

create table if not exists transactions
(
    transaction_id   varchar(128) primary key,
    transaction_date timestamp not null,
    amount           decimal not null check (amount >= 0),
    transaction_type varchar(32),
    sender_id        bigint references users (user_id) on delete set null,
    receiver_id      bigint references users (user_id) on delete set null,
    status           varchar(16) not null default 'completed',
    reference_code   text,
    message_body     text
);

create table if not exists transaction_categories
(
    transaction_id varchar(128) references transactions (transaction_id) on delete cascade,
    category_id    bigint references categories (category_id) on delete cascade,
    primary key (transaction_id, category_id)
);

create table if not exists logs
(
    log_id            varchar(64) primary key,
    transaction_id    varchar(128) references transactions (transaction_id) on delete cascade,
    log_message       text,
    log_timestamp     timestamp not null,
    processing_status varchar(16) not null
);

create table if not exists dead_letters
(
    dead_letter_id varchar(64) primary key,
    fragment       text,
    field          text,
    reason         text,
    created_at     timestamp not null
);
`).Error
			},
		},
		{
			ID: "2026_08_10_SeedCategories",
			Migrate: func(db *gorm.DB) error {
				var rows []string
				for _, category := range database.Categories() {
					rows = append(rows, fmt.Sprintf("('%s', '%s')",
						category, categoryDescriptions[category]))
				}

				return db.Exec(`insert into categories (category_name, description) values ` +
					strings.Join(rows, ",") + ` on conflict (category_name) do nothing;`).Error
			},
		},
	}
}

var categoryDescriptions = map[database.Category]string{
	database.CategoryAirtime:    "Airtime and data bundle purchases",
	database.CategoryTransfer:   "Money sent to another wallet",
	database.CategoryReceived:   "Money received from another wallet",
	database.CategoryPayment:    "Merchant and bill payments",
	database.CategoryWithdrawal: "Cash-out at an agent",
	database.CategoryOther:      "Unclassified transactions",
}
