package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Open connects to MySQL and verifies the connection.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, host, port, name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// schema lists the DDL statements executed at startup.  Statements are
// idempotent so repeated boots are safe.  The uq_review_account_inv index is
// the authoritative guard for the one-review-per-account-per-vehicle rule;
// the application-level pre-check is only a fast path for nicer messages.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS classification (
		classification_id   INT UNSIGNED NOT NULL AUTO_INCREMENT,
		classification_name VARCHAR(50)  NOT NULL,
		PRIMARY KEY (classification_id),
		UNIQUE KEY uq_classification_name (classification_name)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS account (
		account_id        INT UNSIGNED NOT NULL AUTO_INCREMENT,
		account_firstname VARCHAR(50)  NOT NULL,
		account_lastname  VARCHAR(50)  NOT NULL,
		account_email     VARCHAR(100) NOT NULL,
		account_password  VARCHAR(100) NOT NULL,
		account_type      ENUM('Client','Employee','Admin') NOT NULL DEFAULT 'Client',
		PRIMARY KEY (account_id),
		UNIQUE KEY uq_account_email (account_email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS inventory (
		inv_id            INT UNSIGNED NOT NULL AUTO_INCREMENT,
		inv_make          VARCHAR(50)  NOT NULL,
		inv_model         VARCHAR(50)  NOT NULL,
		inv_year          CHAR(4)      NOT NULL,
		inv_description   TEXT         NOT NULL,
		inv_image         VARCHAR(255) NOT NULL,
		inv_thumbnail     VARCHAR(255) NOT NULL,
		inv_price         DECIMAL(10,2) NOT NULL,
		inv_miles         INT UNSIGNED NOT NULL,
		inv_color         VARCHAR(30)  NOT NULL,
		classification_id INT UNSIGNED NOT NULL,
		PRIMARY KEY (inv_id),
		KEY idx_inventory_classification (classification_id),
		CONSTRAINT fk_inventory_classification FOREIGN KEY (classification_id)
			REFERENCES classification (classification_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS reviews (
		review_id     INT UNSIGNED NOT NULL AUTO_INCREMENT,
		inv_id        INT UNSIGNED NOT NULL,
		account_id    INT UNSIGNED NOT NULL,
		review_text   TEXT         NOT NULL,
		review_rating TINYINT UNSIGNED NOT NULL,
		review_date   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (review_id),
		UNIQUE KEY uq_review_account_inv (account_id, inv_id),
		KEY idx_reviews_inv (inv_id),
		CONSTRAINT fk_reviews_inventory FOREIGN KEY (inv_id)
			REFERENCES inventory (inv_id),
		CONSTRAINT fk_reviews_account FOREIGN KEY (account_id)
			REFERENCES account (account_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Bootstrap creates the application tables when they do not exist yet.
func Bootstrap(ctx context.Context, db *sql.DB) error {
	for _, ddl := range schema {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("bootstrap schema: %w", err)
		}
	}
	return nil
}
