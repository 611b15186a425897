package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/procon-engine/backend/internal/storage"
	"github.com/procon-engine/backend/internal/storage/models"
	"github.com/procon-engine/backend/pkg/logger"
	"github.com/procon-engine/backend/pkg/utils"
)

type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS subject_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		subject_key TEXT NOT NULL,
		kind TEXT NOT NULL,
		payload TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_records_key ON subject_records(subject_key);
	CREATE INDEX IF NOT EXISTS idx_records_kind ON subject_records(kind);

	CREATE TABLE IF NOT EXISTS restaurants (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		city TEXT NOT NULL,
		address TEXT,
		categories TEXT,
		num_reviews INTEGER DEFAULT 0,
		price TEXT,
		rating REAL DEFAULT 0,
		state TEXT,
		url TEXT,
		website TEXT,
		zip_code TEXT
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_restaurants_name_city ON restaurants(name, city);

	CREATE TABLE IF NOT EXISTS restaurant_reviews (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		restaurant_id INTEGER NOT NULL,
		description TEXT NOT NULL,
		rating REAL NOT NULL,
		FOREIGN KEY (restaurant_id) REFERENCES restaurants(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_reviews_restaurant ON restaurant_reviews(restaurant_id);
	`

	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite schema initialized")
	return nil
}

// FindRecord returns the persisted record for a subject key, or
// storage.ErrNotFound. Rows are keyed by the md5 of the subject key, so
// arbitrary product names and restaurant keys index uniformly.
func (c *Client) FindRecord(key string) (*models.SubjectRecord, error) {
	query := `SELECT id, kind, payload, created_at FROM subject_records WHERE subject_key = ?`

	var (
		record    models.SubjectRecord
		payload   string
		createdAt int64
	)

	err := c.db.QueryRow(query, utils.HashString(key)).Scan(&record.ID, &record.Kind, &payload, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}

	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record payload: %w", err)
	}
	record.Key = key
	record.CreatedAt = time.Unix(createdAt, 0)

	return &record, nil
}

// InsertRecord persists a freshly computed record. When another writer
// got there first (UNIQUE violation on the subject key), the local
// result is discarded and the canonical row is returned instead.
func (c *Client) InsertRecord(record *models.SubjectRecord) (*models.SubjectRecord, error) {
	payload, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record payload: %w", err)
	}

	query := `INSERT INTO subject_records (subject_key, kind, payload, created_at) VALUES (?, ?, ?, ?)`

	result, err := c.db.Exec(query, utils.HashString(record.Key), record.Kind, string(payload), time.Now().Unix())
	if err != nil {
		if isUniqueViolation(err) {
			logger.Info("Record already computed elsewhere, reading canonical row",
				zap.String("subject_key", record.Key),
			)
			return c.FindRecord(record.Key)
		}
		return nil, fmt.Errorf("failed to insert record: %w", err)
	}

	record.ID, _ = result.LastInsertId()
	record.CreatedAt = time.Now()

	logger.Info("Record persisted",
		zap.String("subject_key", record.Key),
		zap.String("kind", record.Kind),
	)

	return record, nil
}

// FindRestaurant loads one restaurant with its reviews, or storage.ErrNotFound.
func (c *Client) FindRestaurant(name, city string) (*models.RestaurantInfo, error) {
	query := `
		SELECT id, name, city, address, categories, num_reviews, price, rating, state, url, website, zip_code
		FROM restaurants WHERE name = ? AND city = ?
	`

	var (
		id         int64
		info       models.RestaurantInfo
		categories string
	)

	err := c.db.QueryRow(query, name, city).Scan(
		&id,
		&info.Name,
		&info.City,
		&info.Meta.Address,
		&categories,
		&info.Meta.NumReviews,
		&info.Meta.Price,
		&info.Meta.Rating,
		&info.Meta.State,
		&info.Meta.URL,
		&info.Meta.Website,
		&info.Meta.ZipCode,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get restaurant: %w", err)
	}

	if categories != "" {
		json.Unmarshal([]byte(categories), &info.Meta.Categories)
	}

	rows, err := c.db.Query(
		`SELECT description, rating FROM restaurant_reviews WHERE restaurant_id = ? ORDER BY id`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get restaurant reviews: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var review models.RestaurantReview
		if err := rows.Scan(&review.Description, &review.Rating); err != nil {
			return nil, fmt.Errorf("failed to scan review row: %w", err)
		}
		info.Reviews = append(info.Reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate review rows: %w", err)
	}

	return &info, nil
}

// InsertRestaurant seeds a restaurant with its reviews. Used by the
// ingest tooling and tests.
func (c *Client) InsertRestaurant(info *models.RestaurantInfo) error {
	categories, _ := json.Marshal(info.Meta.Categories)

	result, err := c.db.Exec(
		`INSERT INTO restaurants (name, city, address, categories, num_reviews, price, rating, state, url, website, zip_code)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		info.Name,
		info.City,
		info.Meta.Address,
		string(categories),
		info.Meta.NumReviews,
		info.Meta.Price,
		info.Meta.Rating,
		info.Meta.State,
		info.Meta.URL,
		info.Meta.Website,
		info.Meta.ZipCode,
	)
	if err != nil {
		return fmt.Errorf("failed to insert restaurant: %w", err)
	}

	restaurantID, _ := result.LastInsertId()
	for _, review := range info.Reviews {
		_, err := c.db.Exec(
			`INSERT INTO restaurant_reviews (restaurant_id, description, rating) VALUES (?, ?, ?)`,
			restaurantID,
			review.Description,
			review.Rating,
		)
		if err != nil {
			return fmt.Errorf("failed to insert restaurant review: %w", err)
		}
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
