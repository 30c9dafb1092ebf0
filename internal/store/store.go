package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"storefront-service/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// ListShops retrieves all active shops ordered by name
func (s *Store) ListShops(ctx context.Context) ([]models.Shop, error) {
	var shops []models.Shop
	err := s.db.SelectContext(ctx, &shops,
		"SELECT * FROM shops WHERE is_active = true ORDER BY name")
	return shops, err
}

// GetShopByName retrieves a shop by name
func (s *Store) GetShopByName(ctx context.Context, name string) (*models.Shop, error) {
	var shop models.Shop
	err := s.db.GetContext(ctx, &shop, "SELECT * FROM shops WHERE name = $1", name)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("shop not found: %s", name)
	}
	if err != nil {
		return nil, err
	}
	return &shop, nil
}

// ListMenuItems retrieves available menu items for a shop, optionally
// narrowed to one category, ordered by name
func (s *Store) ListMenuItems(ctx context.Context, shop, category string) ([]models.MenuItem, error) {
	var items []models.MenuItem
	var err error

	if category == models.CategoryAll || category == "" {
		err = s.db.SelectContext(ctx, &items,
			"SELECT * FROM menu_items WHERE shop = $1 AND available = true ORDER BY name",
			shop)
	} else {
		err = s.db.SelectContext(ctx, &items,
			"SELECT * FROM menu_items WHERE shop = $1 AND available = true AND category = $2 ORDER BY name",
			shop, category)
	}
	return items, err
}

// GetMenuItem retrieves a single menu item by id
func (s *Store) GetMenuItem(ctx context.Context, id string) (*models.MenuItem, error) {
	var item models.MenuItem
	err := s.db.GetContext(ctx, &item, "SELECT * FROM menu_items WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("menu item not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateMenuItem creates a new menu item with an explicit id
func (s *Store) CreateMenuItem(ctx context.Context, item *models.MenuItem) error {
	query := `
		INSERT INTO menu_items (id, name, description, price, category, shop, available, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	return s.db.QueryRowxContext(ctx, query,
		item.ID, item.Name, item.Description, item.Price, item.Category,
		item.Shop, item.Available, item.ImageURL).
		Scan(&item.CreatedAt, &item.UpdatedAt)
}

// UpdateMenuItem updates the mutable fields of a menu item
func (s *Store) UpdateMenuItem(ctx context.Context, item *models.MenuItem) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE menu_items
		SET name = $1, description = $2, price = $3, category = $4, image_url = $5, updated_at = NOW()
		WHERE id = $6`,
		item.Name, item.Description, item.Price, item.Category, item.ImageURL, item.ID)
	return err
}

// SetMenuItemAvailability toggles an item's availability flag
func (s *Store) SetMenuItemAvailability(ctx context.Context, id string, available bool) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE menu_items SET available = $1, updated_at = NOW() WHERE id = $2",
		available, id)
	return err
}

// DeleteMenuItem removes a menu item
func (s *Store) DeleteMenuItem(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM menu_items WHERE id = $1", id)
	return err
}
