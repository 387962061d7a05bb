package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"simutrade-go/internal/models"
)

// SQLite is the gorm-backed persistent store.
type SQLite struct {
	db *gorm.DB
}

var _ Store = (*SQLite)(nil)

// NewSQLite opens the database, migrates the schema, and seeds the demo
// state on first run (an empty accounts table).
func NewSQLite(dsn string, seed Seed) (*SQLite, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&models.Account{}, &models.Position{}, &models.Trade{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.seed(seed); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLite) seed(seed Seed) error {
	var count int64
	if err := s.db.Model(&models.Account{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check for existing account: %w", err)
	}
	if count > 0 {
		return nil
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&seed.Account).Error; err != nil {
			return fmt.Errorf("failed to seed account: %w", err)
		}
		for _, p := range seed.Positions {
			p.Symbol = strings.ToUpper(p.Symbol)
			if err := tx.Create(&p).Error; err != nil {
				return fmt.Errorf("failed to seed position %s: %w", p.Symbol, err)
			}
		}
		for _, t := range seed.Trades {
			if err := tx.Create(&t).Error; err != nil {
				return fmt.Errorf("failed to seed trade: %w", err)
			}
		}
		return nil
	})
}

func (s *SQLite) Account(ctx context.Context) (models.Account, error) {
	var account models.Account
	if err := s.db.WithContext(ctx).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Account{}, ErrNotFound
		}
		return models.Account{}, fmt.Errorf("failed to read account: %w", err)
	}
	return account, nil
}

func (s *SQLite) Positions(ctx context.Context) ([]models.Position, error) {
	var positions []models.Position
	if err := s.db.WithContext(ctx).Order("symbol asc").Find(&positions).Error; err != nil {
		return nil, fmt.Errorf("failed to read positions: %w", err)
	}
	return positions, nil
}

func (s *SQLite) Position(ctx context.Context, symbol string) (models.Position, error) {
	var position models.Position
	err := s.db.WithContext(ctx).First(&position, "symbol = ?", strings.ToUpper(symbol)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Position{}, ErrNotFound
		}
		return models.Position{}, fmt.Errorf("failed to read position %s: %w", symbol, err)
	}
	return position, nil
}

func (s *SQLite) SetCash(ctx context.Context, cash float64) error {
	return setCash(s.db.WithContext(ctx), cash)
}

func (s *SQLite) UpsertPosition(ctx context.Context, position models.Position) error {
	return upsertPosition(s.db.WithContext(ctx), position)
}

func (s *SQLite) RemovePosition(ctx context.Context, symbol string) error {
	return removePosition(s.db.WithContext(ctx), symbol)
}

func (s *SQLite) AppendTrade(ctx context.Context, trade *models.Trade) error {
	if err := s.db.WithContext(ctx).Create(trade).Error; err != nil {
		return fmt.Errorf("failed to append trade: %w", err)
	}
	return nil
}

func (s *SQLite) Trades(ctx context.Context) ([]models.Trade, error) {
	var trades []models.Trade
	// Order by most recent first
	if err := s.db.WithContext(ctx).Order("timestamp desc").Find(&trades).Error; err != nil {
		return nil, fmt.Errorf("failed to read trades: %w", err)
	}
	return trades, nil
}

func (s *SQLite) ApplyFill(ctx context.Context, account models.Account, position *models.Position, symbol string, trade *models.Trade) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := setCash(tx, account.Cash); err != nil {
			return err
		}
		if position != nil {
			if err := upsertPosition(tx, *position); err != nil {
				return err
			}
		} else if err := removePosition(tx, symbol); err != nil {
			return err
		}
		if err := tx.Create(trade).Error; err != nil {
			return fmt.Errorf("failed to append trade: %w", err)
		}
		return nil
	})
}

func setCash(db *gorm.DB, cash float64) error {
	if err := db.Model(&models.Account{}).Where("id = ?", 1).Update("cash", cash).Error; err != nil {
		return fmt.Errorf("failed to update cash: %w", err)
	}
	return nil
}

func upsertPosition(db *gorm.DB, position models.Position) error {
	position.Symbol = strings.ToUpper(position.Symbol)
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}},
		DoUpdates: clause.AssignmentColumns([]string{"quantity", "average_price"}),
	}).Create(&position).Error
	if err != nil {
		return fmt.Errorf("failed to upsert position %s: %w", position.Symbol, err)
	}
	return nil
}

func removePosition(db *gorm.DB, symbol string) error {
	if err := db.Delete(&models.Position{}, "symbol = ?", strings.ToUpper(symbol)).Error; err != nil {
		return fmt.Errorf("failed to remove position %s: %w", symbol, err)
	}
	return nil
}
