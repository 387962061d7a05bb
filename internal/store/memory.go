package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"simutrade-go/internal/models"
)

// Memory is the in-process store used when no database is configured.
// All state lives behind one mutex; ApplyFill is atomic by construction.
type Memory struct {
	mu        sync.RWMutex
	account   models.Account
	positions map[string]models.Position
	trades    []models.Trade
	nextID    uint
}

var _ Store = (*Memory)(nil)

// NewMemory creates an in-memory store populated with the given seed.
func NewMemory(seed Seed) *Memory {
	m := &Memory{
		account:   seed.Account,
		positions: make(map[string]models.Position, len(seed.Positions)),
		nextID:    1,
	}
	for _, p := range seed.Positions {
		p.Symbol = strings.ToUpper(p.Symbol)
		m.positions[p.Symbol] = p
	}
	for _, t := range seed.Trades {
		t.ID = m.nextID
		m.nextID++
		m.trades = append(m.trades, t)
	}
	return m
}

func (m *Memory) Account(_ context.Context) (models.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.account, nil
}

func (m *Memory) Positions(_ context.Context) ([]models.Position, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	positions := make([]models.Position, 0, len(m.positions))
	for _, p := range m.positions {
		positions = append(positions, p)
	}
	sort.Slice(positions, func(i, j int) bool { return positions[i].Symbol < positions[j].Symbol })
	return positions, nil
}

func (m *Memory) Position(_ context.Context, symbol string) (models.Position, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.positions[strings.ToUpper(symbol)]
	if !ok {
		return models.Position{}, ErrNotFound
	}
	return p, nil
}

func (m *Memory) SetCash(_ context.Context, cash float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.account.Cash = cash
	return nil
}

func (m *Memory) UpsertPosition(_ context.Context, position models.Position) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upsertLocked(position)
	return nil
}

func (m *Memory) RemovePosition(_ context.Context, symbol string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.positions, strings.ToUpper(symbol))
	return nil
}

func (m *Memory) AppendTrade(_ context.Context, trade *models.Trade) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appendLocked(trade)
	return nil
}

func (m *Memory) Trades(_ context.Context) ([]models.Trade, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Stored oldest first; returned most recent first.
	trades := make([]models.Trade, len(m.trades))
	for i, t := range m.trades {
		trades[len(m.trades)-1-i] = t
	}
	return trades, nil
}

func (m *Memory) ApplyFill(_ context.Context, account models.Account, position *models.Position, symbol string, trade *models.Trade) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.account = account
	if position != nil {
		m.upsertLocked(*position)
	} else {
		delete(m.positions, strings.ToUpper(symbol))
	}
	m.appendLocked(trade)
	return nil
}

func (m *Memory) upsertLocked(position models.Position) {
	position.Symbol = strings.ToUpper(position.Symbol)
	if existing, ok := m.positions[position.Symbol]; ok {
		position.ID = existing.ID
	}
	m.positions[position.Symbol] = position
}

func (m *Memory) appendLocked(trade *models.Trade) {
	trade.ID = m.nextID
	m.nextID++
	m.trades = append(m.trades, *trade)
}
