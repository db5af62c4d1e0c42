package auditmock

import (
	"context"
	"sync"

	domain "github.com/GopalDev98/creditcard-backend/internal/domain/audit"
)

var (
	_ domain.Repository = (*Repo)(nil)
	_ domain.Publisher  = (*Publisher)(nil)
)

// Repo records every created entry; CreateFn/ListFn override the defaults.
type Repo struct {
	CreateFn func(ctx context.Context, l *domain.Log) error
	ListFn   func(ctx context.Context, f domain.Filter) ([]domain.Log, error)

	mu      sync.Mutex
	created []domain.Log
}

func (m *Repo) Create(ctx context.Context, l *domain.Log) error {
	if m.CreateFn != nil {
		if err := m.CreateFn(ctx, l); err != nil {
			return err
		}
	}
	m.mu.Lock()
	m.created = append(m.created, *l)
	m.mu.Unlock()
	return nil
}

func (m *Repo) List(ctx context.Context, f domain.Filter) ([]domain.Log, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, f)
	}
	return m.Created(), nil
}

// Created returns a copy of the entries written so far.
func (m *Repo) Created() []domain.Log {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Log(nil), m.created...)
}

type Publisher struct {
	PublishFn func(ctx context.Context, l *domain.Log) error

	mu        sync.Mutex
	published []domain.Log
}

func (m *Publisher) Publish(ctx context.Context, l *domain.Log) error {
	if m.PublishFn != nil {
		if err := m.PublishFn(ctx, l); err != nil {
			return err
		}
	}
	m.mu.Lock()
	m.published = append(m.published, *l)
	m.mu.Unlock()
	return nil
}

func (m *Publisher) Published() []domain.Log {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Log(nil), m.published...)
}
