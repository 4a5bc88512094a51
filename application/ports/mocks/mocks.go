package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Jabramco/memebase/application/ports"
	"github.com/Jabramco/memebase/domain/core/entities"
)

// MockKeyValueStore is a mock implementation of ports.KeyValueStore
type MockKeyValueStore struct {
	mock.Mock
}

func (m *MockKeyValueStore) Load(ctx context.Context, key string) ([]byte, bool, error) {
	args := m.Called(ctx, key)
	var value []byte
	if args.Get(0) != nil {
		value = args.Get(0).([]byte)
	}
	return value, args.Bool(1), args.Error(2)
}

func (m *MockKeyValueStore) Save(ctx context.Context, key string, value []byte) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

// MockObjectStore is a mock implementation of ports.ObjectStore
type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) PutImage(ctx context.Context, data []byte, path, contentType string) (string, error) {
	args := m.Called(ctx, data, path, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockObjectStore) DeleteImage(ctx context.Context, url string) error {
	args := m.Called(ctx, url)
	return args.Error(0)
}

// MockMemeRepository is a mock implementation of ports.MemeRepository
type MockMemeRepository struct {
	mock.Mock
}

func (m *MockMemeRepository) Insert(ctx context.Context, meme *entities.Meme) (*entities.Meme, error) {
	args := m.Called(ctx, meme)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Meme), args.Error(1)
}

func (m *MockMemeRepository) ListAll(ctx context.Context) ([]entities.Meme, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Meme), args.Error(1)
}

func (m *MockMemeRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of ports.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event ports.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

var (
	_ ports.KeyValueStore  = (*MockKeyValueStore)(nil)
	_ ports.ObjectStore    = (*MockObjectStore)(nil)
	_ ports.MemeRepository = (*MockMemeRepository)(nil)
	_ ports.EventPublisher = (*MockEventPublisher)(nil)
)
