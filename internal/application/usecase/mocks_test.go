package usecase_test

import (
	"context"

	"github.com/YouSangSon/reports-service/internal/domain/event"
	"github.com/YouSangSon/reports-service/internal/domain/model"
	"github.com/YouSangSon/reports-service/internal/pkg/query"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
)

// MockDocumentStore는 DocumentStore의 mock입니다
type MockDocumentStore struct {
	mock.Mock
}

func (m *MockDocumentStore) Connect(ctx context.Context) error { return m.Called(ctx).Error(0) }
func (m *MockDocumentStore) Close(ctx context.Context) error   { return m.Called(ctx).Error(0) }
func (m *MockDocumentStore) CreateDB(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
func (m *MockDocumentStore) DropDB(ctx context.Context) error { return m.Called(ctx).Error(0) }
func (m *MockDocumentStore) Ping(ctx context.Context) error   { return m.Called(ctx).Error(0) }

func (m *MockDocumentStore) CreateDocument(ctx context.Context, binding *model.Binding, payload interface{}) (bson.M, error) {
	args := m.Called(ctx, binding, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(bson.M), args.Error(1)
}

func (m *MockDocumentStore) ReadDocument(ctx context.Context, binding *model.Binding, id string) (bson.M, error) {
	args := m.Called(ctx, binding, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(bson.M), args.Error(1)
}

func (m *MockDocumentStore) UpdateDocument(ctx context.Context, binding *model.Binding, id string, update interface{}) (bson.M, error) {
	args := m.Called(ctx, binding, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(bson.M), args.Error(1)
}

func (m *MockDocumentStore) DeleteDocument(ctx context.Context, binding *model.Binding, id string) error {
	return m.Called(ctx, binding, id).Error(0)
}

func (m *MockDocumentStore) CountDocuments(ctx context.Context, binding *model.Binding, q query.Query) (int64, error) {
	args := m.Called(ctx, binding, q)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDocumentStore) ReadDocuments(ctx context.Context, binding *model.Binding, q query.Query) ([]bson.M, error) {
	args := m.Called(ctx, binding, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]bson.M), args.Error(1)
}

func (m *MockDocumentStore) PaginateDocuments(ctx context.Context, binding *model.Binding, q query.PaginatedQuery) ([]bson.M, error) {
	args := m.Called(ctx, binding, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]bson.M), args.Error(1)
}

// MockPublisher는 event.Publisher의 mock입니다
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, e event.Event) error {
	return m.Called(ctx, e).Error(0)
}

func eventOfType(t event.Type) interface{} {
	return mock.MatchedBy(func(e event.Event) bool { return e.Type == t })
}
