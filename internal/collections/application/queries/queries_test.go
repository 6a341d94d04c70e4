package queries

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/aapbridge/internal/collections/domain"
)

type mockSource struct {
	mock.Mock
}

func (m *mockSource) ListCollections(ctx context.Context) ([]domain.Collection, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Collection), args.Error(1)
}

func (m *mockSource) GetCollection(ctx context.Context, namespace, name string) (*domain.Collection, error) {
	args := m.Called(ctx, namespace, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Collection), args.Error(1)
}

func (m *mockSource) SearchCollections(ctx context.Context, keywords []string) ([]domain.Collection, error) {
	args := m.Called(ctx, keywords)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Collection), args.Error(1)
}

func (m *mockSource) ResolveDownload(ctx context.Context, spec domain.Spec) (string, error) {
	args := m.Called(ctx, spec)
	return args.String(0), args.Error(1)
}

type mockRecordRepository struct {
	mock.Mock
}

func (m *mockRecordRepository) Create(ctx context.Context, record *domain.InstallRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *mockRecordRepository) GetLatestByFQCN(ctx context.Context, fqcn string) (*domain.InstallRecord, error) {
	args := m.Called(ctx, fqcn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InstallRecord), args.Error(1)
}

func (m *mockRecordRepository) List(ctx context.Context, limit int) ([]*domain.InstallRecord, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.InstallRecord), args.Error(1)
}

func TestListCollectionsHandler(t *testing.T) {
	source := new(mockSource)
	source.On("ListCollections", mock.Anything).Return([]domain.Collection{
		{Namespace: "redhat", Name: "openshift", Version: "2.0.0"},
	}, nil)
	handler := NewListCollectionsHandler(source)

	collections, err := handler.Handle(context.Background(), ListCollectionsQuery{})

	require.NoError(t, err)
	require.Len(t, collections, 1)
	assert.Equal(t, "redhat.openshift", collections[0].FQCN())
	source.AssertExpectations(t)
}

func TestListCollectionsHandlerHubDisabled(t *testing.T) {
	handler := NewListCollectionsHandler(nil)

	_, err := handler.Handle(context.Background(), ListCollectionsQuery{})

	assert.ErrorIs(t, err, domain.ErrHubDisabled)
}

func TestListCollectionsHandlerWrapsSourceError(t *testing.T) {
	source := new(mockSource)
	source.On("ListCollections", mock.Anything).Return(nil, errors.New("boom"))
	handler := NewListCollectionsHandler(source)

	_, err := handler.Handle(context.Background(), ListCollectionsQuery{})

	assert.ErrorContains(t, err, "failed to list collections")
}

func TestSearchCollectionsHandler(t *testing.T) {
	source := new(mockSource)
	source.On("SearchCollections", mock.Anything, []string{"network"}).Return([]domain.Collection{
		{Namespace: "cisco", Name: "ios", Version: "4.0.0"},
	}, nil)
	handler := NewSearchCollectionsHandler(source)

	collections, err := handler.Handle(context.Background(), SearchCollectionsQuery{Keywords: []string{"network"}})

	require.NoError(t, err)
	require.Len(t, collections, 1)
	assert.Equal(t, "cisco.ios", collections[0].FQCN())
}

func TestSearchCollectionsHandlerHubDisabled(t *testing.T) {
	handler := NewSearchCollectionsHandler(nil)

	_, err := handler.Handle(context.Background(), SearchCollectionsQuery{Keywords: []string{"x"}})

	assert.ErrorIs(t, err, domain.ErrHubDisabled)
}

func TestGetCollectionHandler(t *testing.T) {
	source := new(mockSource)
	source.On("GetCollection", mock.Anything, "redhat", "openshift").Return(&domain.Collection{
		Namespace: "redhat",
		Name:      "openshift",
		Version:   "2.0.0",
	}, nil)
	handler := NewGetCollectionHandler(source)

	collection, err := handler.Handle(context.Background(), GetCollectionQuery{Namespace: "redhat", Name: "openshift"})

	require.NoError(t, err)
	assert.Equal(t, "2.0.0", collection.Version)
}

func TestGetCollectionHandlerValidatesInput(t *testing.T) {
	handler := NewGetCollectionHandler(new(mockSource))

	_, err := handler.Handle(context.Background(), GetCollectionQuery{Namespace: "redhat"})

	assert.ErrorContains(t, err, "required")
}

func TestGetCollectionHandlerNotFound(t *testing.T) {
	source := new(mockSource)
	source.On("GetCollection", mock.Anything, "no", "such").Return(nil, domain.ErrCollectionNotFound)
	handler := NewGetCollectionHandler(source)

	_, err := handler.Handle(context.Background(), GetCollectionQuery{Namespace: "no", Name: "such"})

	assert.ErrorIs(t, err, domain.ErrCollectionNotFound)
}

func TestListInstallRecordsHandler(t *testing.T) {
	repo := new(mockRecordRepository)
	repo.On("List", mock.Anything, 10).Return([]*domain.InstallRecord{
		{FQCN: "redhat.openshift", Version: "2.0.0", Status: domain.InstallStatusInstalled},
	}, nil)
	handler := NewListInstallRecordsHandler(repo)

	records, err := handler.Handle(context.Background(), ListInstallRecordsQuery{Limit: 10})

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "redhat.openshift", records[0].FQCN)
	repo.AssertExpectations(t)
}
