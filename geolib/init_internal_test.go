package geolib

import (
	"context"
	"net"

	"github.com/stretchr/testify/mock"
)

type ProviderMock struct {
	mock.Mock
}

func (m *ProviderMock) Name() string {
	return m.Called().String(0)
}

func (m *ProviderMock) Flat(ctx context.Context, ip net.IP) (GeoLocationRecord, error) {
	args := m.Called(ctx, ip)

	return args.Get(0).(GeoLocationRecord), args.Error(1)
}

func (m *ProviderMock) City(ctx context.Context, ip net.IP) (CityLocationRecord, error) {
	args := m.Called(ctx, ip)

	return args.Get(0).(CityLocationRecord), args.Error(1)
}

func (m *ProviderMock) Insights(ctx context.Context, ip net.IP) (InsightsLocationRecord, error) {
	args := m.Called(ctx, ip)

	return args.Get(0).(InsightsLocationRecord), args.Error(1)
}

type TableMock struct {
	mock.Mock
}

func (m *TableMock) Get(ctx context.Context, partitionKey, rowKey string) (CacheEntry, bool, error) {
	args := m.Called(ctx, partitionKey, rowKey)

	return args.Get(0).(CacheEntry), args.Bool(1), args.Error(2)
}

func (m *TableMock) Put(ctx context.Context, entry CacheEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *TableMock) Delete(ctx context.Context, partitionKey, rowKey string) (bool, error) {
	args := m.Called(ctx, partitionKey, rowKey)

	return args.Bool(0), args.Error(1)
}

type StoreMock struct {
	mock.Mock
}

func (m *StoreMock) Table(name string) Table {
	return m.Called(name).Get(0).(Table)
}

func (m *StoreMock) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *StoreMock) Close() error {
	return m.Called().Error(0)
}

type DNSResolverMock struct {
	mock.Mock
}

func (m *DNSResolverMock) LookupHost(ctx context.Context, host string) ([]string, error) {
	args := m.Called(ctx, host)

	return args.Get(0).([]string), args.Error(1)
}

type LoggerMock struct {
	mock.Mock
}

func (m *LoggerMock) LookupError(hostname string, code ErrorCode, err error) {
	m.Called(hostname, code, err)
}

func (m *LoggerMock) CacheError(table, rowKey string, err error) {
	m.Called(table, rowKey, err)
}

// GeolocatorMocks is a set of mocks which are used to build a
// Geolocator in tests. Flat and rich tables are different mocks.
type GeolocatorMocks struct {
	Provider  *ProviderMock
	Store     *StoreMock
	FlatTable *TableMock
	RichTable *TableMock
	DNS       *DNSResolverMock
	Logger    *LoggerMock
}

func (g *GeolocatorMocks) AssertExpectations(t mock.TestingT) {
	g.Provider.AssertExpectations(t)
	g.FlatTable.AssertExpectations(t)
	g.RichTable.AssertExpectations(t)
	g.DNS.AssertExpectations(t)
}

func NewGeolocatorMocks() *GeolocatorMocks {
	rv := &GeolocatorMocks{
		Provider:  &ProviderMock{},
		Store:     &StoreMock{},
		FlatTable: &TableMock{},
		RichTable: &TableMock{},
		DNS:       &DNSResolverMock{},
		Logger:    &LoggerMock{},
	}

	rv.Provider.On("Name").Return("mock").Maybe()
	rv.Store.On("Table", TableFlat).Return(rv.FlatTable).Maybe()
	rv.Store.On("Table", TableRich).Return(rv.RichTable).Maybe()
	rv.Store.On("Ping", mock.Anything).Return(nil).Maybe()
	rv.Logger.On("LookupError", mock.Anything, mock.Anything, mock.Anything).Maybe()
	rv.Logger.On("CacheError", mock.Anything, mock.Anything, mock.Anything).Maybe()

	return rv
}

func (g *GeolocatorMocks) Opts() Opts {
	return Opts{
		Provider:    g.Provider,
		Store:       g.Store,
		DNSResolver: g.DNS,
		Logger:      g.Logger,
	}
}
