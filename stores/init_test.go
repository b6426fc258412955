package stores_test

import (
	"context"
	"time"

	"github.com/geolocator/geolocator/geolib"
	"github.com/geolocator/geolocator/stores"
	"github.com/stretchr/testify/suite"
)

// StoreTestSuite checks a behavior every store has to have. Concrete
// suites set store in SetupTest.
type StoreTestSuite struct {
	suite.Suite

	ctx   context.Context
	store geolib.Store

	// memory store keeps entries decoded so they cannot be corrupted
	noRawPayloads bool
}

func (suite *StoreTestSuite) SetupTest() {
	suite.ctx = context.Background()
}

func (suite *StoreTestSuite) TearDownTest() {
	if suite.store != nil {
		suite.NoError(suite.store.Close())
	}
}

func (suite *StoreTestSuite) makeEntry(rowKey, city string) geolib.CacheEntry {
	return geolib.CacheEntry{
		PartitionKey: geolib.PartitionAddresses,
		RowKey:       rowKey,
		Timestamp:    time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC),
		Address:      "example.com",
		CityName:     city,
		CountryCode:  "US",
		Latitude:     42.1,
		Subdivisions: `["Massachusetts"]`,
	}
}

func (suite *StoreTestSuite) TestPing() {
	suite.NoError(suite.store.Ping(suite.ctx))
}

func (suite *StoreTestSuite) TestGetAbsent() {
	_, ok, err := suite.store.Table(geolib.TableFlat).Get(suite.ctx,
		geolib.PartitionAddresses, "1.1.1.1")

	suite.NoError(err)
	suite.False(ok)
}

func (suite *StoreTestSuite) TestPutGet() {
	table := suite.store.Table(geolib.TableFlat)
	entry := suite.makeEntry("1.1.1.1", "Norwell")

	suite.NoError(table.Put(suite.ctx, entry))

	stored, ok, err := table.Get(suite.ctx, geolib.PartitionAddresses, "1.1.1.1")

	suite.NoError(err)
	suite.True(ok)
	suite.Equal(entry.RowKey, stored.RowKey)
	suite.Equal(entry.CityName, stored.CityName)
	suite.Equal(entry.Subdivisions, stored.Subdivisions)
	suite.InDelta(entry.Latitude, stored.Latitude, 0.0001)
	suite.True(entry.Timestamp.Equal(stored.Timestamp))
}

func (suite *StoreTestSuite) TestPutOverwrites() {
	table := suite.store.Table(geolib.TableFlat)

	suite.NoError(table.Put(suite.ctx, suite.makeEntry("1.1.1.1", "Norwell")))
	suite.NoError(table.Put(suite.ctx, suite.makeEntry("1.1.1.1", "Boston")))

	stored, ok, err := table.Get(suite.ctx, geolib.PartitionAddresses, "1.1.1.1")

	suite.NoError(err)
	suite.True(ok)
	suite.Equal("Boston", stored.CityName)
}

func (suite *StoreTestSuite) TestTablesAreIndependent() {
	suite.NoError(suite.store.Table(geolib.TableFlat).Put(suite.ctx,
		suite.makeEntry("1.1.1.1", "Norwell")))

	_, ok, err := suite.store.Table(geolib.TableRich).Get(suite.ctx,
		geolib.PartitionAddresses, "1.1.1.1")

	suite.NoError(err)
	suite.False(ok)
}

func (suite *StoreTestSuite) TestDelete() {
	table := suite.store.Table(geolib.TableRich)

	suite.NoError(table.Put(suite.ctx, suite.makeEntry("2001:db8::1", "Norwell")))

	deleted, err := table.Delete(suite.ctx, geolib.PartitionAddresses, "2001:db8::1")

	suite.NoError(err)
	suite.True(deleted)

	_, ok, err := table.Get(suite.ctx, geolib.PartitionAddresses, "2001:db8::1")

	suite.NoError(err)
	suite.False(ok)

	deleted, err = table.Delete(suite.ctx, geolib.PartitionAddresses, "2001:db8::1")

	suite.NoError(err)
	suite.False(deleted)
}

func (suite *StoreTestSuite) TestCorruptedEntry() {
	if suite.noRawPayloads {
		suite.T().Skip("store has no raw payloads")
	}

	table := suite.store.Table(geolib.TableFlat)

	suite.NoError(stores.WriteRawPayload(suite.ctx, suite.store, geolib.TableFlat,
		geolib.PartitionAddresses, "8.8.8.8", []byte(`{"rowKey":"8.8.8.8","latitude":"oops"}`)))

	_, ok, err := table.Get(suite.ctx, geolib.PartitionAddresses, "8.8.8.8")

	suite.ErrorIs(err, geolib.ErrCorruptedEntry)
	suite.False(ok)

	suite.NoError(table.Put(suite.ctx, suite.makeEntry("8.8.8.8", "Mountain View")))

	stored, ok, err := table.Get(suite.ctx, geolib.PartitionAddresses, "8.8.8.8")

	suite.NoError(err)
	suite.True(ok)
	suite.Equal("Mountain View", stored.CityName)
}
