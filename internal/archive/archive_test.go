package archive

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/gtera/thiwa/app/models"
)

func newTestArchive(t *testing.T) *Archive {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "archive.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	a, err := New(db)
	require.NoError(t, err)
	return a
}

func order(id string, date time.Time, total int) models.Order {
	return models.Order{
		ID:     id,
		Date:   date,
		Status: models.OrderPending,
		Items: []models.CartItem{
			{Product: models.Product{ID: "p1", Name: "Tee", Price: total}, Quantity: 1, Size: models.SizeM},
		},
		CustomerInfo:  models.CustomerInfo{Name: "Nimal", Phone: "077", Address: "Colombo"},
		PaymentMethod: models.PaymentBankTransfer,
		Total:         total,
	}
}

func TestMirrorInsertsAndUpserts(t *testing.T) {
	a := newTestArchive(t)
	now := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, a.Mirror([]models.Order{order("o1", now, 2500)}))

	// Same snapshot again plus a status change: one row, updated in place.
	changed := order("o1", now, 2500)
	changed.Status = models.OrderShipped
	require.NoError(t, a.Mirror([]models.Order{changed}))

	records, total, err := a.Report(1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, records, 1)
	assert.Equal(t, "o1", records[0].OrderID)
	assert.Equal(t, string(models.OrderShipped), records[0].Status)

	items, err := records[0].Items()
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 2500, items[0].Price)
}

func TestMirrorSkipsUnidentifiedOrders(t *testing.T) {
	a := newTestArchive(t)
	require.NoError(t, a.Mirror([]models.Order{order("", time.Now(), 100)}))

	_, total, err := a.Report(1, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestReportPaginatesNewestFirst(t *testing.T) {
	a := newTestArchive(t)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	var orders []models.Order
	for i := 0; i < 5; i++ {
		orders = append(orders, order(
			string(rune('a'+i)), base.Add(time.Duration(i)*time.Hour), 1000+i))
	}
	require.NoError(t, a.Mirror(orders))

	page1, total, err := a.Report(1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	require.Len(t, page1, 2)
	assert.Equal(t, "e", page1[0].OrderID)
	assert.Equal(t, "d", page1[1].OrderID)

	page3, _, err := a.Report(3, 2)
	require.NoError(t, err)
	require.Len(t, page3, 1)
	assert.Equal(t, "a", page3[0].OrderID)
}

func TestRevenue(t *testing.T) {
	a := newTestArchive(t)
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, a.Mirror([]models.Order{
		order("o1", base, 2500),
		order("o2", base.AddDate(0, 1, 0), 3000),
	}))

	all, err := a.Revenue(time.Time{})
	require.NoError(t, err)
	assert.EqualValues(t, 5500, all)

	recent, err := a.Revenue(base.AddDate(0, 0, 15))
	require.NoError(t, err)
	assert.EqualValues(t, 3000, recent)
}

func TestRevenueEmptyTable(t *testing.T) {
	a := newTestArchive(t)
	sum, err := a.Revenue(time.Time{})
	require.NoError(t, err)
	assert.Zero(t, sum)
}
