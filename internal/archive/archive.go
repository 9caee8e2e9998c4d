// Package archive mirrors placed orders into a relational store. The shared
// document store stays the source of truth; the mirror exists for reporting
// queries (pagination, revenue) that the document snapshots serve poorly,
// and it retains rows even after an order is deleted remotely.
package archive

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gtera/thiwa/app/models"
	"github.com/gtera/thiwa/internal/shop"
	"github.com/gtera/thiwa/pkg/event"
	"github.com/gtera/thiwa/pkg/logger"
	"github.com/gtera/thiwa/pkg/metrics"
)

// OrderRecord is one archived order row. Items are kept as a JSON blob; the
// queryable facts get their own columns.
type OrderRecord struct {
	ID            uint      `gorm:"primaryKey" json:"-"`
	OrderID       string    `gorm:"uniqueIndex;size:64" json:"orderId"`
	Date          time.Time `gorm:"index" json:"date"`
	Status        string    `json:"status"`
	PaymentMethod string    `json:"paymentMethod"`
	CustomerName  string    `json:"customerName"`
	CustomerPhone string    `json:"customerPhone"`
	Address       string    `json:"address"`
	ItemCount     int       `json:"itemCount"`
	Total         int       `json:"total"`
	ItemsJSON     string    `json:"-"`
	CreatedAt     time.Time `json:"-"`
	UpdatedAt     time.Time `json:"-"`
}

func (OrderRecord) TableName() string { return "order_archive" }

// Items decodes the archived item snapshot.
func (r OrderRecord) Items() ([]models.CartItem, error) {
	var items []models.CartItem
	if err := json.Unmarshal([]byte(r.ItemsJSON), &items); err != nil {
		return nil, fmt.Errorf("archive: decode items for %s: %w", r.OrderID, err)
	}
	return items, nil
}

// Archive owns the mirror table.
type Archive struct {
	db *gorm.DB
}

// New migrates the schema and returns a ready Archive.
func New(db *gorm.DB) (*Archive, error) {
	if err := db.AutoMigrate(&OrderRecord{}); err != nil {
		return nil, fmt.Errorf("archive: migrate: %w", err)
	}
	return &Archive{db: db}, nil
}

// Listen subscribes the archive to order snapshots published by the state
// store. Mirror failures are logged, never propagated: reporting lag must not
// break checkout.
func (a *Archive) Listen() {
	event.Listen(shop.EventOrders, func(payload interface{}) {
		orders, ok := payload.([]models.Order)
		if !ok {
			return
		}
		if err := a.Mirror(orders); err != nil {
			logger.Error("archive: mirror failed", "error", err)
		}
	})
}

// Mirror upserts every order in the snapshot, keyed by the remote order id.
// Status changes made by external tooling flow in through the same path.
func (a *Archive) Mirror(orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}
	records := make([]OrderRecord, 0, len(orders))
	for _, o := range orders {
		if o.ID == "" {
			continue
		}
		rec, err := toRecord(o)
		if err != nil {
			logger.Warn("archive: skipping order", "order", o.ID, "error", err)
			continue
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil
	}

	defer metrics.ObserveDBQuery("insert", time.Now())
	return a.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "order_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"status", "payment_method", "customer_name", "customer_phone",
			"address", "item_count", "total", "items_json", "updated_at",
		}),
	}).Create(&records).Error
}

// Report returns one page of archived orders, newest first, plus the total
// row count. Page numbering starts at 1.
func (a *Archive) Report(page, perPage int) ([]OrderRecord, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 200 {
		perPage = 20
	}

	defer metrics.ObserveDBQuery("select", time.Now())

	var total int64
	if err := a.db.Model(&OrderRecord{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("archive: count: %w", err)
	}

	var records []OrderRecord
	err := a.db.
		Order("date DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&records).Error
	if err != nil {
		return nil, 0, fmt.Errorf("archive: page %d: %w", page, err)
	}
	return records, total, nil
}

// Revenue sums the archived order totals, optionally since a cutoff.
func (a *Archive) Revenue(since time.Time) (int64, error) {
	defer metrics.ObserveDBQuery("select", time.Now())

	q := a.db.Model(&OrderRecord{})
	if !since.IsZero() {
		q = q.Where("date >= ?", since)
	}
	var sum int64
	// COALESCE keeps an empty table from scanning NULL into sum.
	err := q.Select("COALESCE(SUM(total), 0)").Scan(&sum).Error
	if err != nil {
		return 0, fmt.Errorf("archive: revenue: %w", err)
	}
	return sum, nil
}

func toRecord(o models.Order) (OrderRecord, error) {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return OrderRecord{}, err
	}
	return OrderRecord{
		OrderID:       o.ID,
		Date:          o.Date,
		Status:        string(o.Status),
		PaymentMethod: string(o.PaymentMethod),
		CustomerName:  o.CustomerInfo.Name,
		CustomerPhone: o.CustomerInfo.Phone,
		Address:       o.CustomerInfo.Address,
		ItemCount:     len(o.Items),
		Total:         o.ComputeTotal(),
		ItemsJSON:     string(items),
	}, nil
}
