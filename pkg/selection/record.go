package selection

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jinzhu/gorm"
	"github.com/jinzhu/gorm/dialects/postgres"
)

// Record is the struct for managing database access to saved selections
type Record struct {
	gorm.Model
	Owner  string         `gorm:"index" json:"owner"`
	Active bool           `gorm:"default:true" json:"active"`
	Data   postgres.Jsonb `json:"data"`
}

// TableName sets the table used for records
func (Record) TableName() string {
	return "selections"
}

// Migrate creates or updates the selections table
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Record{}).Error
}

// GormPersister saves selections in postgres
type GormPersister struct {
	DB *gorm.DB
}

func (p *GormPersister) latest(owner string) (*Record, error) {
	var record Record
	err := p.DB.Where("owner = ? AND active IS TRUE", owner).Order("updated_at desc").First(&record).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Load returns the latest active selection of owner
func (p *GormPersister) Load(ctx context.Context, owner string) (*Selection, error) {
	record, err := p.latest(owner)
	if err != nil || record == nil {
		return nil, err
	}
	var selection Selection
	if len(record.Data.RawMessage) > 0 {
		if err := json.Unmarshal(record.Data.RawMessage, &selection); err != nil {
			return nil, err
		}
	}
	return &selection, nil
}

// Save updates the active record of owner or creates one
func (p *GormPersister) Save(ctx context.Context, owner string, selection Selection) error {
	data, err := json.Marshal(selection)
	if err != nil {
		return err
	}
	record, err := p.latest(owner)
	if err != nil {
		return err
	}
	if record == nil {
		return p.DB.Create(&Record{
			Owner:  owner,
			Active: true,
			Data:   postgres.Jsonb{RawMessage: data},
		}).Error
	}
	record.Data = postgres.Jsonb{RawMessage: data}
	return p.DB.Save(record).Error
}

// CleanupInactive marks any selections as inactive that haven't been updated in one week
func CleanupInactive(db *gorm.DB) error {
	lastWeek := time.Now().Add(time.Hour * -(24 * 7))
	return db.Model(&Record{}).Where("active = ? AND updated_at < ?", true, lastWeek).Update("active", false).Error
}
