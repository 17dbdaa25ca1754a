package repository

import (
	"github.com/pccr10001/ofonomock/internal/model"
	"gorm.io/gorm"
)

type SignalRepository struct {
	db *gorm.DB
}

func NewSignalRepository(db *gorm.DB) *SignalRepository {
	return &SignalRepository{db: db}
}

func (r *SignalRepository) Create(rec *model.SignalRecord) error {
	return r.db.Create(rec).Error
}

// List returns journaled signals oldest first, optionally filtered by member.
func (r *SignalRepository) List(member string) ([]model.SignalRecord, error) {
	var list []model.SignalRecord
	db := r.db
	if member != "" {
		db = db.Where("member = ?", member)
	}
	err := db.Order("id asc").Find(&list).Error
	return list, err
}

func (r *SignalRepository) Clear() error {
	return r.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.SignalRecord{}).Error
}
