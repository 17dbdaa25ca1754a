package repository

import (
	"github.com/pccr10001/ofonomock/internal/model"
	"gorm.io/gorm"
)

type CallRepository struct {
	db *gorm.DB
}

func NewCallRepository(db *gorm.DB) *CallRepository {
	return &CallRepository{db: db}
}

func (r *CallRepository) Create(call *model.MethodCall) error {
	return r.db.Create(call).Error
}

// List returns journaled calls oldest first, optionally filtered by method
// name.
func (r *CallRepository) List(method string) ([]model.MethodCall, error) {
	var list []model.MethodCall
	db := r.db
	if method != "" {
		db = db.Where("method = ?", method)
	}
	err := db.Order("id asc").Find(&list).Error
	return list, err
}

func (r *CallRepository) Clear() error {
	return r.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.MethodCall{}).Error
}
