package repository

import (
	"github.com/pccr10001/ofonomock/internal/model"
	"gorm.io/gorm"
)

type WebhookRepository struct {
	db *gorm.DB
}

func NewWebhookRepository(db *gorm.DB) *WebhookRepository {
	return &WebhookRepository{db: db}
}

func (r *WebhookRepository) Create(webhook *model.Webhook) error {
	return r.db.Create(webhook).Error
}

func (r *WebhookRepository) List() ([]model.Webhook, error) {
	var list []model.Webhook
	err := r.db.Order("id asc").Find(&list).Error
	return list, err
}

// FindByMember returns the enabled webhooks interested in member: those
// filtering on it and those without a filter.
func (r *WebhookRepository) FindByMember(member string) ([]model.Webhook, error) {
	var list []model.Webhook
	err := r.db.Where("(member = ? OR member = '') AND enabled = ?", member, true).Order("id asc").Find(&list).Error
	return list, err
}

func (r *WebhookRepository) Delete(id uint) error {
	return r.db.Delete(&model.Webhook{}, id).Error
}
