package repository

import (
	"errors"
	"fmt"

	"clinic-scheduler/internal/domain/entity"
	domainRepo "clinic-scheduler/internal/domain/repository"

	"gorm.io/gorm"
)

const (
	defaultAuditLogLimit = 100
	auditSavepoint       = "audit_log"
)

type auditLogRepository struct{}

func NewAuditLogRepository() domainRepo.AuditLogRepository {
	return &auditLogRepository{}
}

// Create must run inside a transaction. The insert is wrapped in a savepoint
// so a failed audit row leaves the caller's transaction usable.
func (r *auditLogRepository) Create(db *gorm.DB, log *entity.AuditLog) error {
	if err := db.SavePoint(auditSavepoint).Error; err != nil {
		return err
	}
	if err := db.Create(log).Error; err != nil {
		if rbErr := db.RollbackTo(auditSavepoint).Error; rbErr != nil {
			return fmt.Errorf("rollback to %s: %v: %w", auditSavepoint, rbErr, err)
		}
		return err
	}
	return nil
}

func (r *auditLogRepository) FindAll(db *gorm.DB, filter *entity.AuditLogFilter) ([]entity.AuditLog, error) {
	var logs []entity.AuditLog
	query := db.Model(&entity.AuditLog{})
	limit := defaultAuditLogLimit

	if filter != nil {
		if filter.EntityName != "" {
			query = query.Where("entity_name = ?", filter.EntityName)
		}
		if filter.EntityID != "" {
			query = query.Where("entity_id = ?", filter.EntityID)
		}
		if filter.Action != "" {
			query = query.Where("action = ?", filter.Action)
		}
		if filter.Limit > 0 {
			limit = filter.Limit
		}
	}

	err := query.Order("id DESC").Limit(limit).Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *auditLogRepository) FindByID(db *gorm.DB, id int64) (*entity.AuditLog, error) {
	var log entity.AuditLog
	err := db.Where("id = ?", id).First(&log).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &log, nil
}
