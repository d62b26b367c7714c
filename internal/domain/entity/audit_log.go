package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AuditLog is one entry of the scheduling audit trail.
type AuditLog struct {
	ID         int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Action     string     `gorm:"type:varchar(100);not null;index" json:"action"`
	EntityName string     `gorm:"type:varchar(50);not null;index:idx_audit_logs_entity" json:"entity_name"`
	EntityID   string     `gorm:"type:varchar(64);not null;index:idx_audit_logs_entity" json:"entity_id"`
	Metadata   JSON       `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt  time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// AuditLogFilter narrows audit trail listings.
type AuditLogFilter struct {
	EntityName string
	EntityID   string
	Action     string
	Limit      int
}

// JSON is a jsonb column value.
type JSON map[string]interface{}

// Value implements driver.Valuer.
func (j JSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner.
func (j *JSON) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*j = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported jsonb value type %T", value)
	}

	decoded := map[string]interface{}{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	*j = decoded
	return nil
}

// Audit actions
const (
	AuditActionAppointmentCreate     = "appointment.create"
	AuditActionAppointmentUpdate     = "appointment.update"
	AuditActionAppointmentReschedule = "appointment.reschedule"
	AuditActionAppointmentConfirm    = "appointment.confirm"
	AuditActionAppointmentCheckIn    = "appointment.checkin"
	AuditActionAppointmentStart      = "appointment.start"
	AuditActionAppointmentCheckOut   = "appointment.checkout"
	AuditActionAppointmentCancel     = "appointment.cancel"
	AuditActionAppointmentNoShow     = "appointment.no_show"
	AuditActionSeriesExpand          = "appointment.series_expand"
	AuditActionScheduleInitialize    = "schedule.initialize"
	AuditActionScheduleUpdate        = "schedule.update"
	AuditActionShiftCreate           = "shift.create"
	AuditActionShiftUpdate           = "shift.update"
	AuditActionShiftDelete           = "shift.delete"
	AuditActionWaitlistCreate        = "waitlist.create"
	AuditActionWaitlistUpdate        = "waitlist.update"
	AuditActionWaitlistDelete        = "waitlist.delete"
	AuditActionWaitlistNotify        = "waitlist.notify"
	AuditActionWaitlistSchedule      = "waitlist.schedule"
	AuditActionWaitlistExpire        = "waitlist.expire"
)

// Audited entity names
const (
	AuditEntityAppointment    = "appointment"
	AuditEntityDoctorSchedule = "doctor_schedule"
	AuditEntityShift          = "shift"
	AuditEntityWaitlistEntry  = "waitlist_entry"
)
