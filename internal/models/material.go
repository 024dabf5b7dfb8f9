package models

import (
	"time"

	"gorm.io/datatypes"
)

type Material struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Title       string  `json:"title" gorm:"not null;size:200"`
	Description *string `json:"description" gorm:"type:text"`
	Content     *string `json:"content" gorm:"type:text"`
	CategoryID  *uint   `json:"category_id" gorm:"index"`
	Duration    *string `json:"duration" gorm:"size:50"`
	CreatedBy   *uint   `json:"created_by" gorm:"index"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations, only used for foreign key constraints
	Category *Category `json:"-" gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
	Creator  *User     `json:"-" gorm:"foreignKey:CreatedBy;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

func (Material) TableName() string {
	return "materials"
}

// MaterialView is a material enriched with its category and author through left joins.
// Enrichment fields are nil when the parent row is missing.
type MaterialView struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Content     *string   `json:"content"`
	CategoryID  *uint     `json:"category_id"`
	Duration    *string   `json:"duration"`
	CreatedBy   *uint     `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	CategoryName  *string `json:"category_name"`
	CategoryColor *string `json:"category_color"`
	Author        *string `json:"author"`
}

type AuditAction string

const (
	AuditCreated AuditAction = "created"
	AuditUpdated AuditAction = "updated"
	AuditDeleted AuditAction = "deleted"
)

// MaterialAudit records a single mutation of a material. MaterialID is kept after
// the material is deleted, so it carries no foreign key.
type MaterialAudit struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	MaterialID uint           `json:"material_id" gorm:"not null;index"`
	Action     AuditAction    `json:"action" gorm:"not null;size:20"`
	ActorID    uint           `json:"actor_id" gorm:"not null;index"`
	Payload    datatypes.JSON `json:"payload"`
	CreatedAt  time.Time      `json:"created_at"`
}

func (MaterialAudit) TableName() string {
	return "material_audits"
}

// AllModels lists every table managed by AutoMigrate, parents first.
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Category{},
		&Material{},
		&MaterialAudit{},
	}
}
