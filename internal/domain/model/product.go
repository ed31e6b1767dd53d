package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//商品コード
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`

	Name        string `gorm:"type:varchar(200);not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Brand       string `gorm:"type:varchar(100)" json:"brand"`

	//単位（個、kgなど）
	Unit string `gorm:"type:varchar(20)" json:"unit"`

	PurchasePrice decimal.Decimal `gorm:"type:numeric(12,2)" json:"purchase_price"`
	SalePrice     decimal.Decimal `gorm:"type:numeric(12,2)" json:"sale_price"`

	//この値を下回ると低在庫
	MinStock decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"min_stock"`

	IsActive  bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
