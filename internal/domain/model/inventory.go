package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 商品ごとの在庫サマリ（台帳から導出する読み取り用キャッシュ）。
// CurrentQtyは常に SUM(INBOUND) - SUM(OUTBOUND) と一致していなければならない。
type Inventory struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	ProductID int64 `gorm:"not null;uniqueIndex" json:"product_id"`

	//現在数量
	CurrentQty decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"current_qty"`

	//引当済み数量。このコアでは更新されない（常に0）。
	ReservedQty decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"reserved_qty"`

	//表示用: current - reserved。引当フローがないため現状はCurrentQtyと一致する。
	AvailableQty decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"available_qty"`

	LastInboundAt  *time.Time `json:"last_inbound_at"`
	LastOutboundAt *time.Time `json:"last_outbound_at"`

	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
