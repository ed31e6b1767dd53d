package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 在庫移動の種類
type MovementKind string

const (
	//入庫。在庫を増やす操作。
	MovementInbound MovementKind = "INBOUND"

	//出庫。在庫を減らす操作。
	MovementOutbound MovementKind = "OUTBOUND"
)

// 閉じた列挙に含まれるか
func (k MovementKind) Valid() bool {
	return k == MovementInbound || k == MovementOutbound
}

// 在庫台帳の1行。
// 作成後は更新も削除もできない（台帳が在庫の正）。
type Transaction struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//INBOUND / OUTBOUND
	Kind MovementKind `gorm:"type:varchar(20);not null;index" json:"kind"`

	ProductID int64 `gorm:"not null;index" json:"product_id"`

	//数量（常に正。符号はKindが持つ）
	Quantity decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"quantity"`

	//記録したユーザー
	UserID int64 `gorm:"not null;index" json:"user_id"`

	//取引日。呼び出し側指定、省略時はnow。
	EffectiveDate time.Time `gorm:"not null;index" json:"effective_date"`

	//システムが記録した時刻
	RecordedAt time.Time `gorm:"not null" json:"recorded_at"`

	Note string `gorm:"type:text" json:"note"`

	//購入バッチ経由で作られたときだけ入る
	PurchaseID *int64 `gorm:"index" json:"purchase_id"`

	//販売との紐付け用。予約済みフィールドで今のフローでは常にnull。
	SaleID *int64 `gorm:"index" json:"sale_id"`
}
