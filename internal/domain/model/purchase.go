package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 購入ヘッダ。明細は後からバッチで追加され、
// 1明細 = 1件のINBOUND Transactionになる。
// 金額合計と紐づく数量は独立した事実で、突き合わせはしない。
type Purchase struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//人が読む購入番号。指定があれば一意。
	PurchaseNumber string `gorm:"type:varchar(50);not null;uniqueIndex" json:"purchase_number"`

	//仕入先の参照（外部キー強制なし）
	SupplierID int64 `gorm:"index" json:"supplier_id"`

	//店舗ラベル
	Store string `gorm:"type:varchar(100)" json:"store"`

	Subtotal decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	Tax      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"tax"`
	Discount decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"discount"`

	//total = subtotal + tax - discount（0以上）
	Total decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"`

	Note string `gorm:"type:text" json:"note"`

	//作成したユーザー
	UserID int64 `gorm:"not null;index" json:"user_id"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
