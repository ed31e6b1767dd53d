package model

import "time"

// ログを残した主体の種類
type ActorKind string

const (
	//アプリケーション自身が残したログ。UserIDはnull。
	ActorSystem ActorKind = "SYSTEM"

	//ユーザー操作のログ。UserIDが必須。
	ActorUser ActorKind = "USER"
)

func (k ActorKind) Valid() bool {
	return k == ActorSystem || k == ActorUser
}

// ログ種別の固定カタログ名
type LogTypeName string

const (
	LogTypeError   LogTypeName = "ERROR"
	LogTypeWarning LogTypeName = "WARNING"
	LogTypeInfo    LogTypeName = "INFO"
	LogTypeLogin   LogTypeName = "LOGIN"
	LogTypeSignup  LogTypeName = "SIGNUP"
)

// ログ種別の参照テーブル（固定の小さいカタログ）
type LogType struct {
	ID          int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        LogTypeName `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	Description string      `gorm:"type:text" json:"description"`
	IsActive    bool        `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time   `gorm:"not null;autoCreateTime" json:"created_at"`
}

// 監査ログ。作成のみ可能で、更新・削除の経路は存在しない。
// ActorKind=SYSTEM のとき UserID は必ず null、
// ActorKind=USER のとき UserID は必ず非null。作成時に強制する。
type AuditLog struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	Description string `gorm:"type:text;not null" json:"description"`

	//SYSTEM / USER
	ActorKind ActorKind `gorm:"type:varchar(20);not null;index" json:"actor_kind"`

	LogTypeID int64 `gorm:"not null;index" json:"log_type_id"`

	//SYSTEMログではnull
	UserID *int64 `gorm:"index" json:"user_id"`

	//システムが付与する時刻
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
