package repository

import (
	"context"
	"time"

	"app/internal/domain/model"
)

//監査ログの絞り込み条件。

type AuditLogFilter struct {
	ActorKind   *model.ActorKind
	UserID      *int64
	LogTypeID   *int64
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Skip        int
	Limit       int
}

// 監査ログの保存・取得の約束。更新・削除のメソッドは意図的に存在しない。
type AuditLogRepository interface {
	//監査ログを1件保存
	Create(ctx context.Context, log *model.AuditLog) error

	FindByID(ctx context.Context, id int64) (model.AuditLog, error)

	//監査ログを条件で一覧取得。
	List(ctx context.Context, filter AuditLogFilter) ([]model.AuditLog, error)

	Count(ctx context.Context, filter AuditLogFilter) (int64, error)
}

// ログ種別カタログの約束。
type LogTypeRepository interface {
	FindByID(ctx context.Context, id int64) (model.LogType, error)
	FindByName(ctx context.Context, name model.LogTypeName) (model.LogType, error)
	ListActive(ctx context.Context) ([]model.LogType, error)
}
