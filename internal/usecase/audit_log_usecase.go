package usecase

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/sirupsen/logrus"
)

// 監査ログの書き込み口。他のusecaseから使う。
// 書き込みはベストエフォート: 失敗しても本処理は失敗させず、
// アプリログ（logrus）に残すだけにする。
type AuditRecorder struct {
	auditRepo repo.AuditLogRepository
	typeRepo  repo.LogTypeRepository
	logger    *logrus.Logger

	//ログ種別IDのキャッシュ（固定カタログなので取り直す必要がない）
	mu      sync.Mutex
	typeIDs map[model.LogTypeName]int64
}

func NewAuditRecorder(
	auditRepo repo.AuditLogRepository,
	typeRepo repo.LogTypeRepository,
	logger *logrus.Logger,
) *AuditRecorder {
	return &AuditRecorder{
		auditRepo: auditRepo,
		typeRepo:  typeRepo,
		logger:    logger,
		typeIDs:   make(map[model.LogTypeName]int64),
	}
}

func (a *AuditRecorder) logTypeID(ctx context.Context, name model.LogTypeName) (int64, bool) {
	a.mu.Lock()
	if id, ok := a.typeIDs[name]; ok {
		a.mu.Unlock()
		return id, true
	}
	a.mu.Unlock()

	lt, err := a.typeRepo.FindByName(ctx, name)
	if err != nil {
		return 0, false
	}

	a.mu.Lock()
	a.typeIDs[name] = lt.ID
	a.mu.Unlock()
	return lt.ID, true
}

// ActorKindとUserIDの組み合わせ検証。
// SYSTEM => UserIDなし / USER => UserIDあり、以外は不正。
func validateActorRef(kind model.ActorKind, userID *int64) bool {
	if !kind.Valid() {
		return false
	}
	if kind == model.ActorSystem {
		return userID == nil
	}
	return userID != nil && *userID > 0
}

func (a *AuditRecorder) write(ctx context.Context, name model.LogTypeName, kind model.ActorKind, userID *int64, description string) {
	if !validateActorRef(kind, userID) {
		a.logger.WithFields(logrus.Fields{
			"log_type":   name,
			"actor_kind": kind,
		}).Warn("audit write skipped: invalid actor reference")
		return
	}

	typeID, ok := a.logTypeID(ctx, name)
	if !ok {
		a.logger.WithField("log_type", name).Warn("audit write skipped: log type not found")
		return
	}

	log := model.AuditLog{
		Description: description,
		ActorKind:   kind,
		LogTypeID:   typeID,
		UserID:      userID,
		CreatedAt:   time.Now(),
	}
	if err := a.auditRepo.Create(ctx, &log); err != nil {
		//本処理は失敗させない
		a.logger.WithError(err).WithField("log_type", name).Error("audit write failed")
	}
}

// ユーザー操作のINFOログ
func (a *AuditRecorder) Info(ctx context.Context, userID int64, description string) {
	a.write(ctx, model.LogTypeInfo, model.ActorUser, &userID, description)
}

// ユーザー操作のERRORログ
func (a *AuditRecorder) Error(ctx context.Context, userID int64, description string) {
	a.write(ctx, model.LogTypeError, model.ActorUser, &userID, description)
}

// システム起点のWARNINGログ
func (a *AuditRecorder) SystemWarning(ctx context.Context, description string) {
	a.write(ctx, model.LogTypeWarning, model.ActorSystem, nil, description)
}

// システム起点のERRORログ
func (a *AuditRecorder) SystemError(ctx context.Context, description string) {
	a.write(ctx, model.LogTypeError, model.ActorSystem, nil, description)
}

// ログイン記録
func (a *AuditRecorder) Login(ctx context.Context, userID int64) {
	a.write(ctx, model.LogTypeLogin, model.ActorUser, &userID, "user logged in")
}

// ユーザー作成記録
func (a *AuditRecorder) Signup(ctx context.Context, userID int64) {
	a.write(ctx, model.LogTypeSignup, model.ActorUser, &userID, "user created")
}

// 呼び出し元の素性。middlewareがJWTから取り出した値をhandlerが詰める。
type Actor struct {
	UserID int64
	Role   model.Role
}

type AuditLogUsecase struct {
	auditRepo repo.AuditLogRepository
	typeRepo  repo.LogTypeRepository
	userRepo  repo.UserRepository
}

// DI
func NewAuditLogUsecase(
	auditRepo repo.AuditLogRepository,
	typeRepo repo.LogTypeRepository,
	userRepo repo.UserRepository,
) *AuditLogUsecase {
	return &AuditLogUsecase{
		auditRepo: auditRepo,
		typeRepo:  typeRepo,
		userRepo:  userRepo,
	}
}

type AppendLogInput struct {
	Description string
	ActorKind   model.ActorKind
	LogTypeID   int64
	UserID      *int64
}

// 管理者による手動ログ作成。
// SYSTEM/USERとUserIDの組み合わせをここで強制する。
func (u *AuditLogUsecase) Append(ctx context.Context, actor Actor, in AppendLogInput) (model.AuditLog, error) {
	if actor.UserID <= 0 {
		return model.AuditLog{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if !actor.Role.IsAdmin() {
		return model.AuditLog{}, NewHTTPError(http.StatusForbidden, "admin only")
	}
	if strings.TrimSpace(in.Description) == "" {
		return model.AuditLog{}, NewHTTPError(http.StatusBadRequest, "description required")
	}
	if !validateActorRef(in.ActorKind, in.UserID) {
		return model.AuditLog{}, NewHTTPError(http.StatusBadRequest, "invalid actor_kind / user_id pair")
	}

	//ログ種別の存在確認
	if _, err := u.typeRepo.FindByID(ctx, in.LogTypeID); err != nil {
		if err == repo.ErrNotFound {
			return model.AuditLog{}, NewHTTPError(http.StatusNotFound, "log type not found")
		}
		return model.AuditLog{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//USERログなら対象ユーザーの存在確認
	if in.ActorKind == model.ActorUser {
		target, err := u.userRepo.FindByID(ctx, *in.UserID)
		if err != nil {
			return model.AuditLog{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if target == nil {
			return model.AuditLog{}, NewHTTPError(http.StatusNotFound, "user not found")
		}
	}

	log := model.AuditLog{
		Description: strings.TrimSpace(in.Description),
		ActorKind:   in.ActorKind,
		LogTypeID:   in.LogTypeID,
		UserID:      in.UserID,
		CreatedAt:   time.Now(),
	}
	if err := u.auditRepo.Create(ctx, &log); err != nil {
		return model.AuditLog{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return log, nil
}

// 1件取得。
// 一般ユーザーは「自分のUSERログ」だけ見える。管理者は全部見える。
func (u *AuditLogUsecase) Get(ctx context.Context, actor Actor, logID int64) (model.AuditLog, error) {
	if actor.UserID <= 0 {
		return model.AuditLog{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if logID <= 0 {
		return model.AuditLog{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	log, err := u.auditRepo.FindByID(ctx, logID)
	if err == repo.ErrNotFound {
		return model.AuditLog{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.AuditLog{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if !actor.Role.IsAdmin() {
		if log.ActorKind == model.ActorSystem {
			return model.AuditLog{}, NewHTTPError(http.StatusForbidden, "forbidden")
		}
		if log.UserID == nil || *log.UserID != actor.UserID {
			return model.AuditLog{}, NewHTTPError(http.StatusForbidden, "forbidden")
		}
	}

	return log, nil
}

type ListLogsInput struct {
	LogTypeID   *int64
	UserID      *int64
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Skip        int
	Limit       int
}

type LogListOutput struct {
	Items []model.AuditLog `json:"items"`
	Total int64            `json:"total"`
}

func (u *AuditLogUsecase) listWith(ctx context.Context, filter repo.AuditLogFilter) (LogListOutput, error) {
	logs, err := u.auditRepo.List(ctx, filter)
	if err != nil {
		return LogListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	total, err := u.auditRepo.Count(ctx, filter)
	if err != nil {
		return LogListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return LogListOutput{Items: logs, Total: total}, nil
}

// 一覧取得。
// 一般ユーザー: 自分のUSERログのみ。
// 管理者: USERログ全部（SYSTEMログはListSystemでのみ読める）。
func (u *AuditLogUsecase) List(ctx context.Context, actor Actor, in ListLogsInput) (LogListOutput, error) {
	if actor.UserID <= 0 {
		return LogListOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	userKind := model.ActorUser
	filter := repo.AuditLogFilter{
		ActorKind:   &userKind,
		LogTypeID:   in.LogTypeID,
		CreatedFrom: in.CreatedFrom,
		CreatedTo:   in.CreatedTo,
		Skip:        in.Skip,
		Limit:       in.Limit,
	}

	if actor.Role.IsAdmin() {
		//管理者はユーザー指定の絞り込みができる
		filter.UserID = in.UserID
	} else {
		//一般ユーザーは強制的に自分のログだけ
		self := actor.UserID
		filter.UserID = &self
	}

	return u.listWith(ctx, filter)
}

// SYSTEMログの一覧。管理者のみ。
func (u *AuditLogUsecase) ListSystem(ctx context.Context, actor Actor, in ListLogsInput) (LogListOutput, error) {
	if actor.UserID <= 0 {
		return LogListOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if !actor.Role.IsAdmin() {
		return LogListOutput{}, NewHTTPError(http.StatusForbidden, "forbidden")
	}

	systemKind := model.ActorSystem
	return u.listWith(ctx, repo.AuditLogFilter{
		ActorKind:   &systemKind,
		LogTypeID:   in.LogTypeID,
		CreatedFrom: in.CreatedFrom,
		CreatedTo:   in.CreatedTo,
		Skip:        in.Skip,
		Limit:       in.Limit,
	})
}

// 自分のログの一覧。
func (u *AuditLogUsecase) ListMine(ctx context.Context, actor Actor, in ListLogsInput) (LogListOutput, error) {
	if actor.UserID <= 0 {
		return LogListOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	userKind := model.ActorUser
	self := actor.UserID
	return u.listWith(ctx, repo.AuditLogFilter{
		ActorKind:   &userKind,
		UserID:      &self,
		LogTypeID:   in.LogTypeID,
		CreatedFrom: in.CreatedFrom,
		CreatedTo:   in.CreatedTo,
		Skip:        in.Skip,
		Limit:       in.Limit,
	})
}

// ログ種別カタログの一覧。
func (u *AuditLogUsecase) ListTypes(ctx context.Context) ([]model.LogType, error) {
	types, err := u.typeRepo.ListActive(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return types, nil
}

// ログは不変。ロールに関係なく更新は拒否（仕様であって未実装ではない）。
func (u *AuditLogUsecase) Update(ctx context.Context, actor Actor, logID int64) error {
	return NewHTTPError(http.StatusForbidden, "audit logs are immutable")
}

// ログは不変。ロールに関係なく削除は拒否。
func (u *AuditLogUsecase) Delete(ctx context.Context, actor Actor, logID int64) error {
	return NewHTTPError(http.StatusForbidden, "audit logs are immutable")
}
