package calendar

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/civil"
	"go.uber.org/zap"

	"crop-calendar/internal/model"
	pkgerrors "crop-calendar/pkg/errors"
)

// ErrBlankCell 拖放目标为月初占位格
var ErrBlankCell = errors.New("目标格子没有日期")

// ErrCanceledAfterCommit 存储端已写入新日期，但调用方在等待期间已取消，视图未刷新
var ErrCanceledAfterCommit = errors.New("改期已写入，请求已取消")

// Source 重排触发来源
type Source string

const (
	SourceDrag Source = "drag"
	SourceEdit Source = "edit"
)

// RescheduleResult 重排结果；Changed 为 false 时未写存储
type RescheduleResult struct {
	Schedule model.CropSchedule
	Changed  bool
}

// Rescheduler 重排引擎：校验并修改单条计划的日期。
// 拖放与表单编辑都走 Reschedule，保证校验与空操作判定一致。
type Rescheduler struct {
	store  Store
	logger *zap.Logger
}

// NewRescheduler 创建重排引擎
func NewRescheduler(store Store, logger *zap.Logger) *Rescheduler {
	return &Rescheduler{store: store, logger: logger}
}

// Reschedule 两阶段执行：先写存储并等待结果，成功后再用 reducer 更新 board。
//   - 记录不存在 → ErrNotFound
//   - 新日期与当前相同 → 不写存储，原样返回
//   - 存储失败 → board 不变，不重试
//
// board 为 nil 时只写存储（服务端调用）。
func (r *Rescheduler) Reschedule(ctx context.Context, board *Board, id int64, newDate civil.Date) (*RescheduleResult, error) {
	if !newDate.IsValid() {
		return nil, pkgerrors.NewValidationError(pkgerrors.FieldErrors{"date": MsgDateRequired})
	}

	current, err := r.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if current.Date.Date == newDate {
		return &RescheduleResult{Schedule: *current, Changed: false}, nil
	}

	date := model.NewDate(newDate)
	updated, err := r.store.Update(ctx, id, model.SchedulePatch{Date: &date})
	if err != nil {
		r.logger.Warn("重排写入失败",
			zap.Int64("id", id),
			zap.String("date", newDate.String()),
			zap.Error(err),
		)
		return nil, err
	}

	// 视图在等待期间已被丢弃时不再回写
	if ctx.Err() != nil {
		return nil, fmt.Errorf("重排计划 %d: %w: %w", id, ErrCanceledAfterCommit, ctx.Err())
	}

	if board != nil {
		board.Replace(*updated)
	}

	r.logger.Info("计划已重排",
		zap.Int64("id", id),
		zap.String("from", current.Date.String()),
		zap.String("to", newDate.String()),
	)
	return &RescheduleResult{Schedule: *updated, Changed: true}, nil
}

// Drop 拖放：把计划拖到月视图某一格
func (r *Rescheduler) Drop(ctx context.Context, board *Board, id int64, target Cell) (*RescheduleResult, error) {
	if target.Blank {
		return nil, fmt.Errorf("拖放计划 %d: %w", id, ErrBlankCell)
	}
	return r.Reschedule(ctx, board, id, target.Date)
}

// EditDate 表单直接修改日期
func (r *Rescheduler) EditDate(ctx context.Context, board *Board, id int64, date civil.Date) (*RescheduleResult, error) {
	return r.Reschedule(ctx, board, id, date)
}

// Via 按来源分派
func (r *Rescheduler) Via(ctx context.Context, src Source, board *Board, id int64, date civil.Date) (*RescheduleResult, error) {
	if src == SourceDrag {
		return r.Drop(ctx, board, id, Cell{Date: date})
	}
	return r.EditDate(ctx, board, id, date)
}
