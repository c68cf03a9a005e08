// Package remote 将远端记录服务适配为 repository 接口。
// 所有表共享同一个 Client（连接池与鉴权头只配置一次）。
package remote

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"crop-calendar/internal/calendar"
	"crop-calendar/internal/model"
	"crop-calendar/internal/repository"
)

// NewRepository 创建基于记录服务的 Repository 聚合
func NewRepository(client *Client) *repository.Repository {
	return &repository.Repository{
		CropSchedule: &cropScheduleRepo{client: client, now: time.Now},
		Field:        &fieldRepo{client: client},
		Equipment:    &equipmentRepo{client: client},
		Inspection:   &inspectionRepo{client: client},
		Activity:     &activityRepo{client: client},
	}
}

// decodeRows 逐行转换；格式无效的行记日志后跳过，不影响其余记录
func decodeRows[R any, M any](c *Client, table string, records []R, conv func(R) (M, error)) []M {
	out := make([]M, 0, len(records))
	for _, rec := range records {
		m, err := conv(rec)
		if err != nil {
			c.logger.Warn("跳过格式无效的记录", zap.String("table", table), zap.Error(err))
			continue
		}
		out = append(out, m)
	}
	return out
}

// ── 作物计划 ──

type cropScheduleRepo struct {
	client *Client
	now    func() time.Time
}

// List 田块条件交给记录服务，月份与季节在本地统一判定
func (r *cropScheduleRepo) List(ctx context.Context, filter model.ScheduleFilter) ([]model.CropSchedule, error) {
	q := Query{Fields: scheduleFields}
	if filter.FieldID != nil {
		q.Where = append(q.Where, EqualTo("field_id_c", *filter.FieldID))
	}

	var records []scheduleRecord
	if err := r.client.Query(ctx, scheduleTable, q, &records); err != nil {
		return nil, err
	}

	schedules := decodeRows(r.client, scheduleTable, records, scheduleRecord.toModel)
	return calendar.FilterSchedules(schedules, filter), nil
}

func (r *cropScheduleRepo) GetByID(ctx context.Context, id int64) (*model.CropSchedule, error) {
	var rec scheduleRecord
	if err := r.client.Get(ctx, scheduleTable, id, &rec); err != nil {
		return nil, err
	}
	s, err := rec.toModel()
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create 由本端打 created_at_c 时间戳，记录标题为 "<作物> <活动>"
func (r *cropScheduleRepo) Create(ctx context.Context, s *model.CropSchedule) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = r.now()
	}

	var rec scheduleRecord
	if err := r.client.Create(ctx, scheduleTable, scheduleFromModel(s), &rec); err != nil {
		return err
	}
	created, err := rec.toModel()
	if err != nil {
		return err
	}
	*s = created
	return nil
}

func (r *cropScheduleRepo) Update(ctx context.Context, id int64, patch model.SchedulePatch) (*model.CropSchedule, error) {
	if patch.IsEmpty() {
		return r.GetByID(ctx, id)
	}

	var rec scheduleRecord
	if err := r.client.Update(ctx, scheduleTable, schedulePatchRecord(id, patch), &rec); err != nil {
		return nil, err
	}
	s, err := rec.toModel()
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *cropScheduleRepo) Delete(ctx context.Context, id int64) (bool, error) {
	return r.client.Delete(ctx, scheduleTable, id)
}

// ── 田块 ──

type fieldRepo struct {
	client *Client
}

func (r *fieldRepo) Create(ctx context.Context, f *model.Field) error {
	var rec fieldRecord
	if err := r.client.Create(ctx, fieldTable, fieldFromModel(f), &rec); err != nil {
		return err
	}
	created, err := rec.toModel()
	if err != nil {
		return err
	}
	*f = created
	return nil
}

func (r *fieldRepo) GetByID(ctx context.Context, id int64) (*model.Field, error) {
	var rec fieldRecord
	if err := r.client.Get(ctx, fieldTable, id, &rec); err != nil {
		return nil, err
	}
	f, err := rec.toModel()
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *fieldRepo) List(ctx context.Context) ([]model.Field, error) {
	var records []fieldRecord
	if err := r.client.Query(ctx, fieldTable, Query{Fields: fieldFields}, &records); err != nil {
		return nil, err
	}
	return decodeRows(r.client, fieldTable, records, fieldRecord.toModel), nil
}

func (r *fieldRepo) Update(ctx context.Context, f *model.Field) error {
	var rec fieldRecord
	if err := r.client.Update(ctx, fieldTable, fieldFromModel(f), &rec); err != nil {
		return err
	}
	updated, err := rec.toModel()
	if err != nil {
		return err
	}
	*f = updated
	return nil
}

func (r *fieldRepo) Delete(ctx context.Context, id int64) (bool, error) {
	return r.client.Delete(ctx, fieldTable, id)
}

// ── 设备 ──

type equipmentRepo struct {
	client *Client
}

func (r *equipmentRepo) Create(ctx context.Context, e *model.Equipment) error {
	return r.write(ctx, e, r.client.Create)
}

func (r *equipmentRepo) GetByID(ctx context.Context, id int64) (*model.Equipment, error) {
	var rec equipmentRecord
	if err := r.client.Get(ctx, equipmentTable, id, &rec); err != nil {
		return nil, err
	}
	e, err := rec.toModel()
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *equipmentRepo) List(ctx context.Context) ([]model.Equipment, error) {
	var records []equipmentRecord
	if err := r.client.Query(ctx, equipmentTable, Query{Fields: equipmentFields}, &records); err != nil {
		return nil, err
	}
	return decodeRows(r.client, equipmentTable, records, equipmentRecord.toModel), nil
}

func (r *equipmentRepo) Update(ctx context.Context, e *model.Equipment) error {
	return r.write(ctx, e, r.client.Update)
}

func (r *equipmentRepo) Delete(ctx context.Context, id int64) (bool, error) {
	return r.client.Delete(ctx, equipmentTable, id)
}

type writeFunc func(ctx context.Context, table string, record interface{}, out interface{}) error

func (r *equipmentRepo) write(ctx context.Context, e *model.Equipment, fn writeFunc) error {
	payload, err := equipmentFromModel(e)
	if err != nil {
		return err
	}
	var rec equipmentRecord
	if err := fn(ctx, equipmentTable, payload, &rec); err != nil {
		return err
	}
	saved, err := rec.toModel()
	if err != nil {
		return err
	}
	*e = saved
	return nil
}

// ── 巡检 ──

type inspectionRepo struct {
	client *Client
}

func (r *inspectionRepo) Create(ctx context.Context, in *model.Inspection) error {
	return r.write(ctx, in, r.client.Create)
}

func (r *inspectionRepo) GetByID(ctx context.Context, id int64) (*model.Inspection, error) {
	var rec inspectionRecord
	if err := r.client.Get(ctx, inspectionTable, id, &rec); err != nil {
		return nil, err
	}
	in, err := rec.toModel()
	if err != nil {
		return nil, err
	}
	return &in, nil
}

// List 按日期降序；fieldID 非 nil 时由记录服务按田块过滤
func (r *inspectionRepo) List(ctx context.Context, fieldID *int64) ([]model.Inspection, error) {
	q := Query{Fields: inspectionFields}
	if fieldID != nil {
		q.Where = append(q.Where, EqualTo("field_id_c", *fieldID))
	}
	var records []inspectionRecord
	if err := r.client.Query(ctx, inspectionTable, q, &records); err != nil {
		return nil, err
	}
	list := decodeRows(r.client, inspectionTable, records, inspectionRecord.toModel)
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Date != list[j].Date {
			return list[i].Date.After(list[j].Date.Date)
		}
		return list[i].ID > list[j].ID
	})
	return list, nil
}

func (r *inspectionRepo) Update(ctx context.Context, in *model.Inspection) error {
	return r.write(ctx, in, r.client.Update)
}

func (r *inspectionRepo) Delete(ctx context.Context, id int64) (bool, error) {
	return r.client.Delete(ctx, inspectionTable, id)
}

func (r *inspectionRepo) write(ctx context.Context, in *model.Inspection, fn writeFunc) error {
	var rec inspectionRecord
	if err := fn(ctx, inspectionTable, inspectionFromModel(in), &rec); err != nil {
		return err
	}
	saved, err := rec.toModel()
	if err != nil {
		return err
	}
	*in = saved
	return nil
}

// ── 田块活动 ──

type activityRepo struct {
	client *Client
}

func (r *activityRepo) Create(ctx context.Context, a *model.FieldActivity) error {
	return r.write(ctx, a, r.client.Create)
}

func (r *activityRepo) GetByID(ctx context.Context, id int64) (*model.FieldActivity, error) {
	var rec activityRecord
	if err := r.client.Get(ctx, activityTable, id, &rec); err != nil {
		return nil, err
	}
	a, err := rec.toModel()
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// List 按时间降序
func (r *activityRepo) List(ctx context.Context, fieldID *int64) ([]model.FieldActivity, error) {
	q := Query{Fields: activityFields}
	if fieldID != nil {
		q.Where = append(q.Where, EqualTo("field_id_c", *fieldID))
	}
	var records []activityRecord
	if err := r.client.Query(ctx, activityTable, q, &records); err != nil {
		return nil, err
	}
	list := decodeRows(r.client, activityTable, records, activityRecord.toModel)
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].Timestamp.Equal(list[j].Timestamp) {
			return list[i].Timestamp.After(list[j].Timestamp)
		}
		return list[i].ID > list[j].ID
	})
	return list, nil
}

func (r *activityRepo) Update(ctx context.Context, a *model.FieldActivity) error {
	return r.write(ctx, a, r.client.Update)
}

func (r *activityRepo) Delete(ctx context.Context, id int64) (bool, error) {
	return r.client.Delete(ctx, activityTable, id)
}

func (r *activityRepo) write(ctx context.Context, a *model.FieldActivity, fn writeFunc) error {
	var rec activityRecord
	if err := fn(ctx, activityTable, activityFromModel(a), &rec); err != nil {
		return err
	}
	saved, err := rec.toModel()
	if err != nil {
		return err
	}
	*a = saved
	return nil
}
