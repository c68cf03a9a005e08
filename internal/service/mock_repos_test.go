package service

import (
	"context"
	"sort"
	"time"

	"crop-calendar/internal/calendar"
	"crop-calendar/internal/model"
	"crop-calendar/internal/repository"
	pkgerrors "crop-calendar/pkg/errors"
)

// ── Mock CropScheduleRepository ──

type mockCropScheduleRepo struct {
	schedules map[int64]*model.CropSchedule
	nextID    int64
	updates   []model.SchedulePatch
	// 非 nil 时所有调用返回该错误
	err error
}

func newMockCropScheduleRepo() *mockCropScheduleRepo {
	return &mockCropScheduleRepo{schedules: make(map[int64]*model.CropSchedule), nextID: 1}
}

func (m *mockCropScheduleRepo) add(s model.CropSchedule) {
	if s.ID == 0 {
		s.ID = m.nextID
	}
	if s.ID >= m.nextID {
		m.nextID = s.ID + 1
	}
	m.schedules[s.ID] = &s
}

func (m *mockCropScheduleRepo) List(_ context.Context, filter model.ScheduleFilter) ([]model.CropSchedule, error) {
	if m.err != nil {
		return nil, m.err
	}
	ids := make([]int64, 0, len(m.schedules))
	for id := range m.schedules {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var result []model.CropSchedule
	for _, id := range ids {
		if s := m.schedules[id]; calendar.Match(filter, *s) {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockCropScheduleRepo) GetByID(_ context.Context, id int64) (*model.CropSchedule, error) {
	if m.err != nil {
		return nil, m.err
	}
	if s, ok := m.schedules[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, pkgerrors.ErrNotFound
}

func (m *mockCropScheduleRepo) Create(_ context.Context, s *model.CropSchedule) error {
	if m.err != nil {
		return m.err
	}
	s.ID = m.nextID
	m.nextID++
	s.CreatedAt = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	cp := *s
	m.schedules[s.ID] = &cp
	return nil
}

func (m *mockCropScheduleRepo) Update(_ context.Context, id int64, patch model.SchedulePatch) (*model.CropSchedule, error) {
	m.updates = append(m.updates, patch)
	if m.err != nil {
		return nil, m.err
	}
	s, ok := m.schedules[id]
	if !ok {
		return nil, pkgerrors.ErrNotFound
	}
	updated := patch.Apply(*s)
	m.schedules[id] = &updated
	cp := updated
	return &cp, nil
}

func (m *mockCropScheduleRepo) Delete(_ context.Context, id int64) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	if _, ok := m.schedules[id]; !ok {
		return false, nil
	}
	delete(m.schedules, id)
	return true, nil
}

// ── Mock FieldRepository ──

type mockFieldRepo struct {
	fields map[int64]*model.Field
	err    error
}

func newMockFieldRepo() *mockFieldRepo {
	return &mockFieldRepo{fields: make(map[int64]*model.Field)}
}

func (m *mockFieldRepo) Create(_ context.Context, f *model.Field) error {
	if m.err != nil {
		return m.err
	}
	f.ID = int64(len(m.fields) + 1)
	cp := *f
	m.fields[f.ID] = &cp
	return nil
}

func (m *mockFieldRepo) GetByID(_ context.Context, id int64) (*model.Field, error) {
	if m.err != nil {
		return nil, m.err
	}
	if f, ok := m.fields[id]; ok {
		cp := *f
		return &cp, nil
	}
	return nil, pkgerrors.ErrNotFound
}

func (m *mockFieldRepo) List(_ context.Context) ([]model.Field, error) {
	if m.err != nil {
		return nil, m.err
	}
	var result []model.Field
	for _, f := range m.fields {
		result = append(result, *f)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockFieldRepo) Update(_ context.Context, f *model.Field) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.fields[f.ID]; !ok {
		return pkgerrors.ErrNotFound
	}
	cp := *f
	m.fields[f.ID] = &cp
	return nil
}

func (m *mockFieldRepo) Delete(_ context.Context, id int64) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	if _, ok := m.fields[id]; !ok {
		return false, nil
	}
	delete(m.fields, id)
	return true, nil
}

// ── Mock EquipmentRepository ──

type mockEquipmentRepo struct {
	items map[int64]*model.Equipment
	err   error
}

func newMockEquipmentRepo() *mockEquipmentRepo {
	return &mockEquipmentRepo{items: make(map[int64]*model.Equipment)}
}

func (m *mockEquipmentRepo) Create(_ context.Context, e *model.Equipment) error {
	if m.err != nil {
		return m.err
	}
	e.ID = int64(len(m.items) + 1)
	cp := *e
	m.items[e.ID] = &cp
	return nil
}

func (m *mockEquipmentRepo) GetByID(_ context.Context, id int64) (*model.Equipment, error) {
	if e, ok := m.items[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, pkgerrors.ErrNotFound
}

func (m *mockEquipmentRepo) List(_ context.Context) ([]model.Equipment, error) {
	if m.err != nil {
		return nil, m.err
	}
	var result []model.Equipment
	for _, e := range m.items {
		result = append(result, *e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockEquipmentRepo) Update(_ context.Context, e *model.Equipment) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.items[e.ID]; !ok {
		return pkgerrors.ErrNotFound
	}
	cp := *e
	m.items[e.ID] = &cp
	return nil
}

func (m *mockEquipmentRepo) Delete(_ context.Context, id int64) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	if _, ok := m.items[id]; !ok {
		return false, nil
	}
	delete(m.items, id)
	return true, nil
}

// ── Mock InspectionRepository ──

type mockInspectionRepo struct {
	items  map[int64]*model.Inspection
	nextID int64
	err    error
}

func newMockInspectionRepo() *mockInspectionRepo {
	return &mockInspectionRepo{items: make(map[int64]*model.Inspection), nextID: 1}
}

func (m *mockInspectionRepo) Create(_ context.Context, in *model.Inspection) error {
	if m.err != nil {
		return m.err
	}
	in.ID = m.nextID
	m.nextID++
	cp := *in
	m.items[in.ID] = &cp
	return nil
}

func (m *mockInspectionRepo) GetByID(_ context.Context, id int64) (*model.Inspection, error) {
	if m.err != nil {
		return nil, m.err
	}
	if in, ok := m.items[id]; ok {
		cp := *in
		return &cp, nil
	}
	return nil, pkgerrors.ErrNotFound
}

func (m *mockInspectionRepo) List(_ context.Context, fieldID *int64) ([]model.Inspection, error) {
	if m.err != nil {
		return nil, m.err
	}
	var result []model.Inspection
	for _, in := range m.items {
		if fieldID == nil || in.FieldID == *fieldID {
			result = append(result, *in)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Date != result[j].Date {
			return result[i].Date.After(result[j].Date.Date)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

func (m *mockInspectionRepo) Update(_ context.Context, in *model.Inspection) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.items[in.ID]; !ok {
		return pkgerrors.ErrNotFound
	}
	cp := *in
	m.items[in.ID] = &cp
	return nil
}

func (m *mockInspectionRepo) Delete(_ context.Context, id int64) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	if _, ok := m.items[id]; !ok {
		return false, nil
	}
	delete(m.items, id)
	return true, nil
}

// ── Mock ActivityRepository ──

type mockActivityRepo struct {
	items  map[int64]*model.FieldActivity
	nextID int64
}

func newMockActivityRepo() *mockActivityRepo {
	return &mockActivityRepo{items: make(map[int64]*model.FieldActivity), nextID: 1}
}

func (m *mockActivityRepo) Create(_ context.Context, a *model.FieldActivity) error {
	a.ID = m.nextID
	m.nextID++
	cp := *a
	m.items[a.ID] = &cp
	return nil
}

func (m *mockActivityRepo) GetByID(_ context.Context, id int64) (*model.FieldActivity, error) {
	if a, ok := m.items[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, pkgerrors.ErrNotFound
}

func (m *mockActivityRepo) List(_ context.Context, fieldID *int64) ([]model.FieldActivity, error) {
	var result []model.FieldActivity
	for _, a := range m.items {
		if fieldID == nil || a.FieldID == *fieldID {
			result = append(result, *a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Timestamp.After(result[j].Timestamp) })
	return result, nil
}

func (m *mockActivityRepo) Update(_ context.Context, a *model.FieldActivity) error {
	if _, ok := m.items[a.ID]; !ok {
		return pkgerrors.ErrNotFound
	}
	cp := *a
	m.items[a.ID] = &cp
	return nil
}

func (m *mockActivityRepo) Delete(_ context.Context, id int64) (bool, error) {
	if _, ok := m.items[id]; !ok {
		return false, nil
	}
	delete(m.items, id)
	return true, nil
}

// ── 测试辅助 ──

type mockRepos struct {
	schedules   *mockCropScheduleRepo
	fields      *mockFieldRepo
	equipment   *mockEquipmentRepo
	inspections *mockInspectionRepo
	activities  *mockActivityRepo
}

func newMockRepository() (*repository.Repository, *mockRepos) {
	m := &mockRepos{
		schedules:   newMockCropScheduleRepo(),
		fields:      newMockFieldRepo(),
		equipment:   newMockEquipmentRepo(),
		inspections: newMockInspectionRepo(),
		activities:  newMockActivityRepo(),
	}
	return &repository.Repository{
		CropSchedule: m.schedules,
		Field:        m.fields,
		Equipment:    m.equipment,
		Inspection:   m.inspections,
		Activity:     m.activities,
	}, m
}

// fixedClock 固定在 2024-06-15 10:00 UTC
func fixedClock() Clock {
	return Clock{
		Now: func() time.Time { return time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC) },
		Loc: time.UTC,
	}
}
