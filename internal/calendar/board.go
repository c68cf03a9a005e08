package calendar

import (
	"sync"

	"crop-calendar/internal/model"
)

// Board 视图持有的本地计划列表（本地投影）。
// 只能经由重排引擎、新增/删除回调或整体重载修改；并发写入按"后写入者胜出"合并。
type Board struct {
	mu        sync.RWMutex
	schedules []model.CropSchedule
}

// NewBoard 以一次完整加载的结果创建 Board
func NewBoard(schedules []model.CropSchedule) *Board {
	b := &Board{}
	b.Reload(schedules)
	return b
}

// Reload 整体替换
func (b *Board) Reload(schedules []model.CropSchedule) {
	cp := make([]model.CropSchedule, len(schedules))
	copy(cp, schedules)

	b.mu.Lock()
	b.schedules = cp
	b.mu.Unlock()
}

// Schedules 当前列表的副本
func (b *Board) Schedules() []model.CropSchedule {
	b.mu.RLock()
	defer b.mu.RUnlock()
	cp := make([]model.CropSchedule, len(b.schedules))
	copy(cp, b.schedules)
	return cp
}

// Find 按 ID 查找
func (b *Board) Find(id int64) (model.CropSchedule, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, s := range b.schedules {
		if s.ID == id {
			return s, true
		}
	}
	return model.CropSchedule{}, false
}

// Replace 原位替换同 ID 记录
func (b *Board) Replace(updated model.CropSchedule) {
	b.mu.Lock()
	b.schedules = ReplaceSchedule(b.schedules, updated)
	b.mu.Unlock()
}

// Append 追加新建记录
func (b *Board) Append(created model.CropSchedule) {
	b.mu.Lock()
	b.schedules = AppendSchedule(b.schedules, created)
	b.mu.Unlock()
}

// Remove 移除记录
func (b *Board) Remove(id int64) {
	b.mu.Lock()
	b.schedules = RemoveSchedule(b.schedules, id)
	b.mu.Unlock()
}

// ── 纯函数 reducer：不修改入参切片 ──

// ReplaceSchedule 返回替换了同 ID 记录的新切片，其余记录及顺序不变
func ReplaceSchedule(list []model.CropSchedule, updated model.CropSchedule) []model.CropSchedule {
	out := make([]model.CropSchedule, len(list))
	for i, s := range list {
		if s.ID == updated.ID {
			out[i] = updated
		} else {
			out[i] = s
		}
	}
	return out
}

// AppendSchedule 返回追加后的新切片
func AppendSchedule(list []model.CropSchedule, created model.CropSchedule) []model.CropSchedule {
	out := make([]model.CropSchedule, 0, len(list)+1)
	out = append(out, list...)
	return append(out, created)
}

// RemoveSchedule 返回去掉指定 ID 的新切片
func RemoveSchedule(list []model.CropSchedule, id int64) []model.CropSchedule {
	out := make([]model.CropSchedule, 0, len(list))
	for _, s := range list {
		if s.ID != id {
			out = append(out, s)
		}
	}
	return out
}
