package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"crop-calendar/internal/calendar"
	"crop-calendar/internal/dto"
	"crop-calendar/internal/model"
	"crop-calendar/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportEmpty        = errors.New("没有可导出的作物计划")
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - Excel 与列表使用同一投影（季节过滤 + 排序），行顺序与页面一致
//   - ICS 每条计划生成一个全天事件，UID 稳定以便日历客户端覆盖更新
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportExcel 导出计划列表为 Excel
	ExportExcel(ctx context.Context, req *dto.CropScheduleListRequest) (*bytes.Buffer, string, error)
	// ExportICS 导出计划为 iCalendar
	ExportICS(ctx context.Context, req *dto.CropScheduleListRequest) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	clock  Clock
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, clock Clock, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, clock: clock, logger: logger}
}

// load 读取并投影计划，同时返回田块名称
func (s *exportService) load(ctx context.Context, req *dto.CropScheduleListRequest) ([]model.CropSchedule, map[int64]string, error) {
	opts, filter, err := parseListRequest(req)
	if err != nil {
		return nil, nil, err
	}

	var schedules []model.CropSchedule
	var fields []model.Field
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		schedules, err = s.repo.CropSchedule.List(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		fields, err = s.repo.Field.List(gctx)
		if err != nil {
			s.logger.Warn("读取田块列表失败，导出中田块名称将留空", zap.Error(err))
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("查询作物计划失败", zap.Error(err))
		return nil, nil, err
	}

	names := model.FieldNames(fields)
	opts.FieldNames = names
	projected := calendar.Project(schedules, opts)
	if len(projected) == 0 {
		return nil, nil, ErrExportEmpty
	}
	return projected, names, nil
}

// ═══════════════════════════════════════════════════════════
// ExportExcel 导出计划列表为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 单 Sheet "作物计划"
//   - 表头：日期 | 季节 | 作物 | 品种 | 活动 | 田块 | 优先级 | 预期产量 | 备注

func (s *exportService) ExportExcel(ctx context.Context, req *dto.CropScheduleListRequest) (*bytes.Buffer, string, error) {
	schedules, names, err := s.load(ctx, req)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "作物计划"
	idx, err := f.NewSheet(sheetName)
	if err != nil {
		s.logger.Error("创建 Sheet 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	// 删除默认 Sheet1
	f.DeleteSheet("Sheet1")

	headers := []interface{}{"日期", "季节", "作物", "品种", "活动", "田块", "优先级", "预期产量", "备注"}
	widths := []float64{12, 8, 18, 16, 14, 18, 8, 12, 40}
	for i, w := range widths {
		col := colName(i)
		f.SetColWidth(sheetName, col, col, w)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#548235"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	if err := f.SetSheetRow(sheetName, "A1", &headers); err != nil {
		s.logger.Error("写入表头失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	f.SetCellStyle(sheetName, "A1", cell(colName(len(headers)-1), 1), headerStyle)

	for i, sc := range schedules {
		row := []interface{}{
			sc.Date.String(),
			string(calendar.SeasonOfDate(sc.Date.Date)),
			sc.CropName,
			sc.Variety,
			string(sc.ActivityType),
			names[sc.FieldID],
			string(sc.Priority),
			sc.ExpectedYield,
			sc.Notes,
		}
		if err := f.SetSheetRow(sheetName, cell("A", i+2), &row); err != nil {
			s.logger.Error("写入数据行失败", zap.Int("row", i+2), zap.Error(err))
			return nil, "", ErrExportGenerateFail
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("crop-schedules_%s.xlsx", s.clock.Today().String())
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// ExportICS 导出计划为 iCalendar
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportICS(ctx context.Context, req *dto.CropScheduleListRequest) (*bytes.Buffer, string, error) {
	schedules, names, err := s.load(ctx, req)
	if err != nil {
		return nil, "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//crop-calendar//crop schedules//EN")
	cal.SetXWRCalName("Crop Schedules")

	stamp := s.clock.current()
	for _, sc := range schedules {
		start := sc.Date.In(time.UTC)
		event := cal.AddEvent(fmt.Sprintf("crop-schedule-%d@crop-calendar", sc.ID))
		event.SetDtStampTime(stamp.UTC())
		event.SetAllDayStartAt(start)
		event.SetAllDayEndAt(start.AddDate(0, 0, 1))
		event.SetSummary(sc.Title())
		if name := names[sc.FieldID]; name != "" {
			event.SetLocation(name)
		}
		if desc := icsDescription(sc); desc != "" {
			event.SetDescription(desc)
		}
	}

	buf := bytes.NewBufferString(cal.Serialize())
	filename := fmt.Sprintf("crop-schedules_%s.ics", s.clock.Today().String())
	return buf, filename, nil
}

func icsDescription(sc model.CropSchedule) string {
	desc := ""
	if sc.Variety != "" {
		desc += "Variety: " + sc.Variety + "\n"
	}
	if sc.ExpectedYield != "" {
		desc += "Expected yield: " + sc.ExpectedYield + "\n"
	}
	desc += "Priority: " + string(sc.Priority)
	if sc.Notes != "" {
		desc += "\n" + sc.Notes
	}
	return desc
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
