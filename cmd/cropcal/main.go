// cropcal 是作物农事日历的命令行视图。
// 每个进程持有一份本地 Board，改期成功后直接由 Board 重新渲染，不回源查询。
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"crop-calendar/config"
	"crop-calendar/internal/calendar"
	"crop-calendar/internal/model"
	"crop-calendar/internal/service"
	"crop-calendar/internal/store"
	pkgerrors "crop-calendar/pkg/errors"
	applogger "crop-calendar/pkg/logger"
)

// app 命令共享的运行时状态
type app struct {
	cfg         *config.Config
	logger      *zap.Logger
	store       *store.Store
	svc         *service.Service
	rescheduler *calendar.Rescheduler
	clock       service.Clock
	board       *calendar.Board

	configPath string
	verbose    bool
}

// init 按配置装配存储端与服务；测试中可预先注入 store
func (a *app) init() error {
	if a.cfg == nil {
		cfg, err := config.Load(a.configPath)
		if err != nil {
			return err
		}
		a.cfg = cfg
	}
	if a.logger == nil {
		logCfg := a.cfg.Log
		if !a.verbose {
			logCfg.Level = "error"
		}
		logger, err := applogger.NewLogger(&logCfg)
		if err != nil {
			return fmt.Errorf("初始化日志失败: %w", err)
		}
		a.logger = logger
	}
	if a.store == nil {
		st, err := store.Open(a.cfg, a.logger)
		if err != nil {
			return err
		}
		a.store = st
	}
	a.svc = service.NewService(a.cfg, a.store.Repo, a.logger)
	a.rescheduler = calendar.NewRescheduler(a.store.Repo.CropSchedule, a.logger)
	a.clock = service.NewClock(a.cfg.Calendar)
	return nil
}

func (a *app) close() {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	if a.store != nil {
		_ = a.store.Close()
	}
}

// loadBoard 读取一次计划到本地 Board；进程内后续渲染只读 Board
func (a *app) loadBoard(ctx context.Context, filter model.ScheduleFilter) (*calendar.Board, error) {
	if a.board != nil {
		return a.board, nil
	}
	list, err := a.store.Repo.CropSchedule.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	a.board = calendar.NewBoard(list)
	return a.board, nil
}

// fieldNames 田块名称；读取失败时返回空表
func (a *app) fieldNames(ctx context.Context) map[int64]string {
	fields, err := a.store.Repo.Field.List(ctx)
	if err != nil {
		a.logger.Warn("读取田块列表失败", zap.Error(err))
		return map[int64]string{}
	}
	return model.FieldNames(fields)
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "cropcal",
		Short:         "Crop schedule calendar",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file path")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log at the configured level instead of errors only")

	root.AddCommand(
		newMonthCmd(a),
		newListCmd(a),
		newAddCmd(a),
		newRescheduleCmd(a),
		newDropCmd(a),
		newDeleteCmd(a),
		newAlertsCmd(a),
		newExportCmd(a),
	)
	return root
}

func main() {
	a := &app{}
	err := newRootCmd(a).Execute()
	a.close()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", describeError(err))
		os.Exit(1)
	}
}

// describeError 将存储与校验错误转换为可读提示
func describeError(err error) string {
	if fields, ok := pkgerrors.IsValidation(err); ok {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		msgs := make([]string, 0, len(keys))
		for _, k := range keys {
			msgs = append(msgs, fmt.Sprintf("%s: %s", k, fields[k]))
		}
		return strings.Join(msgs, "; ")
	}
	switch {
	case errors.Is(err, service.ErrCropScheduleNotFound), errors.Is(err, pkgerrors.ErrNotFound):
		return "schedule not found (it may have been deleted elsewhere)"
	case errors.Is(err, pkgerrors.ErrStoreUnavailable):
		return "store unavailable, try again later"
	case errors.Is(err, calendar.ErrBlankCell):
		return "cannot drop onto a blank cell"
	case errors.Is(err, calendar.ErrCanceledAfterCommit):
		return "cancelled after the new date was saved; reload to see it"
	case errors.Is(err, pkgerrors.ErrRecordRejected):
		return "the store rejected the record: " + err.Error()
	default:
		return err.Error()
	}
}
