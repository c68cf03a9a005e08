package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"crop-calendar/config"
	pkgerrors "crop-calendar/pkg/errors"
)

// ── 远端记录服务客户端 ──────────────────────────────────────
//
// 记录服务按表暴露通用 CRUD：
//   POST   /api/v1/tables/{table}/records/query   条件查询
//   GET    /api/v1/tables/{table}/records/{id}    单条
//   POST   /api/v1/tables/{table}/records         批量创建
//   PATCH  /api/v1/tables/{table}/records         批量局部更新
//   DELETE /api/v1/tables/{table}/records         按 RecordIds 删除
//
// 列名统一带 _c 后缀，系统列为 Id / Name。
// ─────────────────────────────────────────────────────────────

const (
	defaultTimeout  = 10 * time.Second
	maxResponseSize = 10 * 1024 * 1024 // 10MB
)

// Condition 查询条件
type Condition struct {
	FieldName string        `json:"FieldName"`
	Operator  string        `json:"Operator"`
	Values    []interface{} `json:"Values"`
}

// EqualTo 构造等值条件
func EqualTo(field string, value interface{}) Condition {
	return Condition{FieldName: field, Operator: "EqualTo", Values: []interface{}{value}}
}

type fieldRef struct {
	Field struct {
		Name string `json:"Name"`
	} `json:"field"`
}

// Query 查询参数
type Query struct {
	Fields []string
	Where  []Condition
}

func (q Query) MarshalJSON() ([]byte, error) {
	fields := make([]fieldRef, len(q.Fields))
	for i, f := range q.Fields {
		fields[i].Field.Name = f
	}
	return json.Marshal(struct {
		Fields []fieldRef   `json:"fields"`
		Where  []Condition `json:"where,omitempty"`
	}{fields, q.Where})
}

// envelope 记录服务统一响应
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Results []result        `json:"results"`
}

type result struct {
	Success    bool            `json:"success"`
	StatusCode int             `json:"statusCode"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Errors     []fieldError    `json:"errors"`
}

// fieldError 记录级字段错误
type fieldError struct {
	FieldLabel string `json:"fieldLabel"`
	Message    string `json:"message"`
}

// Client 记录服务 HTTP 客户端，可被多个表的 Repository 共享
type Client struct {
	baseURL   string
	projectID string
	publicKey string
	http      *http.Client
	logger    *zap.Logger
}

// NewClient 创建记录服务客户端
func NewClient(cfg *config.RemoteConfig, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		projectID: cfg.ProjectID,
		publicKey: cfg.PublicKey,
		http:      &http.Client{Timeout: timeout},
		logger:    logger,
	}
}

func (c *Client) recordsURL(table string) string {
	return fmt.Sprintf("%s/api/v1/tables/%s/records", c.baseURL, table)
}

// Query 条件查询，out 为目标切片指针
func (c *Client) Query(ctx context.Context, table string, q Query, out interface{}) error {
	env, err := c.do(ctx, http.MethodPost, c.recordsURL(table)+"/query", q)
	if err != nil {
		return err
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("解析 %s 查询结果: %w: %v", table, pkgerrors.ErrStoreUnavailable, err)
	}
	return nil
}

// Get 按 ID 读取单条记录
func (c *Client) Get(ctx context.Context, table string, id int64, out interface{}) error {
	env, err := c.do(ctx, http.MethodGet, fmt.Sprintf("%s/%d", c.recordsURL(table), id), nil)
	if err != nil {
		return err
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return pkgerrors.ErrNotFound
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("解析 %s/%d: %w: %v", table, id, pkgerrors.ErrStoreUnavailable, err)
	}
	return nil
}

// Create 创建单条记录，out 接收服务端回写的完整记录
func (c *Client) Create(ctx context.Context, table string, record interface{}, out interface{}) error {
	return c.writeOne(ctx, http.MethodPost, table, record, out)
}

// Update 更新单条记录，record 必须包含 Id；只发送 record 中出现的列
func (c *Client) Update(ctx context.Context, table string, record interface{}, out interface{}) error {
	return c.writeOne(ctx, http.MethodPatch, table, record, out)
}

// Delete 删除单条记录；记录不存在时返回 false
func (c *Client) Delete(ctx context.Context, table string, id int64) (bool, error) {
	body := map[string]interface{}{"RecordIds": []int64{id}}
	env, err := c.do(ctx, http.MethodDelete, c.recordsURL(table), body)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	for _, r := range env.Results {
		if r.Success {
			continue
		}
		err := recordFailure(fmt.Sprintf("删除 %s/%d", table, id), r)
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return len(env.Results) > 0, nil
}

func (c *Client) writeOne(ctx context.Context, method, table string, record interface{}, out interface{}) error {
	body := map[string]interface{}{"records": []interface{}{record}}
	env, err := c.do(ctx, method, c.recordsURL(table), body)
	if err != nil {
		return err
	}
	if len(env.Results) == 0 {
		return fmt.Errorf("写入 %s: %w: 响应缺少 results", table, pkgerrors.ErrStoreUnavailable)
	}
	r := env.Results[0]
	if !r.Success {
		return recordFailure("写入 "+table, r)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(r.Data, out); err != nil {
		return fmt.Errorf("解析 %s 写入结果: %w: %v", table, pkgerrors.ErrStoreUnavailable, err)
	}
	return nil
}

// recordFailure 单条记录失败的分类。
// 请求本身已成功送达，因此不归为 ErrStoreUnavailable：
// 记录不存在 → ErrNotFound，其余（字段非法、约束冲突）→ ErrRecordRejected
func recordFailure(op string, r result) error {
	if r.StatusCode == http.StatusNotFound || isNotFoundMessage(r.Message) {
		return fmt.Errorf("%s: %w", op, pkgerrors.ErrNotFound)
	}
	detail := r.Message
	for _, fe := range r.Errors {
		detail += "; " + fe.FieldLabel + ": " + fe.Message
	}
	return fmt.Errorf("%s: %w: %s", op, pkgerrors.ErrRecordRejected, detail)
}

func isNotFoundMessage(msg string) bool {
	msg = strings.ToLower(msg)
	return strings.Contains(msg, "not found") || strings.Contains(msg, "does not exist")
}

// do 发送请求并解析响应信封。
// 传输失败、非 2xx、信封 success=false 统一归为 ErrStoreUnavailable；404 归为 ErrNotFound。
// 记录级结果由调用方经 recordFailure 分类。
func (c *Client) do(ctx context.Context, method, url string, body interface{}) (*envelope, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("编码请求体失败: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("构造请求失败: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Project-ID", c.projectID)
	if c.publicKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.publicKey)
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.Warn("记录服务请求失败",
			zap.String("method", method),
			zap.String("url", url),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%s %s: %w: %v", method, url, pkgerrors.ErrStoreUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, pkgerrors.ErrNotFound
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %w: %v", pkgerrors.ErrStoreUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("记录服务返回错误状态",
			zap.String("method", method),
			zap.String("url", url),
			zap.Int("status", resp.StatusCode),
			zap.String("request_id", requestID),
		)
		return nil, fmt.Errorf("%s %s: %w: HTTP %d", method, url, pkgerrors.ErrStoreUnavailable, resp.StatusCode)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("解析响应失败: %w: %v", pkgerrors.ErrStoreUnavailable, err)
	}
	if !env.Success {
		return nil, fmt.Errorf("%s %s: %w: %s", method, url, pkgerrors.ErrStoreUnavailable, env.Message)
	}
	return &env, nil
}
