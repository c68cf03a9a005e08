// Package calendar 作物农事日历核心：季节归类、月视图网格、按日索引、
// 列表投影、表单校验与重排引擎。除重排引擎外均为纯函数，
// 日期统一使用 civil.Date，不携带时间与时区。
package calendar
