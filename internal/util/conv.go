package util

import (
	"strconv"
	"time"
)

// ValidDate 判断字符串是否为 YYYY-MM-DD
func ValidDate(s string) bool {
	_, err := time.Parse(DateFormat, s)
	return err == nil
}

// Today 返回本地时区今天的日期字符串
func Today() string {
	return time.Now().Format(DateFormat)
}

// QueryInt 解析整数查询参数，缺失或非法时返回默认值
func QueryInt(raw string, def int) int {
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
