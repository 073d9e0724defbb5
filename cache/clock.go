package cache

import "time"

// Clock 时间来源，测试时可替换
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// SystemClock 使用系统时间
var SystemClock Clock = systemClock{}
