// Package lms 课程系统的数据访问层
package lms

import (
	"context"
	"errors"
)

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("lms: 记录不存在")

// Repository 读多写少的数据访问接口
type Repository interface {
	UserByEmail(ctx context.Context, email string) (*User, error)
	CourseByID(ctx context.Context, id int64) (*Course, error)
	LessonsByCourse(ctx context.Context, courseID int64) ([]Lesson, error)
	UpdateCourse(ctx context.Context, c *Course) error
}

var (
	_ Repository = (*MySQLRepository)(nil)
	_ Repository = (*CachedRepository)(nil)
)
