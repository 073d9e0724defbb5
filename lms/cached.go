package lms

import (
	"context"

	"github.com/magic-lib/go-plat-memo/cache"
)

// 缓存key前缀，每种查询唯一
const (
	PrefixUser    = "user"
	PrefixCourse  = "course"
	PrefixLessons = "lessons"
)

// CachedRepository 为读操作加上记忆化缓存，写操作后删除对应key。
// 返回的指针与切片在调用方之间共享，不能修改。
type CachedRepository struct {
	next    Repository
	backend cache.Backend

	userByEmail     func(context.Context, string) (*User, error)
	courseByID      func(context.Context, int64) (*Course, error)
	lessonsByCourse func(context.Context, int64) ([]Lesson, error)
}

// NewCachedRepository 包装next，opts作用于所有读操作
func NewCachedRepository(next Repository, backend cache.Backend, opts ...cache.Option) *CachedRepository {
	return &CachedRepository{
		next:            next,
		backend:         backend,
		userByEmail:     cache.WithCache(backend, PrefixUser, next.UserByEmail, opts...),
		courseByID:      cache.WithCache(backend, PrefixCourse, next.CourseByID, opts...),
		lessonsByCourse: cache.WithCache(backend, PrefixLessons, next.LessonsByCourse, opts...),
	}
}

// UserByEmail 按邮箱查询用户
func (r *CachedRepository) UserByEmail(ctx context.Context, email string) (*User, error) {
	return r.userByEmail(ctx, email)
}

// CourseByID 按id查询课程
func (r *CachedRepository) CourseByID(ctx context.Context, id int64) (*Course, error) {
	return r.courseByID(ctx, id)
}

// LessonsByCourse 列出课程的课时
func (r *CachedRepository) LessonsByCourse(ctx context.Context, courseID int64) ([]Lesson, error) {
	return r.lessonsByCourse(ctx, courseID)
}

// UpdateCourse 写入成功后删除课程缓存
func (r *CachedRepository) UpdateCourse(ctx context.Context, c *Course) error {
	if err := r.next.UpdateCourse(ctx, c); err != nil {
		return err
	}
	r.InvalidateCourse(c.ID)
	return nil
}

// InvalidateUser 用户数据变化后调用
func (r *CachedRepository) InvalidateUser(email string) {
	r.backend.Delete(cache.MustBuildKey(PrefixUser, email))
}

// InvalidateCourse 课程数据变化后调用
func (r *CachedRepository) InvalidateCourse(id int64) {
	r.backend.Delete(cache.MustBuildKey(PrefixCourse, id))
}

// InvalidateLessons 课时数据变化后调用
func (r *CachedRepository) InvalidateLessons(courseID int64) {
	r.backend.Delete(cache.MustBuildKey(PrefixLessons, courseID))
}
