package lms

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLConfig 数据库配置，SqlDB优先
type MySQLConfig struct {
	DSN   string
	SqlDB *sql.DB
}

// MySQLRepository 基于MySQL的实现
type MySQLRepository struct {
	db *sql.DB
}

// NewMySQLRepository 创建MySQL数据访问实例
func NewMySQLRepository(cfg *MySQLConfig) (*MySQLRepository, error) {
	if cfg == nil {
		return nil, errors.New("lms: mysql 配置为空")
	}
	if cfg.SqlDB == nil && cfg.DSN != "" {
		sqlDB, err := sql.Open("mysql", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("初始化数据库连接失败: %w", err)
		}
		cfg.SqlDB = sqlDB
	}
	if cfg.SqlDB == nil {
		return nil, errors.New("lms: 请配置 dsn 或 SqlDB")
	}
	return &MySQLRepository{db: cfg.SqlDB}, nil
}

// UserByEmail 按邮箱查询用户
func (r *MySQLRepository) UserByEmail(ctx context.Context, email string) (*User, error) {
	u := new(User)
	err := r.db.QueryRowContext(ctx,
		"SELECT id, email, name, role FROM users WHERE email = ? LIMIT 1", email).
		Scan(&u.ID, &u.Email, &u.Name, &u.Role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("查询用户 %q 失败: %w", email, err)
	}
	return u, nil
}

// CourseByID 按id查询课程
func (r *MySQLRepository) CourseByID(ctx context.Context, id int64) (*Course, error) {
	c := new(Course)
	err := r.db.QueryRowContext(ctx,
		"SELECT id, slug, title, published FROM courses WHERE id = ? LIMIT 1", id).
		Scan(&c.ID, &c.Slug, &c.Title, &c.Published)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("查询课程 %d 失败: %w", id, err)
	}
	return c, nil
}

// LessonsByCourse 按顺序列出课程的课时
func (r *MySQLRepository) LessonsByCourse(ctx context.Context, courseID int64) ([]Lesson, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, course_id, position, title FROM lessons WHERE course_id = ? ORDER BY position", courseID)
	if err != nil {
		return nil, fmt.Errorf("查询课程 %d 的课时失败: %w", courseID, err)
	}
	defer rows.Close()

	lessons := make([]Lesson, 0)
	for rows.Next() {
		var l Lesson
		if err := rows.Scan(&l.ID, &l.CourseID, &l.Position, &l.Title); err != nil {
			return nil, fmt.Errorf("读取课时失败: %w", err)
		}
		lessons = append(lessons, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("遍历课程 %d 的课时失败: %w", courseID, err)
	}
	return lessons, nil
}

// UpdateCourse 更新课程
func (r *MySQLRepository) UpdateCourse(ctx context.Context, c *Course) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE courses SET slug = ?, title = ?, published = ? WHERE id = ?",
		c.Slug, c.Title, c.Published, c.ID)
	if err != nil {
		return fmt.Errorf("更新课程 %d 失败: %w", c.ID, err)
	}
	return nil
}
