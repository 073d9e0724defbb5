package lms_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/magic-lib/go-plat-memo/lms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	userQuery    = "SELECT id, email, name, role FROM users WHERE email = ? LIMIT 1"
	courseQuery  = "SELECT id, slug, title, published FROM courses WHERE id = ? LIMIT 1"
	lessonsQuery = "SELECT id, course_id, position, title FROM lessons WHERE course_id = ? ORDER BY position"
	updateCourse = "UPDATE courses SET slug = ?, title = ?, published = ? WHERE id = ?"
)

func newMockRepository(t *testing.T) (*lms.MySQLRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo, err := lms.NewMySQLRepository(&lms.MySQLConfig{SqlDB: db})
	require.NoError(t, err)
	return repo, mock
}

func TestNewMySQLRepository_Config(t *testing.T) {
	_, err := lms.NewMySQLRepository(nil)
	assert.EqualError(t, err, "lms: mysql 配置为空")
	_, err = lms.NewMySQLRepository(&lms.MySQLConfig{})
	assert.EqualError(t, err, "lms: 请配置 dsn 或 SqlDB")
}

func TestMySQLRepository_UserByEmail(t *testing.T) {
	repo, mock := newMockRepository(t)
	mock.ExpectQuery(regexp.QuoteMeta(userQuery)).
		WithArgs("a@b.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "role"}).
			AddRow(int64(1), "a@b.com", "Ann", "student"))

	u, err := repo.UserByEmail(context.Background(), "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, &lms.User{ID: 1, Email: "a@b.com", Name: "Ann", Role: "student"}, u)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLRepository_NotFound(t *testing.T) {
	repo, mock := newMockRepository(t)
	mock.ExpectQuery(regexp.QuoteMeta(userQuery)).
		WithArgs("nobody@b.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "role"}))
	mock.ExpectQuery(regexp.QuoteMeta(courseQuery)).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "slug", "title", "published"}))

	_, err := repo.UserByEmail(context.Background(), "nobody@b.com")
	assert.ErrorIs(t, err, lms.ErrNotFound)
	_, err = repo.CourseByID(context.Background(), 9)
	assert.ErrorIs(t, err, lms.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLRepository_QueryError(t *testing.T) {
	repo, mock := newMockRepository(t)
	errConn := errors.New("connection reset")
	mock.ExpectQuery(regexp.QuoteMeta(courseQuery)).
		WithArgs(int64(3)).
		WillReturnError(errConn)

	_, err := repo.CourseByID(context.Background(), 3)
	assert.ErrorIs(t, err, errConn)
	assert.NotErrorIs(t, err, lms.ErrNotFound)
}

func TestMySQLRepository_CourseAndLessons(t *testing.T) {
	repo, mock := newMockRepository(t)
	mock.ExpectQuery(regexp.QuoteMeta(courseQuery)).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "slug", "title", "published"}).
			AddRow(int64(3), "go-101", "Go 101", true))
	mock.ExpectQuery(regexp.QuoteMeta(lessonsQuery)).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "course_id", "position", "title"}).
			AddRow(int64(10), int64(3), int64(1), "Setup").
			AddRow(int64(11), int64(3), int64(2), "Types"))

	c, err := repo.CourseByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, &lms.Course{ID: 3, Slug: "go-101", Title: "Go 101", Published: true}, c)

	lessons, err := repo.LessonsByCourse(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, []lms.Lesson{
		{ID: 10, CourseID: 3, Position: 1, Title: "Setup"},
		{ID: 11, CourseID: 3, Position: 2, Title: "Types"},
	}, lessons)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLRepository_UpdateCourse(t *testing.T) {
	repo, mock := newMockRepository(t)
	mock.ExpectExec(regexp.QuoteMeta(updateCourse)).
		WithArgs("go-101", "Go 101 (2nd ed.)", false, int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateCourse(context.Background(), &lms.Course{ID: 3, Slug: "go-101", Title: "Go 101 (2nd ed.)"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
