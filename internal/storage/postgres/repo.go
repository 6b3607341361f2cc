// Package postgres is the gorm-backed review store.
package postgres

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Nazarii-Pak/front-row-labs-back-end/internal/adapters/observability"
	"github.com/Nazarii-Pak/front-row-labs-back-end/internal/domain"
)

// reviewRow is the table model. Kept apart from domain.Review so gorm tags
// stay out of the domain package.
type reviewRow struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	Title     string    `gorm:"not null"`
	Content   string    `gorm:"type:text;not null"`
	Rating    int       `gorm:"not null;check:reviews_rating_range,rating >= 1 AND rating <= 5"`
	Author    string    `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"not null;default:now()"`
}

func (reviewRow) TableName() string { return "reviews" }

func (r reviewRow) toDomain() domain.Review {
	return domain.Review{
		ID:        r.ID,
		Title:     r.Title,
		Content:   r.Content,
		Rating:    r.Rating,
		Author:    r.Author,
		CreatedAt: r.CreatedAt.UTC(),
	}
}

type Repo struct{ db *gorm.DB }

func New(db *gorm.DB) *Repo { return &Repo{db: db} }

// Open connects with the pgx-backed gorm driver and sizes the pool.
func Open(dsn string, maxOpen int) (*gorm.DB, error) {
	db, err := gorm.Open(pgdriver.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if maxOpen > 0 {
		sqlDB.SetMaxOpenConns(maxOpen)
		sqlDB.SetMaxIdleConns(maxOpen)
	}
	return db, nil
}

// Migrate creates or updates the reviews table from the row model.
func Migrate(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).AutoMigrate(&reviewRow{})
}

func (r *Repo) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *Repo) Create(ctx context.Context, in domain.ReviewInput, createdAt time.Time) (rv domain.Review, err error) {
	defer observe("create", time.Now(), &err)

	row := reviewRow{Title: in.Title, Content: in.Content, Rating: in.Rating, Author: in.Author, CreatedAt: createdAt.UTC()}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return domain.Review{}, classify("create", err)
	}
	return row.toDomain(), nil
}

func (r *Repo) CreateMany(ctx context.Context, in []domain.ReviewInput, createdAt time.Time) (err error) {
	if len(in) == 0 {
		return nil
	}
	defer observe("create_many", time.Now(), &err)

	rows := make([]reviewRow, 0, len(in))
	for _, rv := range in {
		rows = append(rows, reviewRow{Title: rv.Title, Content: rv.Content, Rating: rv.Rating, Author: rv.Author, CreatedAt: createdAt.UTC()})
	}
	// a single multi-row INSERT keeps serial ids in input order
	if err := r.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return classify("create_many", err)
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, id int64) (rv domain.Review, err error) {
	defer observe("get", time.Now(), &err)

	var row reviewRow
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return domain.Review{}, classify("get", err)
	}
	return row.toDomain(), nil
}

func (r *Repo) List(ctx context.Context, f domain.ReviewFilter) (out []domain.Review, err error) {
	defer observe("list", time.Now(), &err)

	var rows []reviewRow
	err = filtered(r.db.WithContext(ctx).Model(&reviewRow{}), f).
		Order("id").
		Limit(f.Limit()).
		Offset(f.Offset()).
		Find(&rows).Error
	if err != nil {
		return nil, classify("list", err)
	}
	out = make([]domain.Review, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *Repo) Count(ctx context.Context, f domain.ReviewFilter) (n int64, err error) {
	defer observe("count", time.Now(), &err)

	if err := filtered(r.db.WithContext(ctx).Model(&reviewRow{}), f).Count(&n).Error; err != nil {
		return 0, classify("count", err)
	}
	return n, nil
}

func (r *Repo) Update(ctx context.Context, id int64, p domain.ReviewPatch) (rv domain.Review, err error) {
	defer observe("update", time.Now(), &err)

	db := r.db.WithContext(ctx)
	if !p.Empty() {
		res := db.Model(&reviewRow{}).Where("id = ?", id).Updates(patchColumns(p))
		if res.Error != nil {
			return domain.Review{}, classify("update", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.Review{}, domain.NewStoreError("update", domain.KindNotFound, domain.ErrNotFound)
		}
	}
	var row reviewRow
	if err := db.Where("id = ?", id).First(&row).Error; err != nil {
		return domain.Review{}, classify("update", err)
	}
	return row.toDomain(), nil
}

func (r *Repo) Delete(ctx context.Context, id int64) (err error) {
	defer observe("delete", time.Now(), &err)

	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&reviewRow{})
	if res.Error != nil {
		return classify("delete", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NewStoreError("delete", domain.KindNotFound, domain.ErrNotFound)
	}
	return nil
}

func (r *Repo) DistinctAuthors(ctx context.Context) (out []string, err error) {
	defer observe("distinct_authors", time.Now(), &err)

	out = []string{}
	if err := r.db.WithContext(ctx).Model(&reviewRow{}).Distinct("author").Pluck("author", &out).Error; err != nil {
		return nil, classify("distinct_authors", err)
	}
	return out, nil
}

// ---- helpers ----

func filtered(q *gorm.DB, f domain.ReviewFilter) *gorm.DB {
	if f.Author != nil {
		q = q.Where("author = ?", *f.Author)
	}
	if f.Rating != nil {
		q = q.Where("rating = ?", *f.Rating)
	}
	if f.Search != nil {
		q = q.Where("title LIKE ?", "%"+escapeLike(*f.Search)+"%")
	}
	return q
}

// patchColumns uses a map so gorm writes only present fields, zero values included.
func patchColumns(p domain.ReviewPatch) map[string]any {
	m := map[string]any{}
	if p.Title != nil {
		m["title"] = *p.Title
	}
	if p.Content != nil {
		m["content"] = *p.Content
	}
	if p.Rating != nil {
		m["rating"] = *p.Rating
	}
	if p.Author != nil {
		m["author"] = *p.Author
	}
	return m
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }

func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	return domain.NewStoreError(op, kindOf(err), err)
}

func kindOf(err error) domain.ErrorKind {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.KindNotFound
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, driver.ErrBadConn) {
		return domain.KindUnavailable
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "23505": // unique_violation
			return domain.KindConflict
		case strings.HasPrefix(pgErr.Code, "23"), strings.HasPrefix(pgErr.Code, "22"):
			return domain.KindInvalid
		case strings.HasPrefix(pgErr.Code, "08"), strings.HasPrefix(pgErr.Code, "53"), strings.HasPrefix(pgErr.Code, "57P"):
			return domain.KindUnavailable
		}
		return domain.KindInternal
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return domain.KindUnavailable
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return domain.KindUnavailable
	}
	return domain.KindInternal
}

func observe(op string, start time.Time, err *error) {
	observability.ObserveStore("postgres", op, *err, time.Since(start))
}
