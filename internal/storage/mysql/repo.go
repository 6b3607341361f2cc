package mysql

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	mysqldrv "github.com/go-sql-driver/mysql"

	"github.com/Nazarii-Pak/front-row-labs-back-end/internal/adapters/observability"
	"github.com/Nazarii-Pak/front-row-labs-back-end/internal/domain"
)

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repo) Create(ctx context.Context, in domain.ReviewInput, createdAt time.Time) (rv domain.Review, err error) {
	defer observe("create", time.Now(), &err)

	res, err := r.db.ExecContext(ctx, insertReviewSQL, in.Title, in.Content, in.Rating, in.Author, createdAt.UTC())
	if err != nil {
		return domain.Review{}, classify("create", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Review{}, classify("create", err)
	}
	return domain.Review{
		ID:        id,
		Title:     in.Title,
		Content:   in.Content,
		Rating:    in.Rating,
		Author:    in.Author,
		CreatedAt: createdAt.UTC(),
	}, nil
}

func (r *Repo) CreateMany(ctx context.Context, in []domain.ReviewInput, createdAt time.Time) (err error) {
	if len(in) == 0 {
		return nil
	}
	defer observe("create_many", time.Now(), &err)

	values := make([]string, 0, len(in))
	args := make([]any, 0, len(in)*5)
	for _, rv := range in {
		values = append(values, "(?,?,?,?,?)")
		args = append(args, rv.Title, rv.Content, rv.Rating, rv.Author, createdAt.UTC())
	}
	// one statement so auto-increment ids follow input order
	if _, err := r.db.ExecContext(ctx, insertReviewsPrefix+strings.Join(values, ","), args...); err != nil {
		return classify("create_many", err)
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, id int64) (rv domain.Review, err error) {
	defer observe("get", time.Now(), &err)

	rv, err = scanReview(r.db.QueryRowContext(ctx, getReviewSQL, id))
	if err != nil {
		return domain.Review{}, classify("get", err)
	}
	return rv, nil
}

func (r *Repo) List(ctx context.Context, f domain.ReviewFilter) (out []domain.Review, err error) {
	defer observe("list", time.Now(), &err)

	where, args := whereClause(f)
	args = append(args, f.Limit(), f.Offset())
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(listReviewsSQL, where), args...)
	if err != nil {
		return nil, classify("list", err)
	}
	defer rows.Close()

	out = make([]domain.Review, 0, f.Limit())
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, classify("list", err)
		}
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list", err)
	}
	return out, nil
}

func (r *Repo) Count(ctx context.Context, f domain.ReviewFilter) (n int64, err error) {
	defer observe("count", time.Now(), &err)

	where, args := whereClause(f)
	if err := r.db.QueryRowContext(ctx, fmt.Sprintf(countReviewsSQL, where), args...).Scan(&n); err != nil {
		return 0, classify("count", err)
	}
	return n, nil
}

func (r *Repo) Update(ctx context.Context, id int64, p domain.ReviewPatch) (rv domain.Review, err error) {
	defer observe("update", time.Now(), &err)

	if !p.Empty() {
		sets, args := setClause(p)
		args = append(args, id)
		q := "UPDATE reviews SET " + strings.Join(sets, ", ") + " WHERE id = ?"
		if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
			return domain.Review{}, classify("update", err)
		}
	}
	// MySQL reports 0 affected rows for no-op updates, so existence is
	// decided by reading the row back.
	rv, err = scanReview(r.db.QueryRowContext(ctx, getReviewSQL, id))
	if err != nil {
		return domain.Review{}, classify("update", err)
	}
	return rv, nil
}

func (r *Repo) Delete(ctx context.Context, id int64) (err error) {
	defer observe("delete", time.Now(), &err)

	res, err := r.db.ExecContext(ctx, deleteReviewSQL, id)
	if err != nil {
		return classify("delete", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return classify("delete", err)
	}
	if n == 0 {
		return domain.NewStoreError("delete", domain.KindNotFound, domain.ErrNotFound)
	}
	return nil
}

func (r *Repo) DistinctAuthors(ctx context.Context) (out []string, err error) {
	defer observe("distinct_authors", time.Now(), &err)

	rows, err := r.db.QueryContext(ctx, distinctAuthorsSQL)
	if err != nil {
		return nil, classify("distinct_authors", err)
	}
	defer rows.Close()

	out = []string{}
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, classify("distinct_authors", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("distinct_authors", err)
	}
	return out, nil
}

// ---- helpers ----

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReview(s rowScanner) (domain.Review, error) {
	var rv domain.Review
	if err := s.Scan(&rv.ID, &rv.Title, &rv.Content, &rv.Rating, &rv.Author, &rv.CreatedAt); err != nil {
		return domain.Review{}, err
	}
	rv.CreatedAt = rv.CreatedAt.UTC()
	return rv, nil
}

func whereClause(f domain.ReviewFilter) (string, []any) {
	var conds []string
	var args []any
	if f.Author != nil {
		conds = append(conds, "author = ?")
		args = append(args, *f.Author)
	}
	if f.Rating != nil {
		conds = append(conds, "rating = ?")
		args = append(args, *f.Rating)
	}
	if f.Search != nil {
		conds = append(conds, "title LIKE ?")
		args = append(args, "%"+EscapeLike(*f.Search)+"%")
	}
	if len(conds) == 0 {
		return "", nil
	}
	return "\nWHERE " + strings.Join(conds, " AND "), args
}

func setClause(p domain.ReviewPatch) ([]string, []any) {
	var sets []string
	var args []any
	if p.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *p.Title)
	}
	if p.Content != nil {
		sets = append(sets, "content = ?")
		args = append(args, *p.Content)
	}
	if p.Rating != nil {
		sets = append(sets, "rating = ?")
		args = append(args, *p.Rating)
	}
	if p.Author != nil {
		sets = append(sets, "author = ?")
		args = append(args, *p.Author)
	}
	return sets, args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike quotes LIKE wildcards so search terms match literally.
func EscapeLike(s string) string { return likeEscaper.Replace(s) }

func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	return domain.NewStoreError(op, kindOf(err), err)
}

func kindOf(err error) domain.ErrorKind {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.KindNotFound
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, driver.ErrBadConn) || errors.Is(err, mysqldrv.ErrInvalidConn) ||
		errors.Is(err, sql.ErrConnDone) {
		return domain.KindUnavailable
	}
	var me *mysqldrv.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case 1062: // ER_DUP_ENTRY
			return domain.KindConflict
		case 1264, 1366, 1406, 1452, 3819: // out of range, bad value, too long, FK, CHECK
			return domain.KindInvalid
		case 1040, 1205, 1213: // too many connections, lock wait timeout, deadlock
			return domain.KindUnavailable
		}
		return domain.KindInternal
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return domain.KindUnavailable
	}
	return domain.KindInternal
}

func observe(op string, start time.Time, err *error) {
	observability.ObserveStore("mysql", op, *err, time.Since(start))
}
