package mysql

const insertReviewSQL = `
INSERT INTO reviews
  (title, content, rating, author, created_at)
VALUES
  (?, ?, ?, ?, ?)
`

const insertReviewsPrefix = "INSERT INTO reviews\n  (title, content, rating, author, created_at)\nVALUES "

const deleteReviewSQL = `DELETE FROM reviews WHERE id = ?`

const distinctAuthorsSQL = `SELECT DISTINCT author FROM reviews`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const selectReviewColumns = `SELECT id, title, content, rating, author, created_at FROM reviews`

const getReviewSQL = selectReviewColumns + `
WHERE id = ?
`

// List and count share the WHERE clause built by whereClause.
const listReviewsSQL = selectReviewColumns + "%s\nORDER BY id\nLIMIT ? OFFSET ?"

const countReviewsSQL = "SELECT COUNT(*) FROM reviews%s"
