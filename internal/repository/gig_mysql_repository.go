package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/gig-board/internal/model"
)

// mysqlNoLimit is the documented way to express OFFSET without LIMIT in MySQL.
const mysqlNoLimit = "18446744073709551615"

// gigsTableDDL creates the gigs table. The auto-increment seq column gives
// a stable insertion ("natural") order independent of the uuid primary key.
const gigsTableDDL = `CREATE TABLE IF NOT EXISTS gigs (
	seq           BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
	id            CHAR(36)     NOT NULL,
	title         VARCHAR(255) NOT NULL,
	price         VARCHAR(64)  NOT NULL,
	description   TEXT         NOT NULL,
	contact_phone VARCHAR(64)  NOT NULL,
	contact_email VARCHAR(255) NOT NULL,
	contact_name  VARCHAR(255) NOT NULL,
	location      VARCHAR(255) NOT NULL,
	category      VARCHAR(255) NOT NULL DEFAULT '',
	created_at    DATETIME(6)  NOT NULL,
	PRIMARY KEY (seq),
	UNIQUE KEY uq_gigs_id (id),
	KEY idx_gigs_location (location),
	KEY idx_gigs_category (category),
	KEY idx_gigs_created_at (created_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

// MySQLGigRepo stores gigs in a relational table for deployments that do
// not run a document store. It honours the same FindQuery contract.
type MySQLGigRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewMySQLGigRepo constructs a MySQLGigRepo with the provided DB handle.
func NewMySQLGigRepo(db *sql.DB) *MySQLGigRepo {
	return &MySQLGigRepo{db: db, now: time.Now}
}

// EnsureSchema creates the gigs table when it does not exist yet.
func (r *MySQLGigRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, gigsTableDDL)
	return err
}

// Insert writes g as a new row, assigning a random uuid and the creation
// time. Both are written back to g on success.
func (r *MySQLGigRepo) Insert(ctx context.Context, g *model.Gig) error {
	const q = `INSERT INTO gigs
		(id, title, price, description, contact_phone, contact_email, contact_name, location, category, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	id := uuid.NewString()
	createdAt := r.now().UTC().Truncate(time.Microsecond)
	res, err := r.db.ExecContext(ctx, q, id, g.Title, g.Price, g.Description,
		g.ContactPhone, g.ContactEmail, g.ContactName, g.Location, g.Category, createdAt)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil || n != 1 {
		return ErrNotPersisted
	}
	g.ID = id
	g.CreatedAt = createdAt
	return nil
}

// Find runs q as a single SELECT and scans every row.
func (r *MySQLGigRepo) Find(ctx context.Context, q FindQuery) ([]*model.Gig, error) {
	query, args, err := mysqlFind(q)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Gig{}
	for rows.Next() {
		g := new(model.Gig)
		if err := rows.Scan(&g.ID, &g.Title, &g.Price, &g.Description, &g.ContactPhone,
			&g.ContactEmail, &g.ContactName, &g.Location, &g.Category, &g.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// mysqlFind builds the SELECT for q. Filter columns come from the
// filterableFields whitelist, values are always bound as arguments.
func mysqlFind(q FindQuery) (string, []any, error) {
	if err := q.validate(); err != nil {
		return "", nil, fmt.Errorf("mysql find: %w", err)
	}
	fields := make([]string, 0, len(q.Filter))
	for k := range q.Filter {
		fields = append(fields, k)
	}
	sort.Strings(fields) // deterministic SQL text

	where := []string{}
	args := []any{}
	for _, f := range fields {
		where = append(where, f+" = ?")
		args = append(args, q.Filter[f])
	}
	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	order := "seq ASC"
	if q.NewestFirst {
		order = "created_at DESC, seq DESC"
	}

	var b strings.Builder
	b.WriteString(`SELECT id, title, price, description, contact_phone, contact_email, contact_name, location, category, created_at FROM gigs WHERE `)
	b.WriteString(cond)
	b.WriteString(" ORDER BY ")
	b.WriteString(order)
	switch {
	case q.Limit > 0:
		b.WriteString(" LIMIT ? OFFSET ?")
		args = append(args, q.Limit, q.Skip)
	case q.Skip > 0:
		b.WriteString(" LIMIT " + mysqlNoLimit + " OFFSET ?")
		args = append(args, q.Skip)
	}
	return b.String(), args, nil
}
