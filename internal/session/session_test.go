package session

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/samarthdata/samarth/internal/log"
)

// fakeRow returns canned scan values or an error.
type fakeRow struct {
	values []any
	err    error
}

func (r *fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		if i >= len(r.values) {
			break
		}
		switch v := d.(type) {
		case *uuid.UUID:
			*v = r.values[i].(uuid.UUID)
		case *string:
			*v = r.values[i].(string)
		}
	}
	return nil
}

// fakeQuerier records SQL and args, serving rows in order.
type fakeQuerier struct {
	rows []*fakeRow

	execSQL  []string
	execArgs [][]any
	execRows int64
	querySQL []string
}

func (f *fakeQuerier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execSQL = append(f.execSQL, sql)
	f.execArgs = append(f.execArgs, args)
	if f.execRows > 0 {
		return pgconn.NewCommandTag("DELETE 1"), nil
	}
	return pgconn.NewCommandTag("DELETE 0"), nil
}

func (f *fakeQuerier) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	f.querySQL = append(f.querySQL, sql)
	return nil, errors.New("unexpected Query")
}

func (f *fakeQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.querySQL = append(f.querySQL, sql)
	f.execArgs = append(f.execArgs, args)
	if len(f.rows) == 0 {
		return &fakeRow{err: pgx.ErrNoRows}
	}
	row := f.rows[0]
	f.rows = f.rows[1:]
	return row
}

func TestCreateAssignsID(t *testing.T) {
	t.Parallel()

	q := &fakeQuerier{rows: []*fakeRow{{}}}
	store := New(q, log.NewNop())

	sess, err := store.Create(context.Background(), "rainfall questions")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if sess.ID == uuid.Nil {
		t.Error("Create() returned nil UUID")
	}
	if sess.Title != "rainfall questions" {
		t.Errorf("Title = %q", sess.Title)
	}
	if got := q.execArgs[0][0]; got != sess.ID {
		t.Errorf("inserted id = %v, want %v", got, sess.ID)
	}
}

func TestGetNotFound(t *testing.T) {
	t.Parallel()

	store := New(&fakeQuerier{}, log.NewNop())
	_, err := store.Get(context.Background(), uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() = %v, want ErrNotFound", err)
	}
}

func TestDeleteNotFound(t *testing.T) {
	t.Parallel()

	store := New(&fakeQuerier{}, log.NewNop())
	err := store.Delete(context.Background(), uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Delete() = %v, want ErrNotFound", err)
	}
}

func TestDeleteFound(t *testing.T) {
	t.Parallel()

	q := &fakeQuerier{execRows: 1}
	store := New(q, log.NewNop())
	if err := store.Delete(context.Background(), uuid.New()); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
}

func TestAddExchangeNormalizesSources(t *testing.T) {
	t.Parallel()

	q := &fakeQuerier{rows: []*fakeRow{{}}, execRows: 1}
	store := New(q, log.NewNop())

	ex, err := store.AddExchange(context.Background(), uuid.New(), "q", "a", nil)
	if err != nil {
		t.Fatalf("AddExchange() error = %v", err)
	}
	if ex.Sources == nil || len(ex.Sources) != 0 {
		t.Errorf("Sources = %v, want empty non-nil slice", ex.Sources)
	}

	// Insert then title-bump update.
	if len(q.querySQL) != 1 || len(q.execSQL) != 1 {
		t.Fatalf("calls = %d query / %d exec, want 1/1", len(q.querySQL), len(q.execSQL))
	}
	if !strings.Contains(q.execSQL[0], "UPDATE qa_sessions") {
		t.Errorf("second statement = %q, want session update", q.execSQL[0])
	}
}

func TestTruncateTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "short passes through", in: "rainfall in Odisha", want: "rainfall in Odisha"},
		{name: "exact limit passes through", in: strings.Repeat("a", maxTitleLen), want: strings.Repeat("a", maxTitleLen)},
		{name: "long gets ellipsis", in: strings.Repeat("b", 200), want: strings.Repeat("b", maxTitleLen-3) + "..."},
		// "वर" is 6 bytes; the naive byte cut at 77 would land mid-rune.
		{name: "devanagari cut on rune boundary", in: strings.Repeat("वर", 40), want: strings.Repeat("वर", 12) + "व" + "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := truncateTitle(tt.in)
			if got != tt.want {
				t.Errorf("truncateTitle() = %q, want %q", got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("truncateTitle() = %q, invalid UTF-8", got)
			}
		})
	}
}
