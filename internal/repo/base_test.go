package repo

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	return conn
}

func TestBaseDB(t *testing.T) {
	conn := openSQLite(t)
	base := NewBase(conn)

	if base.db != conn {
		t.Fatal("NewBase did not retain the connection")
	}
	if got := base.DB(nil); got != conn {
		t.Fatal("nil context should return the raw connection")
	}

	ctx := context.WithValue(context.Background(), struct{}{}, "v")
	bound := base.DB(ctx)
	if bound == nil || bound.Statement == nil {
		t.Fatal("expected a session bound to the context")
	}
	if bound.Statement.Context != ctx {
		t.Fatalf("context did not flow through, got %v", bound.Statement.Context)
	}
}

func TestBaseConn(t *testing.T) {
	conn := openSQLite(t)
	base := NewBase(conn)
	ctx := context.Background()

	tx := conn.Session(&gorm.Session{})
	got := base.Conn(ctx, tx)
	if got == nil {
		t.Fatal("expected a connection")
	}
	if got.Statement.Context != ctx {
		t.Fatal("transaction was not bound to the context")
	}

	if base.Conn(ctx, nil).Statement.Context != ctx {
		t.Fatal("fallback connection was not bound to the context")
	}
	if base.Conn(nil, nil) != conn {
		t.Fatal("expected the base connection when nothing is supplied")
	}
}
