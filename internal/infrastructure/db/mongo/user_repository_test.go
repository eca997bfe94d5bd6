package mongo

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sirpyerre/user-management-api/internal/core/domain"
)

func TestSearchFilterEscapesInput(t *testing.T) {
	f := searchFilter("a.b+c")

	or, ok := f["$or"].(bson.A)
	if !ok || len(or) != 3 {
		t.Fatalf("expected three $or clauses, got %#v", f)
	}
	for _, clause := range or {
		for field, cond := range clause.(bson.M) {
			re := cond.(bson.M)
			pattern := re["$regex"].(string)
			if pattern != regexp.QuoteMeta("a.b+c") {
				t.Fatalf("%s: pattern not escaped: %q", field, pattern)
			}
			if re["$options"] != "i" {
				t.Fatalf("%s: expected case-insensitive match", field)
			}
		}
	}
}

func TestUserDocToDomain(t *testing.T) {
	d := userDoc{ID: "user_4", Seq: 4, Name: "Alice Brown", Email: "alice.brown@example.com", Role: "moderator"}
	u := d.toDomain()
	if u.ID != "user_4" || u.Role != "moderator" || u.Email != d.Email {
		t.Fatalf("unexpected conversion: %+v", u)
	}
}

func TestNewUserDocKeepsMillisecondPrecision(t *testing.T) {
	now := time.Date(2024, 3, 9, 12, 30, 45, 123456789, time.FixedZone("CET", 3600))
	created := now.Add(-time.Hour).Add(987654 * time.Nanosecond)

	d := newUserDoc(7, domain.NewUser{Name: "Jane Doe", Email: "jane@example.com", CreatedAt: created}, now)
	if d.ID != "user_7" || d.Seq != 7 || d.Role != string(domain.RoleUser) {
		t.Fatalf("unexpected doc: %+v", d)
	}
	if d.UpdatedAt.Nanosecond() != 123000000 || d.UpdatedAt.Location() != time.UTC {
		t.Fatalf("updated_at not truncated to UTC milliseconds: %v", d.UpdatedAt)
	}
	if !d.CreatedAt.Equal(created.Truncate(time.Millisecond)) {
		t.Fatalf("created_at not truncated: %v", d.CreatedAt)
	}

	// A value marshalled to BSON and back must equal what the repo returned on write.
	raw, err := bson.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back userDoc
	if err := bson.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	got, want := back.toDomain(), d.toDomain()
	if !got.CreatedAt.Equal(want.CreatedAt) || !got.UpdatedAt.Equal(want.UpdatedAt) || got.ID != want.ID {
		t.Fatalf("round trip changed the user:\n got %+v\nwant %+v", got, want)
	}

	unset := newUserDoc(8, domain.NewUser{Name: "No Date", Email: "nodate@example.com"}, now)
	if !unset.CreatedAt.Equal(unset.UpdatedAt) {
		t.Fatalf("expected created_at to default to now, got %v vs %v", unset.CreatedAt, unset.UpdatedAt)
	}
}

func TestFindByIDHonoursCancelledContext(t *testing.T) {
	opts := options.Client().
		ApplyURI("mongodb://127.0.0.1:1").
		SetServerSelectionTimeout(100 * time.Millisecond)
	client, err := mongo.Connect(context.Background(), opts)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	repo := NewUserRepository(client.Database("usermgmt_test"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = repo.FindByID(ctx, "user_1")
	if err == nil {
		t.Fatal("expected an error for a cancelled context")
	}
	if errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("cancelled lookup must not report not found: %v", err)
	}
}

func TestConnectRequiresDatabase(t *testing.T) {
	if _, err := Connect(context.Background(), Config{URI: "mongodb://localhost:27017"}); err == nil {
		t.Fatal("expected error for empty database name")
	}
}
