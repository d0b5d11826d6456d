package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"melodify/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedisStore(t *testing.T) (*RedisSessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr:            mr.Addr(),
		Protocol:        2,
		DisableIdentity: true,
	})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisSessionStore(client), mr
}

func sessionFor(id, userID string, ttl time.Duration) model.SessionRecord {
	created := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	return model.SessionRecord{ID: id, UserID: userID, CreatedAt: created, ExpiresAt: created.Add(ttl)}
}

func TestRedisSessionStoreCreateGet(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	rec := sessionFor("s1", "u1", time.Hour)
	if err := store.Create(ctx, rec); err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.UserID != "u1" || !got.ExpiresAt.Equal(rec.ExpiresAt) {
		t.Fatalf("Get = %+v, want %+v", got, rec)
	}
	if ttl := mr.TTL("session:s1"); ttl != time.Hour {
		t.Fatalf("session TTL = %v, want 1h", ttl)
	}
	if ok, _ := mr.SIsMember("user:u1:sessions", "s1"); !ok {
		t.Fatal("session id missing from user index")
	}

	if _, err := store.Get(ctx, "unknown"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Get(unknown) = %v, want ErrSessionNotFound", err)
	}
	if err := store.Create(ctx, sessionFor("s0", "u1", 0)); err == nil {
		t.Fatal("expected error for an already expired session")
	}
}

func TestRedisSessionStoreExpiry(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	if err := store.Create(ctx, sessionFor("s1", "u1", time.Minute)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	mr.FastForward(2 * time.Minute)
	if _, err := store.Get(ctx, "s1"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Get after expiry = %v, want ErrSessionNotFound", err)
	}
}

func TestRedisSessionStoreDelete(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	for _, id := range []string{"s1", "s2"} {
		if err := store.Create(ctx, sessionFor(id, "u1", time.Hour)); err != nil {
			t.Fatalf("Create(%s): %v", id, err)
		}
	}

	if err := store.Delete(ctx, "s1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, "s1"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("deleted session still readable: %v", err)
	}
	if _, err := store.Get(ctx, "s2"); err != nil {
		t.Fatalf("Delete removed another session: %v", err)
	}
	if ok, _ := mr.SIsMember("user:u1:sessions", "s1"); ok {
		t.Fatal("deleted session id left in user index")
	}
	if err := store.Delete(ctx, "s1"); err != nil {
		t.Fatalf("Delete(missing) = %v, want nil", err)
	}
}

func TestRedisSessionStoreDeleteAllForUser(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	for _, rec := range []model.SessionRecord{
		sessionFor("a1", "alice", time.Hour),
		sessionFor("a2", "alice", time.Hour),
		sessionFor("b1", "bob", time.Hour),
	} {
		if err := store.Create(ctx, rec); err != nil {
			t.Fatalf("Create(%s): %v", rec.ID, err)
		}
	}

	if err := store.DeleteAllForUser(ctx, "alice"); err != nil {
		t.Fatalf("DeleteAllForUser: %v", err)
	}
	for _, id := range []string{"a1", "a2"} {
		if _, err := store.Get(ctx, id); !errors.Is(err, ErrSessionNotFound) {
			t.Fatalf("Get(%s) = %v, want ErrSessionNotFound", id, err)
		}
	}
	if mr.Exists("user:alice:sessions") {
		t.Fatal("user index not removed")
	}
	if _, err := store.Get(ctx, "b1"); err != nil {
		t.Fatalf("other user's session revoked: %v", err)
	}
	if err := store.DeleteAllForUser(ctx, "nobody"); err != nil {
		t.Fatalf("DeleteAllForUser(nobody) = %v, want nil", err)
	}
}

func TestIdentityServiceWithRedisSessions(t *testing.T) {
	p := newTestProvider(t, false)
	store, _ := newTestRedisStore(t)
	p.sessions = store
	ctx := context.Background()

	if _, err := p.SignUp(ctx, SignUpParams{Email: "a@x.com", Password: "secret123"}); err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	session, _, err := p.SignInWithPassword(ctx, "a@x.com", "secret123")
	if err != nil {
		t.Fatalf("SignInWithPassword: %v", err)
	}
	if _, err := p.GetUser(ctx, session.AccessToken); err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if err := p.SignOut(ctx, session.AccessToken, ScopeLocal); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if _, err := p.GetUser(ctx, session.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("GetUser after sign-out = %v, want ErrInvalidToken", err)
	}
}
