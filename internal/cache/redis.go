package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/flightbot/config"
	"github.com/Domenick1991/flightbot/internal/dialog"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrConversationBusy is returned when another turn of the same conversation
// holds the lock.
var ErrConversationBusy = errors.New("conversation is busy")

// releaseScript deletes the lock only while it still carries the caller's
// token, so a turn that outlived its TTL cannot free a newer turn's lock.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// locker acquires and releases token-owned keys.
type locker interface {
	acquire(ctx context.Context, key, token string, ttl time.Duration) (bool, error)
	release(ctx context.Context, key, token string) error
}

type redisLocker struct {
	client *redis.Client
}

func (l redisLocker) acquire(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	return l.client.SetNX(ctx, key, token, ttl).Result()
}

func (l redisLocker) release(ctx context.Context, key, token string) error {
	return releaseScript.Run(ctx, l.client, []string{key}, token).Err()
}

// SessionStore keeps dialog sessions in Redis, one key per conversation.
type SessionStore struct {
	client     *redis.Client
	locks      locker
	sessionTTL time.Duration
	lockTTL    time.Duration
}

func NewSessionStore(cfg config.RedisConfig, sessionTTL, lockTTL time.Duration) *SessionStore {
	client := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	return &SessionStore{
		client:     client,
		locks:      redisLocker{client: client},
		sessionTTL: sessionTTL,
		lockTTL:    lockTTL,
	}
}

// Load returns the stored session. found is false when the conversation is
// new or its session expired.
func (s *SessionStore) Load(ctx context.Context, conversationID string) (session dialog.Session, found bool, err error) {
	data, err := s.client.Get(ctx, sessionKey(conversationID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return dialog.Session{}, false, nil
		}
		return dialog.Session{}, false, err
	}

	session, err = decodeSession(data)
	if err != nil {
		return dialog.Session{}, false, err
	}
	return session, true, nil
}

func (s *SessionStore) Save(ctx context.Context, session dialog.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKey(session.ConversationID), payload, s.sessionTTL).Err()
}

func (s *SessionStore) Delete(ctx context.Context, conversationID string) error {
	return s.client.Del(ctx, sessionKey(conversationID)).Err()
}

// Lock serializes turns of one conversation. The returned func releases it,
// and is a no-op once the lock has expired and been taken by another turn.
func (s *SessionStore) Lock(ctx context.Context, conversationID string) (func(context.Context) error, error) {
	key := lockKey(conversationID)
	token := uuid.NewString()
	ok, err := s.locks.acquire(ctx, key, token, s.lockTTL)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConversationBusy
	}
	return func(ctx context.Context) error {
		return s.locks.release(ctx, key, token)
	}, nil
}

func (s *SessionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *SessionStore) Close() error {
	return s.client.Close()
}

func decodeSession(data []byte) (dialog.Session, error) {
	var session dialog.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return dialog.Session{}, fmt.Errorf("decode session: %w", err)
	}
	return session, nil
}

func sessionKey(conversationID string) string {
	return "chat:session:" + conversationID
}

func lockKey(conversationID string) string {
	return "lock:chat:" + conversationID
}
