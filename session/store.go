package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrStoreUnavailable is returned when Redis times out or fails at the
// transport level. It is never conflated with absence: callers may retry
// with backoff, whereas an absent token is terminal.
var ErrStoreUnavailable = errors.New("session store unavailable")

// ErrOwnerMismatch is returned by Rotate when the stored record belongs to a
// different user than claimed. The old record is destroyed as a side effect.
var ErrOwnerMismatch = errors.New("record owner mismatch")

// ErrRecordCorrupt is returned when a stored record blob cannot be decoded.
var ErrRecordCorrupt = errors.New("session record corrupt")

// ErrRecordNotFound is joined onto redis.Nil when the rotation target does
// not exist (already rotated or invalidated).
var ErrRecordNotFound = errors.New("session record not found")

// ErrRecordExpired is joined onto redis.Nil when the rotation target exists
// but its absolute expiry has passed.
var ErrRecordExpired = errors.New("session record expired")

const (
	rotateStatusNotFound    int64 = 0
	rotateStatusExpired     int64 = 1
	rotateStatusMismatch    int64 = 2
	rotateStatusRotated     int64 = 3
	rotateStatusInvalidBlob int64 = 4
)

const defaultOpTimeout = 3 * time.Second

const deleteRecordScript = `
local data = redis.call("GET", KEYS[1])
if not data then
  return 0
end
local ok, rec = pcall(cjson.decode, data)
if ok and type(rec) == "table" and rec.user_id then
  redis.call("SREM", ARGV[2] .. rec.user_id, ARGV[1])
end
redis.call("DEL", KEYS[1])
return 1
`

var deleteRecordLua = redis.NewScript(deleteRecordScript)

// rotateRecordScript is the compare-and-delete at the core of rotation. All
// three mutations — write new record, delete old record, maintain the user
// index — apply inside one script, so a concurrent reader never observes both
// tokens valid and two racing rotations have exactly one winner.
const rotateRecordScript = `
local data = redis.call("GET", KEYS[1])
if not data then
  return 0
end
local ok, rec = pcall(cjson.decode, data)
if not ok or type(rec) ~= "table" or not rec.user_id then
  redis.call("DEL", KEYS[1])
  return 4
end
local user_key = ARGV[6] .. rec.user_id
if rec.expires_at and tonumber(rec.expires_at) <= tonumber(ARGV[5]) then
  redis.call("DEL", KEYS[1])
  redis.call("SREM", user_key, ARGV[1])
  return 1
end
if rec.user_id ~= ARGV[3] then
  redis.call("DEL", KEYS[1])
  redis.call("SREM", user_key, ARGV[1])
  return 2
end
redis.call("SET", KEYS[2], ARGV[4], "PX", ARGV[7])
redis.call("SADD", user_key, ARGV[2])
redis.call("DEL", KEYS[1])
redis.call("SREM", user_key, ARGV[1])
return 3
`

var rotateRecordLua = redis.NewScript(rotateRecordScript)

// Store is the Redis-backed session store: refresh-token records under
// <prefix>:refresh:<token> with a key TTL, and a per-user SET index under
// <prefix>:user-sessions:<userID> with no TTL (cleared explicitly).
//
// Store holds no in-process mutable state beyond the client handle and is
// safe for concurrent use.
type Store struct {
	redis   redis.UniversalClient
	prefix  string
	timeout time.Duration
}

// NewStore creates a [Store] backed by the given Redis client. prefix sets
// the key namespace; timeout bounds every store call (zero selects a 3s
// default).
func NewStore(client redis.UniversalClient, prefix string, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = defaultOpTimeout
	}
	return &Store{
		redis:   client,
		prefix:  prefix,
		timeout: timeout,
	}
}

func (s *Store) key(token string) string {
	return s.prefix + ":refresh:" + token
}

func (s *Store) userKey(userID string) string {
	return s.prefix + ":user-sessions:" + userID
}

func (s *Store) userKeyPrefix() string {
	return s.prefix + ":user-sessions:"
}

func (s *Store) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// Save persists a record under token with the given TTL and adds token to
// the owner's index set as one transaction.
func (s *Store) Save(ctx context.Context, token string, rec *Record, ttl time.Duration) error {
	data, err := Encode(rec)
	if err != nil {
		return err
	}

	ctx, cancel := s.opContext(ctx)
	defer cancel()

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(token), data, ttl)
		pipe.SAdd(ctx, s.userKey(rec.UserID), token)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return nil
}

// Get retrieves the record stored under token. Absence is redis.Nil. A record
// whose absolute expiry has passed (key TTL lag) is destroyed and reported
// absent. Get never extends a record's lifetime.
func (s *Store) Get(ctx context.Context, token string) (*Record, error) {
	opCtx, cancel := s.opContext(ctx)
	data, err := s.redis.Get(opCtx, s.key(token)).Bytes()
	cancel()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	rec, err := Decode(data)
	if err != nil {
		return nil, err
	}

	if rec.Expired(time.Now()) {
		if err := s.Delete(ctx, token); err != nil {
			return nil, err
		}
		return nil, redis.Nil
	}

	return rec, nil
}

// Delete removes the record and its index entry. Idempotent: deleting an
// absent token is a no-op, not an error.
func (s *Store) Delete(ctx context.Context, token string) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	_, err := deleteRecordLua.Run(ctx, s.redis, []string{s.key(token)}, token, s.userKeyPrefix()).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Rotate atomically replaces oldToken's record with a new record stored under
// newToken, maintaining the owner's index, iff the old record exists,
// is unexpired, and belongs to expectedUserID. Outcomes:
//
//   - success: returns the stored new record
//   - old record absent (already rotated or invalidated): redis.Nil
//   - old record clock-expired: redis.Nil (destroyed on the way out)
//   - owner mismatch: [ErrOwnerMismatch]; the old record is destroyed
//
// Two rotations racing on the same oldToken see exactly one winner; the
// loser observes absence.
func (s *Store) Rotate(ctx context.Context, oldToken, newToken string, rec *Record, ttl time.Duration) (*Record, error) {
	data, err := Encode(rec)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.opContext(ctx)
	defer cancel()

	result, err := rotateRecordLua.Run(
		ctx,
		s.redis,
		[]string{s.key(oldToken), s.key(newToken)},
		oldToken,
		newToken,
		rec.UserID,
		data,
		time.Now().Unix(),
		s.userKeyPrefix(),
		ttl.Milliseconds(),
	).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	code, ok := result.(int64)
	if !ok {
		return nil, fmt.Errorf("%w: invalid rotate script response", ErrStoreUnavailable)
	}

	switch code {
	case rotateStatusNotFound:
		return nil, errors.Join(redis.Nil, ErrRecordNotFound)
	case rotateStatusExpired:
		return nil, errors.Join(redis.Nil, ErrRecordExpired)
	case rotateStatusMismatch:
		return nil, ErrOwnerMismatch
	case rotateStatusRotated:
		return rec, nil
	case rotateStatusInvalidBlob:
		return nil, ErrRecordCorrupt
	default:
		return nil, fmt.Errorf("%w: unknown rotate script status", ErrStoreUnavailable)
	}
}

// Members returns the tracked token strings for a user. May include entries
// whose records have just expired; callers resolving records must tolerate
// that bounded staleness.
func (s *Store) Members(ctx context.Context, userID string) ([]string, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	tokens, err := s.redis.SMembers(ctx, s.userKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return tokens, nil
}

// GetMany fetches multiple records in one pipeline, skipping absent or
// expired entries. Used for multi-device introspection, never on hot paths.
func (s *Store) GetMany(ctx context.Context, tokens []string) (map[string]*Record, error) {
	if len(tokens) == 0 {
		return map[string]*Record{}, nil
	}

	ctx, cancel := s.opContext(ctx)
	defer cancel()

	pipe := s.redis.Pipeline()
	cmds := make([]*redis.StringCmd, len(tokens))
	for i, token := range tokens {
		cmds[i] = pipe.Get(ctx, s.key(token))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	now := time.Now()
	records := make(map[string]*Record, len(tokens))
	for i, cmd := range cmds {
		data, cmdErr := cmd.Bytes()
		if cmdErr != nil {
			if errors.Is(cmdErr, redis.Nil) {
				continue
			}
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, cmdErr)
		}
		rec, decErr := Decode(data)
		if decErr != nil {
			continue
		}
		if rec.Expired(now) {
			continue
		}
		records[tokens[i]] = rec
	}

	return records, nil
}

// DeleteAllForUser removes every record in the user's index set, then clears
// the set, as one transaction. Tolerates an empty set; calling it twice is a
// no-op the second time.
func (s *Store) DeleteAllForUser(ctx context.Context, userID string) error {
	userKey := s.userKey(userID)

	ctx, cancel := s.opContext(ctx)
	defer cancel()

	tokens, err := s.redis.SMembers(ctx, userKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	keys := make([]string, 0, len(tokens))
	for _, token := range tokens {
		keys = append(keys, s.key(token))
	}

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if len(keys) > 0 {
			pipe.Del(ctx, keys...)
		}
		pipe.Del(ctx, userKey)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return nil
}

// ActiveSessionCount returns the number of tracked tokens for a user.
func (s *Store) ActiveSessionCount(ctx context.Context, userID string) (int, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	count, err := s.redis.SCard(ctx, s.userKey(userID)).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return int(count), nil
}

// Ping returns a point-in-time Redis availability check and latency.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return time.Since(start), nil
}
