package presence

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// State is a user's visible presence.
type State string

const (
	Online  State = "online"
	Away    State = "away"
	InGame  State = "in_game"
	Offline State = "offline"
)

// ParseState accepts the three live states. Offline is only ever written by Disconnect.
func ParseState(s string) (State, bool) {
	switch st := State(s); st {
	case Online, Away, InGame:
		return st, true
	}
	return "", false
}

const (
	presencePrefix = "presence:"
	typingPrefix   = "typing:"

	DefaultTTL       = 60 * time.Second
	DefaultTypingTTL = 5 * time.Second
	offlineTTL       = 24 * time.Hour
)

var (
	ErrInvalidState = errors.New("State must be one of online, away, in_game")
	ErrUserRequired = errors.New("user id is required")
	ErrChatRequired = errors.New("chat id is required")
)

// Presence is the record stored under presence:<user_id>.
type Presence struct {
	UserID       string    `json:"user_id"`
	State        State     `json:"state"`
	LastSeen     time.Time `json:"last_seen"`
	ConnectionID string    `json:"connection_id,omitempty"`
}

// Service stores presence and typing indicators in Redis. Records expire on
// their own so a client that vanishes without disconnecting goes offline.
type Service struct {
	Rdb       *redis.Client
	TTL       time.Duration
	TypingTTL time.Duration
	Now       func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return DefaultTTL
}

func (s *Service) typingTTL() time.Duration {
	if s.TypingTTL > 0 {
		return s.TypingTTL
	}
	return DefaultTypingTTL
}

// Heartbeat refreshes userID's presence.
func (s *Service) Heartbeat(ctx context.Context, userID string, state State, connectionID string) (*Presence, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}
	if _, ok := ParseState(string(state)); !ok {
		return nil, ErrInvalidState
	}
	p := &Presence{UserID: userID, State: state, LastSeen: s.now().UTC(), ConnectionID: connectionID}
	if err := s.write(ctx, p, s.ttl()); err != nil {
		return nil, err
	}
	return p, nil
}

// disconnectRetries bounds how often Disconnect retries after a concurrent write.
const disconnectRetries = 5

// Disconnect marks userID offline. When connectionID is given and another
// connection wrote the current record, that record is left alone. The key is
// watched, so a heartbeat landing between the read and the write wins.
func (s *Service) Disconnect(ctx context.Context, userID, connectionID string) (*Presence, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}
	key := presencePrefix + userID
	var out *Presence
	txf := func(tx *redis.Tx) error {
		cur, err := s.read(ctx, tx, userID)
		if err != nil {
			return err
		}
		if connectionID != "" && cur.ConnectionID != "" && cur.ConnectionID != connectionID && cur.State != Offline {
			out = cur
			return nil
		}
		p := &Presence{UserID: userID, State: Offline, LastSeen: s.now().UTC()}
		b, err := json.Marshal(p)
		if err != nil {
			return err
		}
		if _, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, b, offlineTTL)
			return nil
		}); err != nil {
			return err
		}
		out = p
		return nil
	}
	for i := 0; i < disconnectRetries; i++ {
		err := s.Rdb.Watch(ctx, txf, key)
		if err == nil {
			return out, nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return nil, err
		}
		log.Debug().Str("user_id", userID).Int("attempt", i+1).Msg("presence: disconnect raced a write, retrying")
	}
	return nil, redis.TxFailedErr
}

func (s *Service) write(ctx context.Context, p *Presence, ttl time.Duration) error {
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.Rdb.Set(ctx, presencePrefix+p.UserID, b, ttl).Err()
}

// Get returns userID's presence. A missing record means offline.
func (s *Service) Get(ctx context.Context, userID string) (*Presence, error) {
	return s.read(ctx, s.Rdb, userID)
}

func (s *Service) read(ctx context.Context, c redis.Cmdable, userID string) (*Presence, error) {
	b, err := c.Get(ctx, presencePrefix+userID).Bytes()
	if errors.Is(err, redis.Nil) {
		return &Presence{UserID: userID, State: Offline}, nil
	}
	if err != nil {
		return nil, err
	}
	var p Presence
	if err := json.Unmarshal(b, &p); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("presence: bad record")
		return &Presence{UserID: userID, State: Offline}, nil
	}
	return &p, nil
}

// GetMany returns presence for every id in order, offline for missing ones.
func (s *Service) GetMany(ctx context.Context, userIDs []string) ([]Presence, error) {
	if len(userIDs) == 0 {
		return []Presence{}, nil
	}
	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = presencePrefix + id
	}
	vals, err := s.Rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Presence, len(userIDs))
	for i, v := range vals {
		out[i] = Presence{UserID: userIDs[i], State: Offline}
		str, ok := v.(string)
		if !ok {
			continue
		}
		var p Presence
		if err := json.Unmarshal([]byte(str), &p); err == nil {
			out[i] = p
		}
	}
	return out, nil
}

// SetTyping records that userID is typing in chatID.
func (s *Service) SetTyping(ctx context.Context, chatID, userID string) error {
	if chatID == "" {
		return ErrChatRequired
	}
	if userID == "" {
		return ErrUserRequired
	}
	key := typingPrefix + chatID
	pipe := s.Rdb.TxPipeline()
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(s.now().UnixMilli()), Member: userID})
	pipe.Expire(ctx, key, 2*s.typingTTL())
	_, err := pipe.Exec(ctx)
	return err
}

// ClearTyping removes userID from chatID's typing set.
func (s *Service) ClearTyping(ctx context.Context, chatID, userID string) error {
	if chatID == "" {
		return ErrChatRequired
	}
	return s.Rdb.ZRem(ctx, typingPrefix+chatID, userID).Err()
}

// Typing returns the users typing in chatID within the typing TTL, oldest first.
func (s *Service) Typing(ctx context.Context, chatID string) ([]string, error) {
	if chatID == "" {
		return nil, ErrChatRequired
	}
	key := typingPrefix + chatID
	cutoff := s.now().Add(-s.typingTTL()).UnixMilli()
	if err := s.Rdb.ZRemRangeByScore(ctx, key, "-inf", "("+strconv.FormatInt(cutoff, 10)).Err(); err != nil {
		return nil, err
	}
	users, err := s.Rdb.ZRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	return users, nil
}
