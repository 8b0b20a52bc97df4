package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// PresenceStore keeps online/offline state in redis so any instance (and the
// presence endpoint) can see who is connected.
type PresenceStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

type PresenceInfo struct {
	Status   string `json:"status"`
	LastSeen int64  `json:"last_seen"`
}

func NewPresenceStore(client *redis.Client, prefix string) *PresenceStore {
	return &PresenceStore{client: client, prefix: prefix, ttl: 24 * time.Hour}
}

func (s *PresenceStore) key(userID string) string {
	return fmt.Sprintf("%s:presence:%s", s.prefix, userID)
}

func (s *PresenceStore) SetOnline(ctx context.Context, userID string) error {
	return s.set(ctx, userID, "online", s.ttl)
}

func (s *PresenceStore) SetOffline(ctx context.Context, userID string) error {
	return s.set(ctx, userID, "offline", 0)
}

func (s *PresenceStore) set(ctx context.Context, userID, status string, ttl time.Duration) error {
	b, _ := json.Marshal(PresenceInfo{Status: status, LastSeen: time.Now().Unix()})
	return s.client.Set(ctx, s.key(userID), b, ttl).Err()
}

// Get returns the stored presence; a user never seen reports offline.
func (s *PresenceStore) Get(ctx context.Context, userID string) (PresenceInfo, error) {
	b, err := s.client.Get(ctx, s.key(userID)).Bytes()
	if err == redis.Nil {
		return PresenceInfo{Status: "offline"}, nil
	}
	if err != nil {
		return PresenceInfo{}, err
	}
	var info PresenceInfo
	if err := json.Unmarshal(b, &info); err != nil {
		return PresenceInfo{}, err
	}
	return info, nil
}
