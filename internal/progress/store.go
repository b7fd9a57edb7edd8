package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/relief-allocator/backend/internal/config"
	"github.com/sysu-ecnc-dev/relief-allocator/backend/internal/domain"
)

var ErrRunNotFound = errors.New("运行记录不存在或已过期")

// Store 把运行状态保存在 redis 中，过期后自动删除，不做持久化
type Store struct {
	rdb              *redis.Client
	expiration       time.Duration
	operationTimeout time.Duration
}

func NewStore(cfg *config.Config, rdb *redis.Client) *Store {
	return &Store{
		rdb:              rdb,
		expiration:       time.Duration(cfg.Run.ProgressExpiration) * time.Second,
		operationTimeout: time.Duration(cfg.Redis.OperationTimeout) * time.Second,
	}
}

func runKey(id string) string {
	return fmt.Sprintf("run_%s", id)
}

func (s *Store) Save(ctx context.Context, snapshot *domain.RunSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.operationTimeout)
	defer cancel()

	return s.rdb.Set(ctx, runKey(snapshot.ID), data, s.expiration).Err()
}

func (s *Store) Get(ctx context.Context, id string) (*domain.RunSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.operationTimeout)
	defer cancel()

	data, err := s.rdb.Get(ctx, runKey(id)).Bytes()
	if err != nil {
		switch {
		case errors.Is(err, redis.Nil):
			return nil, ErrRunNotFound
		default:
			return nil, err
		}
	}

	snapshot := &domain.RunSnapshot{}
	if err := json.Unmarshal(data, snapshot); err != nil {
		return nil, err
	}

	return snapshot, nil
}
