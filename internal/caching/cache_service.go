package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"marketmedia/internal/models"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "marketmedia"

type CacheService interface {
	// Ownership caching. The product -> store relation never changes after
	// creation, so entries only expire by TTL.
	GetProductOwner(ctx context.Context, productID int64) (*models.ProductOwner, error)
	SetProductOwner(ctx context.Context, owner *models.ProductOwner, ttl time.Duration) error
	DeleteProductOwner(ctx context.Context, productID int64) error

	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		parsedAddr = strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v (address: %s)", pingErr, parsedAddr)
	}

	return NewRedisCacheServiceFromClient(client)
}

// NewRedisCacheServiceFromClient wraps an existing client.
func NewRedisCacheServiceFromClient(client *redis.Client) CacheService {
	return &redisCacheService{client: client}
}

func productOwnerKey(productID int64) string {
	return fmt.Sprintf("%s:product-owner:%d", keyPrefix, productID)
}

func (r *redisCacheService) GetProductOwner(ctx context.Context, productID int64) (*models.ProductOwner, error) {
	data, err := r.client.Get(ctx, productOwnerKey(productID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var owner models.ProductOwner
	if err := json.Unmarshal(data, &owner); err != nil {
		return nil, err
	}
	return &owner, nil
}

func (r *redisCacheService) SetProductOwner(ctx context.Context, owner *models.ProductOwner, ttl time.Duration) error {
	data, err := json.Marshal(owner)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, productOwnerKey(owner.ProductID), data, ttl).Err()
}

func (r *redisCacheService) DeleteProductOwner(ctx context.Context, productID int64) error {
	return r.client.Del(ctx, productOwnerKey(productID)).Err()
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

type noopCacheService struct{}

// NewNoopCacheService is used when Redis is disabled; every read is a miss.
func NewNoopCacheService() CacheService {
	return noopCacheService{}
}

func (noopCacheService) GetProductOwner(context.Context, int64) (*models.ProductOwner, error) {
	return nil, nil
}

func (noopCacheService) SetProductOwner(context.Context, *models.ProductOwner, time.Duration) error {
	return nil
}

func (noopCacheService) DeleteProductOwner(context.Context, int64) error {
	return nil
}

func (noopCacheService) Ping(context.Context) error {
	return nil
}
