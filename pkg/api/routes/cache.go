package routes

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"

	"github.com/puenktlich/puenktlich/pkg/redis_client"
	"github.com/puenktlich/puenktlich/pkg/stats"
)

const matrixCacheExpiration = 5 * time.Minute

var routeMatrixCache *cache.Cache[*CachedRouteMatrix]

// CachedRouteMatrix holds an aggregated route matrix in Redis so dashboard
// reloads skip the Mongo query & recomputation.
type CachedRouteMatrix struct {
	Matrix stats.RouteMatrix `json:"matrix"`
}

func (c *CachedRouteMatrix) MarshalBinary() ([]byte, error) {
	return json.Marshal(c)
}

func (c *CachedRouteMatrix) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, c)
}

func CreateMatrixCache() {
	redisStore := redisstore.NewRedis(redis_client.Client, store.WithExpiration(matrixCacheExpiration))
	routeMatrixCache = cache.New[*CachedRouteMatrix](redisStore)
}

func matrixCacheKey(route string, endDate string, windowDays int) string {
	return fmt.Sprintf("route_matrix:%s:%s:%d", route, endDate, windowDays)
}

func cachedRouteMatrix(ctx context.Context, cacheKey string) *stats.RouteMatrix {
	if routeMatrixCache == nil {
		return nil
	}

	cached, err := routeMatrixCache.Get(ctx, cacheKey)
	if err != nil || cached == nil {
		return nil
	}

	return &cached.Matrix
}

func storeRouteMatrix(ctx context.Context, cacheKey string, matrix stats.RouteMatrix) {
	if routeMatrixCache == nil {
		return
	}

	// Best effort - a failed cache write only costs the next recomputation
	routeMatrixCache.Set(ctx, cacheKey, &CachedRouteMatrix{Matrix: matrix})
}
