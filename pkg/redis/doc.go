// Package redis opens the Redis connection shared by the translation cache
// and the invalidation bus.
//
//	cfg := redis.Config{URL: os.Getenv("REDIS_URL")}
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer redis.Shutdown(client)(ctx)
//
// [Healthcheck] returns a func(context.Context) error for readiness probes.
package redis
