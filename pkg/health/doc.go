// Package health serves liveness and readiness probes.
//
//	checker := health.NewChecker(health.WithLogger(log)).
//	    Add("postgres", store.Healthcheck(pool)).
//	    Add("redis", redis.Healthcheck(client))
//
//	r.Get("/health/live", health.LiveHandler())
//	r.Get("/health/ready", checker.ReadyHandler())
//
// Responses are plain "OK" or "Service Unavailable" unless JSON is
// requested with ?format=json or Accept: application/json:
//
//	{"status":"unhealthy","checks":{"redis":{"status":"unhealthy","error":"..."}}}
package health
