// Package httpapi exposes translation lookups and reloads over HTTP.
//
//	GET  /v1/translate/{locale}?key=a.b[&default=x]
//	GET  /v1/translate?key=a.b            locale from Accept-Language
//	GET  /v1/locales
//	POST /v1/reload[?warm=true]
//	POST /v1/locales/{locale}/reload
//	GET  /health/live, /health/ready, /metrics
//
// Every translate request gets its own request scope, so repeated
// fallback lookups within one request hit the store once.
package httpapi
