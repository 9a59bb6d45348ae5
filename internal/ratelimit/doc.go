// Package ratelimit spaces outbound requests to the Telldus Live API.
//
// A single Limiter is created per process and handed to everything that talks
// to the remote host. It serialises requests and guarantees that a request is
// only started once at least the configured interval has passed since the
// previous request returned or failed. The clock is injectable so tests can
// observe the spacing without sleeping.
package ratelimit
