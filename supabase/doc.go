// Package supabase is a minimal Supabase REST client.
//
// It covers the slice of PostgREST used by the relay (filtered selects,
// inserts with representation, exact counts) plus the GoTrue user-lookup
// endpoint that backs bearer-token verification. It is a thin HTTP
// wrapper: no retries, no pooling beyond net/http defaults.
package supabase
