// Package config loads process configuration from the environment.
//
// Values pass through the secret resolver, so any variable may hold a
// secretref indirection. Missing provider credentials are not fatal at
// load time; they surface as "missing" in the health payload and as
// provider faults on first use.
package config
