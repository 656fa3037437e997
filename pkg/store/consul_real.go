//go:build consul

package store

import (
	"tower-admin/pkg/consul"
)

// NewConsulStore creates a Consul-backed store (requires build tag consul).
func NewConsulStore(addr string) Store {
	return consul.NewStore(addr)
}
