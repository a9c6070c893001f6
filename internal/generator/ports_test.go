package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPortOffset_KnownValues(t *testing.T) {
	// Ports for already-provisioned tenants. These pin the hash so a
	// regenerated site lands on the ports it was first given.
	cases := map[string]int{
		"apple":    10,
		"webstore": 99,
		"default":  5,
		"acme":     46,
		"demo":     51,
		"blog":     50,
		"shop":     62,
		"a":        97,
		"tenant":   6,
		"example":  74,
		"mysite":   29,
	}
	for subdomain, want := range cases {
		assert.Equal(t, want, PortOffset(subdomain), "subdomain %q", subdomain)
	}
}

func TestPortOffset_EmptySubdomain(t *testing.T) {
	assert.Equal(t, 0, PortOffset(""))
}

func TestPortOffset_Range(t *testing.T) {
	subdomains := []string{
		"a", "z", "acme", "a-very-long-subdomain-name-that-overflows-int32",
		"tenant-1", "tenant-2", "x9", "shop-eu-west-1",
	}
	for _, s := range subdomains {
		off := PortOffset(s)
		assert.GreaterOrEqual(t, off, 0, "subdomain %q", s)
		assert.Less(t, off, 100, "subdomain %q", s)
	}
}

func TestPortOffset_Deterministic(t *testing.T) {
	for i := 0; i < 5; i++ {
		assert.Equal(t, PortOffset("acme"), PortOffset("acme"))
	}
}

func TestBackendAndFrontendPorts(t *testing.T) {
	off := PortOffset("acme")
	assert.Equal(t, 3020+off, BackendPort("acme"))
	assert.Equal(t, 3040+off, FrontendPort("acme"))

	assert.Equal(t, 3020, BackendPort(""))
	assert.Equal(t, 3040, FrontendPort(""))
}
