package generator

// Base ports for generated tenant deployments. Each tenant binds at
// base + PortOffset(subdomain) so concurrently running sites never collide.
const (
	BackendBasePort  = 3020
	FrontendBasePort = 3040

	// portRange bounds the offset so all tenant ports stay inside
	// [base, base+100).
	portRange = 100
)

// PortOffset derives a stable port offset in [0,100) from a tenant subdomain.
//
// The fold is the classic 32-bit string hash (h = 31*h + code) with
// two's-complement wraparound. Existing deployments were provisioned with
// exactly this function, so the wraparound semantics must not change:
// regenerating a site has to land on the same ports it was first given.
func PortOffset(subdomain string) int {
	var h int32
	for _, c := range subdomain {
		h = 31*h + int32(c)
	}
	// abs via int64: -int32(math.MinInt32) overflows in 32 bits.
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return int(v % portRange)
}

// BackendPort returns the API server port for a subdomain.
func BackendPort(subdomain string) int {
	return BackendBasePort + PortOffset(subdomain)
}

// FrontendPort returns the frontend dev-server port for a subdomain.
func FrontendPort(subdomain string) int {
	return FrontendBasePort + PortOffset(subdomain)
}
