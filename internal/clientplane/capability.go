package clientplane

// PassthroughMode is the degree of kernel passthrough I/O support
// negotiated for the session.
type PassthroughMode uint8

const (
	PassthroughFull PassthroughMode = iota
	PassthroughPartial
	PassthroughNone
)

// KernelVersion is a detected (major, minor) FUSE host kernel version.
type KernelVersion struct {
	Major uint32
	Minor uint32
}

func (v KernelVersion) atLeast(major, minor uint32) bool {
	if v.Major != major {
		return v.Major > major
	}
	return v.Minor >= minor
}

// Capabilities is the feature set negotiated for a session given the
// detected kernel version.
type Capabilities struct {
	Kernel         KernelVersion
	Passthrough    PassthroughMode
	AtomicWrites   bool
	DynamicIoring  bool
}

// Negotiate computes the supported feature set for the given kernel
// version from documented version thresholds: full passthrough at >=6.8,
// partial passthrough at >=5.14, atomic writes at >=6.11, dynamic io_uring
// registration at >=6.20.
func Negotiate(kernel KernelVersion) Capabilities {
	caps := Capabilities{Kernel: kernel, Passthrough: PassthroughNone}

	switch {
	case kernel.atLeast(6, 8):
		caps.Passthrough = PassthroughFull
	case kernel.atLeast(5, 14):
		caps.Passthrough = PassthroughPartial
	}

	caps.AtomicWrites = kernel.atLeast(6, 11)
	caps.DynamicIoring = kernel.atLeast(6, 20)

	return caps
}

// CapabilityNegotiator freezes a Capabilities set for the life of a
// session once negotiated.
type CapabilityNegotiator struct {
	negotiated bool
	caps       Capabilities
}

// NewCapabilityNegotiator returns a negotiator with nothing negotiated yet.
func NewCapabilityNegotiator() *CapabilityNegotiator {
	return &CapabilityNegotiator{}
}

// Negotiate records kernel and freezes the resulting capability set.
// Subsequent calls are no-ops; use Capabilities to read the frozen result.
func (n *CapabilityNegotiator) Negotiate(kernel KernelVersion) Capabilities {
	if n.negotiated {
		return n.caps
	}
	n.caps = Negotiate(kernel)
	n.negotiated = true
	return n.caps
}

// Capabilities returns the frozen capability set, or the zero value with
// ok=false if Negotiate has not yet been called.
func (n *CapabilityNegotiator) Capabilities() (Capabilities, bool) {
	return n.caps, n.negotiated
}
