package clientplane

import "sync"

// PassthroughConfig tunes the minimum kernel version required for
// passthrough I/O, and whether the feature is enabled at all.
type PassthroughConfig struct {
	Enabled       bool
	MinKernelMajor uint32
	MinKernelMinor uint32
}

// DefaultPassthroughConfig matches the kernel passthrough requirement used
// across the capability negotiation thresholds.
func DefaultPassthroughConfig() PassthroughConfig {
	return PassthroughConfig{Enabled: true, MinKernelMajor: 6, MinKernelMinor: 8}
}

// PassthroughReason explains why passthrough is disabled.
type PassthroughReason uint8

const (
	PassthroughReasonNone PassthroughReason = iota
	PassthroughReasonKernelTooOld
	PassthroughReasonDisabledByConfig
	PassthroughReasonUnsupportedFeature
)

// PassthroughStatus is the outcome of checking a kernel version against a
// PassthroughConfig.
type PassthroughStatus struct {
	Active bool
	Reason PassthroughReason
	Kernel KernelVersion
}

// CheckPassthrough evaluates whether passthrough I/O is available for the
// given kernel version under cfg.
func CheckPassthrough(kernel KernelVersion, cfg PassthroughConfig) PassthroughStatus {
	if !cfg.Enabled {
		return PassthroughStatus{Reason: PassthroughReasonDisabledByConfig, Kernel: kernel}
	}
	if !kernel.atLeast(cfg.MinKernelMajor, cfg.MinKernelMinor) {
		return PassthroughStatus{Reason: PassthroughReasonKernelTooOld, Kernel: kernel}
	}
	return PassthroughStatus{Active: true, Kernel: kernel}
}

// PassthroughState tracks the fd registry used when passthrough is active:
// fh -> raw fd, so reads/writes can bypass the FUSE data path entirely.
type PassthroughState struct {
	mu     sync.Mutex
	Status PassthroughStatus
	fdTable map[uint64]int32
}

// NewPassthroughState evaluates cfg against the given kernel version and
// returns a state ready to register file descriptors if active.
func NewPassthroughState(kernel KernelVersion, cfg PassthroughConfig) *PassthroughState {
	return &PassthroughState{
		Status:  CheckPassthrough(kernel, cfg),
		fdTable: make(map[uint64]int32),
	}
}

// IsActive reports whether passthrough is currently in effect.
func (s *PassthroughState) IsActive() bool {
	return s.Status.Active
}

// RegisterFd associates fh with a raw file descriptor.
func (s *PassthroughState) RegisterFd(fh uint64, fd int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fdTable[fh] = fd
}

// UnregisterFd removes and returns the fd registered for fh.
func (s *PassthroughState) UnregisterFd(fh uint64) (int32, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fd, ok := s.fdTable[fh]
	if ok {
		delete(s.fdTable, fh)
	}
	return fd, ok
}

// GetFd returns the fd registered for fh without removing it.
func (s *PassthroughState) GetFd(fh uint64) (int32, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fd, ok := s.fdTable[fh]
	return fd, ok
}

// FdCount returns the number of registered descriptors.
func (s *PassthroughState) FdCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.fdTable)
}
