package gateway

import "sync"

// LayoutType identifies the pNFS layout type returned to the client, per
// RFC 5661 §13.
type LayoutType uint32

const (
	LayoutTypeFiles    LayoutType = 1
	LayoutTypeNfs4Block LayoutType = 3
	LayoutTypeObj       LayoutType = 2
)

// IoMode is the access mode requested for a layout segment.
type IoMode uint32

const (
	IoModeRead      IoMode = 1
	IoModeReadWrite IoMode = 2
	IoModeAny       IoMode = 3
)

// IoModeFromUint32 decodes an on-wire iomode value, returning false for
// anything outside {Read, ReadWrite, Any}.
func IoModeFromUint32(v uint32) (IoMode, bool) {
	switch IoMode(v) {
	case IoModeRead, IoModeReadWrite, IoModeAny:
		return IoMode(v), true
	default:
		return 0, false
	}
}

// DataServerLocation is one data server a layout segment may stripe to.
type DataServerLocation struct {
	Address  string
	DeviceID [16]byte
}

// LayoutSegment is one striped range of a layout.
type LayoutSegment struct {
	LayoutType  LayoutType
	Offset      uint64
	Length      uint64
	IoMode      IoMode
	DataServers []DataServerLocation
	StripeUnit  uint64
}

// LayoutGetResult is the response to a LAYOUTGET operation.
type LayoutGetResult struct {
	LayoutType LayoutType
	Segments   []LayoutSegment
	StateID    [16]byte
}

const defaultStripeUnit = 65536

// PnfsLayoutServer hands out deterministic striped layouts across a pool
// of data servers, keyed by inode modulo the server count.
type PnfsLayoutServer struct {
	mu          sync.RWMutex
	dataServers []DataServerLocation
	fsid        uint64
}

// NewPnfsLayoutServer returns a layout server fronting dataServers for
// the filesystem identified by fsid.
func NewPnfsLayoutServer(dataServers []DataServerLocation, fsid uint64) *PnfsLayoutServer {
	out := make([]DataServerLocation, len(dataServers))
	copy(out, dataServers)
	return &PnfsLayoutServer{dataServers: out, fsid: fsid}
}

// GetLayout returns the layout segment covering [offset, offset+length)
// for inode, striping to one data server chosen by inode mod server count.
// With no data servers registered, it returns an empty Files layout.
func (s *PnfsLayoutServer) GetLayout(inode, offset, length uint64, iomode IoMode) LayoutGetResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := len(s.dataServers)
	if count == 0 {
		return LayoutGetResult{LayoutType: LayoutTypeFiles}
	}

	idx := inode % uint64(count)
	var stateID [16]byte
	putUint64LE(stateID[0:8], inode)

	return LayoutGetResult{
		LayoutType: LayoutTypeFiles,
		Segments: []LayoutSegment{{
			LayoutType:  LayoutTypeFiles,
			Offset:      offset,
			Length:      length,
			IoMode:      iomode,
			DataServers: []DataServerLocation{s.dataServers[idx]},
			StripeUnit:  defaultStripeUnit,
		}},
		StateID: stateID,
	}
}

func putUint64LE(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}

// ServerCount returns the number of registered data servers.
func (s *PnfsLayoutServer) ServerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.dataServers)
}

// AddServer registers a new data server location.
func (s *PnfsLayoutServer) AddServer(location DataServerLocation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dataServers = append(s.dataServers, location)
}

// RemoveServer unregisters the data server at address, reporting whether
// one was found.
func (s *PnfsLayoutServer) RemoveServer(address string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, d := range s.dataServers {
		if d.Address == address {
			s.dataServers = append(s.dataServers[:i], s.dataServers[i+1:]...)
			return true
		}
	}
	return false
}
