package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testServer(address string) DataServerLocation {
	var id [16]byte
	for i := range id {
		id[i] = 0xAB
	}
	return DataServerLocation{Address: address, DeviceID: id}
}

func TestPnfsNewServer(t *testing.T) {
	s := NewPnfsLayoutServer([]DataServerLocation{testServer("192.168.1.1:2001")}, 1)
	assert.Equal(t, 1, s.ServerCount())
}

func TestPnfsEmptyServer(t *testing.T) {
	s := NewPnfsLayoutServer(nil, 1)
	assert.Equal(t, 0, s.ServerCount())

	layout := s.GetLayout(123, 0, 1000000, IoModeRead)
	assert.Empty(t, layout.Segments)
}

func TestPnfsSingleServerLayout(t *testing.T) {
	s := NewPnfsLayoutServer([]DataServerLocation{testServer("192.168.1.1:2001")}, 1)
	layout := s.GetLayout(123, 0, 1000000, IoModeRead)

	assert.Len(t, layout.Segments, 1)
	assert.Equal(t, LayoutTypeFiles, layout.Segments[0].LayoutType)
	assert.Equal(t, uint64(0), layout.Segments[0].Offset)
	assert.Equal(t, uint64(1000000), layout.Segments[0].Length)
	assert.Equal(t, IoModeRead, layout.Segments[0].IoMode)
}

func TestPnfsMultipleServersStripe(t *testing.T) {
	s := NewPnfsLayoutServer([]DataServerLocation{
		testServer("192.168.1.1:2001"),
		testServer("192.168.1.2:2001"),
		testServer("192.168.1.3:2001"),
	}, 1)

	l0 := s.GetLayout(0, 0, 1000000, IoModeReadWrite)
	assert.Equal(t, "192.168.1.1:2001", l0.Segments[0].DataServers[0].Address)

	l1 := s.GetLayout(1, 0, 1000000, IoModeReadWrite)
	assert.Equal(t, "192.168.1.2:2001", l1.Segments[0].DataServers[0].Address)

	l2 := s.GetLayout(2, 0, 1000000, IoModeReadWrite)
	assert.Equal(t, "192.168.1.3:2001", l2.Segments[0].DataServers[0].Address)
}

func TestPnfsIoModeFromUint32(t *testing.T) {
	m, ok := IoModeFromUint32(1)
	assert.True(t, ok)
	assert.Equal(t, IoModeRead, m)

	m, ok = IoModeFromUint32(2)
	assert.True(t, ok)
	assert.Equal(t, IoModeReadWrite, m)

	m, ok = IoModeFromUint32(3)
	assert.True(t, ok)
	assert.Equal(t, IoModeAny, m)

	_, ok = IoModeFromUint32(99)
	assert.False(t, ok)
}

func TestPnfsAddServer(t *testing.T) {
	s := NewPnfsLayoutServer([]DataServerLocation{testServer("192.168.1.1:2001")}, 1)
	s.AddServer(testServer("192.168.1.2:2001"))
	assert.Equal(t, 2, s.ServerCount())
}

func TestPnfsRemoveServerExisting(t *testing.T) {
	s := NewPnfsLayoutServer([]DataServerLocation{
		testServer("192.168.1.1:2001"),
		testServer("192.168.1.2:2001"),
	}, 1)

	assert.True(t, s.RemoveServer("192.168.1.1:2001"))
	assert.Equal(t, 1, s.ServerCount())
}

func TestPnfsRemoveServerNotExisting(t *testing.T) {
	s := NewPnfsLayoutServer([]DataServerLocation{testServer("192.168.1.1:2001")}, 1)
	assert.False(t, s.RemoveServer("192.168.1.99:2001"))
	assert.Equal(t, 1, s.ServerCount())
}

func TestPnfsLayoutStateID(t *testing.T) {
	s := NewPnfsLayoutServer([]DataServerLocation{testServer("192.168.1.1:2001")}, 1)
	layout := s.GetLayout(12345, 0, 1000000, IoModeRead)

	var want [8]byte
	putUint64LE(want[:], 12345)
	assert.Equal(t, want[:], layout.StateID[0:8])
}

func TestPnfsStripeUnit(t *testing.T) {
	s := NewPnfsLayoutServer([]DataServerLocation{testServer("192.168.1.1:2001")}, 1)
	layout := s.GetLayout(123, 0, 1000000, IoModeRead)
	assert.Equal(t, uint64(65536), layout.Segments[0].StripeUnit)
}

func TestPnfsLayoutOffsetLength(t *testing.T) {
	s := NewPnfsLayoutServer([]DataServerLocation{testServer("192.168.1.1:2001")}, 1)
	layout := s.GetLayout(123, 1000, 5000, IoModeReadWrite)
	assert.Equal(t, uint64(1000), layout.Segments[0].Offset)
	assert.Equal(t, uint64(5000), layout.Segments[0].Length)
}
