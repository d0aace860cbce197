package clientplane

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDelegationGrantReadsCoexist(t *testing.T) {
	m := NewDelegationManager()
	now := time.Now()

	_, err := m.Grant(1, DelegationRead, "client-a", now)
	require.NoError(t, err)
	_, err = m.Grant(1, DelegationRead, "client-b", now)
	assert.NoError(t, err)
}

func TestDelegationGrantWriteExcludesOthers(t *testing.T) {
	m := NewDelegationManager()
	now := time.Now()

	_, err := m.Grant(1, DelegationWrite, "client-a", now)
	require.NoError(t, err)

	_, err = m.Grant(1, DelegationRead, "client-b", now)
	assert.Error(t, err)

	_, err = m.Grant(1, DelegationWrite, "client-b", now)
	assert.Error(t, err)
}

func TestDelegationReadBlocksNewWrite(t *testing.T) {
	m := NewDelegationManager()
	now := time.Now()

	_, err := m.Grant(1, DelegationRead, "client-a", now)
	require.NoError(t, err)

	_, err = m.Grant(1, DelegationWrite, "client-b", now)
	assert.Error(t, err)
}

func TestDelegationRecallForIno(t *testing.T) {
	m := NewDelegationManager()
	now := time.Now()
	id, _ := m.Grant(1, DelegationWrite, "client-a", now)

	count := m.RecallForIno(1, now)
	assert.Equal(t, 1, count)

	d, _ := m.Get(id)
	assert.Equal(t, DelegationRecalled, d.State)
}

func TestDelegationReturnDeleg(t *testing.T) {
	m := NewDelegationManager()
	now := time.Now()
	id, _ := m.Grant(1, DelegationWrite, "client-a", now)

	require.NoError(t, m.ReturnDeleg(id, now))

	d, _ := m.Get(id)
	assert.Equal(t, DelegationReturned, d.State)

	_, err := m.Grant(1, DelegationWrite, "client-b", now)
	assert.NoError(t, err)
}

func TestDelegationReturnUnknown(t *testing.T) {
	m := NewDelegationManager()
	err := m.ReturnDeleg(999, time.Now())
	assert.Error(t, err)
}

func TestDelegationRevokeExpired(t *testing.T) {
	m := NewDelegationManager()
	now := time.Now()
	id, _ := m.Grant(1, DelegationWrite, "client-a", now)

	count := m.RevokeExpired(now.Add(time.Minute))
	assert.Equal(t, 1, count)

	d, _ := m.Get(id)
	assert.Equal(t, DelegationRevoked, d.State)
}

func TestDelegationActiveOnIno(t *testing.T) {
	m := NewDelegationManager()
	now := time.Now()
	m.Grant(1, DelegationRead, "client-a", now)
	m.Grant(1, DelegationRead, "client-b", now)

	active := m.ActiveOnIno(1)
	assert.Len(t, active, 2)
}
