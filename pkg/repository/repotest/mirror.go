package repotest

import (
	"context"
	"sync"

	"staking_wallet_back/models"
	"staking_wallet_back/pkg/repository"
)

var _ repository.Mirror = (*Mirror)(nil)

// Mirror is an in-memory repository.Mirror with the same version guard as
// the Redis script.
type Mirror struct {
	mu        sync.Mutex
	snapshots map[string]models.WalletSnapshot
	err       error
}

func NewMirror() *Mirror {
	return &Mirror{snapshots: make(map[string]models.WalletSnapshot)}
}

func (m *Mirror) ApplySnapshot(_ context.Context, snapshot models.WalletSnapshot) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	if current, ok := m.snapshots[snapshot.WalletAddress]; ok && current.Version >= snapshot.Version {
		return false, nil
	}
	m.snapshots[snapshot.WalletAddress] = snapshot
	return true, nil
}

func (m *Mirror) GetSnapshot(_ context.Context, address string) (models.WalletSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return models.WalletSnapshot{}, m.err
	}
	snapshot, ok := m.snapshots[address]
	if !ok {
		return models.WalletSnapshot{}, repository.ErrSnapshotNotFound
	}
	return snapshot, nil
}

func (m *Mirror) SetErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}
