// Package repotest provides in-memory implementations of the repository
// interfaces for tests.
package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"staking_wallet_back/models"
	"staking_wallet_back/pkg/repository"
)

var (
	_ repository.Wallet     = (*Store)(nil)
	_ repository.Referral   = (*Store)(nil)
	_ repository.Staking    = (*Store)(nil)
	_ repository.Outbox     = (*Store)(nil)
	_ repository.Transactor = (*Store)(nil)
)

// Store keeps every table in maps. Transactions are serialized and restore a
// snapshot of the maps when fn fails; writes made outside a transaction while
// another one rolls back are lost, which is fine for single-writer tests.
type Store struct {
	txMu sync.Mutex
	mu   sync.Mutex

	wallets map[string]models.WalletRecord
	ledger  map[string]models.ReferralLedgerEntry
	stakes  map[string]models.StakingRecord
	events  []models.MirrorEvent
	nextID  int64

	failures map[string]error
}

func NewStore() *Store {
	return &Store{
		wallets:  make(map[string]models.WalletRecord),
		ledger:   make(map[string]models.ReferralLedgerEntry),
		stakes:   make(map[string]models.StakingRecord),
		failures: make(map[string]error),
	}
}

// Repository exposes the store through the repository aggregate.
func (s *Store) Repository() *repository.Repository {
	return &repository.Repository{
		Wallet:     s,
		Referral:   s,
		Staking:    s,
		Outbox:     s,
		Transactor: s,
	}
}

// FailOn makes the named method return err until cleared with a nil err.
func (s *Store) FailOn(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, method)
		return
	}
	s.failures[method] = err
}

func (s *Store) fail(method string) error {
	return s.failures[method]
}

func (s *Store) WithinTransaction(ctx context.Context, fn func(repos *repository.Repository) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.lockedFail("WithinTransaction"); err != nil {
		return err
	}

	saved := s.snapshot()
	repos := s.Repository()
	repos.Transactor = joined{repos: repos}
	if err := fn(repos); err != nil {
		s.restore(saved)
		return err
	}
	return nil
}

type joined struct {
	repos *repository.Repository
}

func (j joined) WithinTransaction(_ context.Context, fn func(repos *repository.Repository) error) error {
	return fn(j.repos)
}

type state struct {
	wallets map[string]models.WalletRecord
	ledger  map[string]models.ReferralLedgerEntry
	stakes  map[string]models.StakingRecord
	events  []models.MirrorEvent
}

func (s *Store) snapshot() state {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := state{
		wallets: make(map[string]models.WalletRecord, len(s.wallets)),
		ledger:  make(map[string]models.ReferralLedgerEntry, len(s.ledger)),
		stakes:  make(map[string]models.StakingRecord, len(s.stakes)),
		events:  append([]models.MirrorEvent(nil), s.events...),
	}
	for k, v := range s.wallets {
		st.wallets[k] = v
	}
	for k, v := range s.ledger {
		st.ledger[k] = v
	}
	for k, v := range s.stakes {
		st.stakes[k] = v
	}
	return st
}

func (s *Store) restore(st state) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wallets = st.wallets
	s.ledger = st.ledger
	s.stakes = st.stakes
	s.events = st.events
}

func (s *Store) lockedFail(method string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fail(method)
}

// Wallet

func (s *Store) GetWallet(_ context.Context, address string) (models.WalletRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetWallet"); err != nil {
		return models.WalletRecord{}, err
	}
	w, ok := s.wallets[address]
	if !ok {
		return models.WalletRecord{}, errors.Wrap(repository.ErrNotFound, "get wallet")
	}
	return w, nil
}

func (s *Store) GetWalletForUpdate(ctx context.Context, address string) (models.WalletRecord, error) {
	return s.GetWallet(ctx, address)
}

func (s *Store) GetWalletByReferralCode(_ context.Context, code string) (models.WalletRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetWalletByReferralCode"); err != nil {
		return models.WalletRecord{}, err
	}
	for _, w := range s.wallets {
		if w.ReferralCode == code {
			return w, nil
		}
	}
	return models.WalletRecord{}, errors.Wrap(repository.ErrNotFound, "get wallet by referral code")
}

func (s *Store) CreateWallet(_ context.Context, wallet *models.WalletRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreateWallet"); err != nil {
		return err
	}
	if _, ok := s.wallets[wallet.WalletAddress]; ok {
		return errors.Wrap(repository.ErrDuplicate, "create wallet")
	}
	if s.codeTaken(wallet.ReferralCode) {
		return errors.Wrap(repository.ErrReferralCodeTaken, "create wallet")
	}
	if wallet.ReferralState == "" {
		wallet.ReferralState = models.ReferralUndecided
	}
	now := time.Now()
	wallet.Version = 1
	wallet.CreatedAt = now
	wallet.UpdatedAt = now
	s.wallets[wallet.WalletAddress] = *wallet
	return nil
}

func (s *Store) EnsureWallet(_ context.Context, address, referralCode string) (models.WalletRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("EnsureWallet"); err != nil {
		return models.WalletRecord{}, err
	}
	if w, ok := s.wallets[address]; ok {
		return w, nil
	}
	if s.codeTaken(referralCode) {
		return models.WalletRecord{}, errors.Wrap(repository.ErrReferralCodeTaken, "ensure wallet")
	}
	w := s.newWallet(address, referralCode)
	s.wallets[address] = w
	return w, nil
}

func (s *Store) SetReferralState(_ context.Context, address string, st models.ReferralState, jreferal *string) (models.WalletRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("SetReferralState"); err != nil {
		return models.WalletRecord{}, err
	}
	w, ok := s.wallets[address]
	if !ok {
		return models.WalletRecord{}, errors.Wrap(repository.ErrNotFound, "set referral state")
	}
	if w.ReferralState != models.ReferralUndecided {
		return models.WalletRecord{}, errors.Wrap(repository.ErrStateConflict, "set referral state")
	}
	w.ReferralState = st
	w.Jreferal = jreferal
	w.Version++
	w.UpdatedAt = time.Now()
	s.wallets[address] = w
	return w, nil
}

// maxStakedBalance matches the NUMERIC(78,18) amount_staked column.
var maxStakedBalance = decimal.New(1, 60)

func (s *Store) AddStake(_ context.Context, address string, amount decimal.Decimal, at time.Time, referralCode string) (models.WalletRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("AddStake"); err != nil {
		return models.WalletRecord{}, err
	}
	w, ok := s.wallets[address]
	if w.AmountStaked.Add(amount).Abs().GreaterThanOrEqual(maxStakedBalance) {
		return models.WalletRecord{}, errors.Wrap(repository.ErrOutOfRange, "add stake")
	}
	if !ok {
		if s.codeTaken(referralCode) {
			return models.WalletRecord{}, errors.Wrap(repository.ErrReferralCodeTaken, "add stake")
		}
		w = s.newWallet(address, referralCode)
		w.AmountStaked = amount
	} else {
		w.AmountStaked = w.AmountStaked.Add(amount)
		w.Version++
	}
	at = at.UTC()
	w.LastTransactionAt = &at
	w.UpdatedAt = time.Now()
	s.wallets[address] = w
	return w, nil
}

func (s *Store) newWallet(address, referralCode string) models.WalletRecord {
	now := time.Now()
	return models.WalletRecord{
		WalletAddress: address,
		ReferralCode:  referralCode,
		ReferralState: models.ReferralUndecided,
		AmountStaked:  decimal.Zero,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func (s *Store) codeTaken(code string) bool {
	for _, w := range s.wallets {
		if w.ReferralCode == code {
			return true
		}
	}
	return false
}

// Referral ledger

func (s *Store) GetReferralEntry(_ context.Context, address string) (models.ReferralLedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetReferralEntry"); err != nil {
		return models.ReferralLedgerEntry{}, err
	}
	e, ok := s.ledger[address]
	if !ok {
		return models.ReferralLedgerEntry{}, errors.Wrap(repository.ErrNotFound, "get referral entry")
	}
	return e, nil
}

func (s *Store) UpsertReferralEntry(_ context.Context, entry *models.ReferralLedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("UpsertReferralEntry"); err != nil {
		return err
	}
	now := time.Now()
	entry.CreatedAt = now
	if prev, ok := s.ledger[entry.WalletAddress]; ok {
		entry.CreatedAt = prev.CreatedAt
	}
	entry.UpdatedAt = now
	s.ledger[entry.WalletAddress] = *entry
	return nil
}

// Staking records

func (s *Store) CreateStakingRecord(_ context.Context, record *models.StakingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreateStakingRecord"); err != nil {
		return err
	}
	if _, ok := s.stakes[record.TxHash]; ok {
		return errors.Wrap(repository.ErrDuplicate, "create staking record")
	}
	if record.Status == "" {
		record.Status = models.StakePending
	}
	s.nextID++
	now := time.Now()
	record.ID = s.nextID
	record.CreatedAt = now
	record.UpdatedAt = now
	s.stakes[record.TxHash] = *record
	return nil
}

func (s *Store) UpdateStakingStatus(_ context.Context, txHash string, status models.StakeStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("UpdateStakingStatus"); err != nil {
		return err
	}
	r, ok := s.stakes[txHash]
	if !ok || r.Status != models.StakePending {
		return errors.Wrapf(repository.ErrNotFound, "no pending staking record %s", txHash)
	}
	r.Status = status
	r.UpdatedAt = time.Now()
	s.stakes[txHash] = r
	return nil
}

func (s *Store) GetStakingRecord(_ context.Context, txHash string) (models.StakingRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.stakes[txHash]
	if !ok {
		return models.StakingRecord{}, errors.Wrap(repository.ErrNotFound, "get staking record")
	}
	return r, nil
}

func (s *Store) ListStakingRecords(_ context.Context, address string, limit int) ([]models.StakingRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ListStakingRecords"); err != nil {
		return nil, err
	}
	records := []models.StakingRecord{}
	for _, r := range s.stakes {
		if r.WalletAddress == address {
			records = append(records, r)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID > records[j].ID })
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// Outbox

func (s *Store) EnqueueMirrorEvent(_ context.Context, event *models.MirrorEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("EnqueueMirrorEvent"); err != nil {
		return err
	}
	event.CreatedAt = time.Now()
	s.events = append(s.events, *event)
	return nil
}

func (s *Store) PendingMirrorEvents(_ context.Context, limit int) ([]models.MirrorEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("PendingMirrorEvents"); err != nil {
		return nil, err
	}
	pending := []models.MirrorEvent{}
	for _, e := range s.events {
		if e.RelayedAt == nil {
			pending = append(pending, e)
		}
		if limit > 0 && len(pending) == limit {
			break
		}
	}
	return pending, nil
}

func (s *Store) MarkMirrorEventsRelayed(_ context.Context, ids []string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("MarkMirrorEventsRelayed"); err != nil {
		return err
	}
	marked := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		marked[id] = struct{}{}
	}
	for i, e := range s.events {
		if _, ok := marked[e.ID.String()]; ok {
			relayedAt := at
			s.events[i].RelayedAt = &relayedAt
		}
	}
	return nil
}

// Inspection helpers

func (s *Store) Wallets() []models.WalletRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.WalletRecord, 0, len(s.wallets))
	for _, w := range s.wallets {
		out = append(out, w)
	}
	return out
}

func (s *Store) LedgerEntries() []models.ReferralLedgerEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ReferralLedgerEntry, 0, len(s.ledger))
	for _, e := range s.ledger {
		out = append(out, e)
	}
	return out
}

func (s *Store) StakingRecords() []models.StakingRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.StakingRecord, 0, len(s.stakes))
	for _, r := range s.stakes {
		out = append(out, r)
	}
	return out
}

func (s *Store) MirrorEvents() []models.MirrorEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.MirrorEvent(nil), s.events...)
}
