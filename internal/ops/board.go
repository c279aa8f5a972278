package ops

import (
	"sort"
	"sync"
	"time"
)

// AccountState is the last-known cycle state of one monitored account.
type AccountState struct {
	Account    string
	LogFile    string
	LastCycle  time.Time
	LastResult string
	LastError  string
}

// Board tracks per-account cycle state for the status endpoint. It is fed
// as a cycle observer and never feeds back into monitor behavior.
type Board struct {
	mu       sync.RWMutex
	accounts map[string]*AccountState
}

// NewBoard creates an empty board.
func NewBoard() *Board {
	return &Board{accounts: make(map[string]*AccountState)}
}

// Track registers an account and its log file before monitoring starts.
func (b *Board) Track(account, logFile string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.accounts[account] = &AccountState{Account: account, LogFile: logFile}
}

// CycleDone records the outcome of one monitor cycle.
func (b *Board) CycleDone(account string, start time.Time, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	state, ok := b.accounts[account]
	if !ok {
		state = &AccountState{Account: account}
		b.accounts[account] = state
	}

	state.LastCycle = start
	if err != nil {
		state.LastResult = "error"
		state.LastError = err.Error()
	} else {
		state.LastResult = "success"
		state.LastError = ""
	}
}

// Statuses returns a copy of all account states, sorted by account name.
func (b *Board) Statuses() []AccountState {
	b.mu.RLock()
	defer b.mu.RUnlock()

	statuses := make([]AccountState, 0, len(b.accounts))
	for _, state := range b.accounts {
		statuses = append(statuses, *state)
	}
	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].Account < statuses[j].Account
	})
	return statuses
}
