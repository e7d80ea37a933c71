// Package profile holds the persisted player profile: the per-level reward
// claim set and the append-only reward transaction ledger.
package profile

import (
	"sort"
	"time"
)

// GuestID is the profile id used when no wallet identity is connected
const GuestID = "guest"

// XPPerLevel is awarded the first time a level is claimed
const XPPerLevel = 100

// TxKind classifies a ledger entry
type TxKind string

const (
	TxReward   TxKind = "reward"
	TxPurchase TxKind = "purchase"
)

// Transaction is one ledger entry. Amounts are in satoshis.
type Transaction struct {
	ID        string    `yaml:"id"`
	Kind      TxKind    `yaml:"kind"`
	Action    string    `yaml:"action"`
	Level     int       `yaml:"level"`
	Amount    int64     `yaml:"amount"`
	Degraded  bool      `yaml:"degraded,omitempty"`
	Timestamp time.Time `yaml:"timestamp"`
}

// Profile is the player's persistent record
type Profile struct {
	ID           string        `yaml:"id"`
	Name         string        `yaml:"name"`
	XP           int           `yaml:"xp"`
	Achievements []string      `yaml:"achievements"`
	Claimed      []int         `yaml:"levels_claimed"`
	Transactions []Transaction `yaml:"transactions"`
	TotalEarned  int64         `yaml:"total_earned"`
	TotalSpent   int64         `yaml:"total_spent"`
}

// New creates an empty profile
func New(id, name string) *Profile {
	if id == "" {
		id = GuestID
	}
	if name == "" {
		name = "Guest"
	}
	return &Profile{ID: id, Name: name}
}

// HasClaimed reports whether the reward for a level was already granted
func (p *Profile) HasClaimed(level int) bool {
	for _, l := range p.Claimed {
		if l == level {
			return true
		}
	}
	return false
}

// MarkClaimed adds level to the claim set.
// It returns false if the level was already present.
func (p *Profile) MarkClaimed(level int) bool {
	if p.HasClaimed(level) {
		return false
	}
	p.Claimed = append(p.Claimed, level)
	sort.Ints(p.Claimed)
	p.XP += XPPerLevel
	return true
}

// CompletedLevels returns the claimed level indices in ascending order
func (p *Profile) CompletedLevels() []int {
	out := make([]int, len(p.Claimed))
	copy(out, p.Claimed)
	return out
}

// Append records a transaction and updates the running totals
func (p *Profile) Append(tx Transaction) {
	if tx.Timestamp.IsZero() {
		tx.Timestamp = time.Now()
	}
	p.Transactions = append(p.Transactions, tx)

	switch tx.Kind {
	case TxReward:
		p.TotalEarned += tx.Amount
	case TxPurchase:
		p.TotalSpent += tx.Amount
	}
}

// AddAchievement records a named achievement once
func (p *Profile) AddAchievement(name string) bool {
	for _, a := range p.Achievements {
		if a == name {
			return false
		}
	}
	p.Achievements = append(p.Achievements, name)
	return true
}

// Net returns earned minus spent
func (p *Profile) Net() int64 {
	return p.TotalEarned - p.TotalSpent
}
