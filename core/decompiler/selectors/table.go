// Package selectors resolves 4-byte function selectors and 32-byte event
// topics to their text signatures.
package selectors

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
)

// ErrInvalidSignature is returned for text that is not a name(types) form.
var ErrInvalidSignature = errors.New("invalid signature")

// Resolver looks up labels. Selectors are eight lower-case hex digits
// without prefix.
type Resolver interface {
	Function(selector string) (string, bool)
	Event(topic common.Hash) (string, bool)
}

// Selector returns the 4-byte selector of a canonical signature.
func Selector(sig string) string {
	return hex.EncodeToString(crypto.Keccak256([]byte(sig))[:4])
}

// Topic returns the event topic of a canonical signature.
func Topic(sig string) common.Hash {
	return crypto.Keccak256Hash([]byte(sig))
}

// Canonical strips whitespace and validates the signature shape.
func Canonical(sig string) (string, error) {
	sig = strings.Join(strings.Fields(sig), "")
	if _, err := abi.ParseSelector(sig); err != nil {
		return "", fmt.Errorf("%w %q: %v", ErrInvalidSignature, sig, err)
	}
	return sig, nil
}

// NormalizeSelector lower-cases s and drops a 0x prefix.
func NormalizeSelector(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.TrimPrefix(s, "0x")
}

// Table is an in-memory signature table. Every signature is indexed both
// as a function and as an event. On a selector collision the first
// signature added is kept.
type Table struct {
	functions  map[string]string
	events     map[common.Hash]string
	collisions int
}

func NewTable() *Table {
	return &Table{
		functions: make(map[string]string),
		events:    make(map[common.Hash]string),
	}
}

// Add registers the signatures in order. It stops at the first invalid one.
func (t *Table) Add(sigs ...string) error {
	for _, raw := range sigs {
		sig, err := Canonical(raw)
		if err != nil {
			return err
		}
		if topic := Topic(sig); t.events[topic] == "" {
			t.events[topic] = sig
		}
		sel := Selector(sig)
		if prev, ok := t.functions[sel]; ok {
			if prev != sig {
				t.collisions++
				log.Debug("Selector collision", "selector", "0x"+sel, "kept", prev, "dropped", sig)
			}
			continue
		}
		t.functions[sel] = sig
	}
	return nil
}

func (t *Table) Len() int { return len(t.functions) }

// Collisions is the number of signatures dropped because their selector
// was already taken.
func (t *Table) Collisions() int { return t.collisions }

func (t *Table) Function(selector string) (string, bool) {
	sig, ok := t.functions[NormalizeSelector(selector)]
	return sig, ok
}

func (t *Table) Event(topic common.Hash) (string, bool) {
	sig, ok := t.events[topic]
	return sig, ok
}

// Chain asks each resolver in turn and returns the first hit.
type Chain []Resolver

func (c Chain) Function(selector string) (string, bool) {
	for _, r := range c {
		if sig, ok := r.Function(selector); ok {
			return sig, true
		}
	}
	return "", false
}

func (c Chain) Event(topic common.Hash) (string, bool) {
	for _, r := range c {
		if sig, ok := r.Event(topic); ok {
			return sig, true
		}
	}
	return "", false
}
