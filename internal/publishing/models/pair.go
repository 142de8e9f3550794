package models

import (
	"bytes"

	id "obligo/pkg/domain"
)

// Pair is the composite key of an assignment.
type Pair struct {
	ObligationID   id.ObligationID
	OrganizationID id.OrganizationID
}

func NewPair(obligationID id.ObligationID, organizationID id.OrganizationID) Pair {
	return Pair{ObligationID: obligationID, OrganizationID: organizationID}
}

// Compare orders pairs by obligation ID bytes, then organization ID bytes.
func (p Pair) Compare(o Pair) int {
	if c := bytes.Compare(p.ObligationID[:], o.ObligationID[:]); c != 0 {
		return c
	}
	return bytes.Compare(p.OrganizationID[:], o.OrganizationID[:])
}

// PairSet is an insertion-ordered set of pairs.
// The zero value is not usable; construct with NewPairSet.
type PairSet struct {
	index map[Pair]struct{}
	order []Pair
}

func NewPairSet(capacity int) *PairSet {
	return &PairSet{
		index: make(map[Pair]struct{}, capacity),
		order: make([]Pair, 0, capacity),
	}
}

// PairSetOf builds a set from pairs, keeping the first occurrence of each.
func PairSetOf(pairs ...Pair) *PairSet {
	s := NewPairSet(len(pairs))
	for _, p := range pairs {
		s.Add(p)
	}
	return s
}

// Add inserts p and reports whether it was not already present.
func (s *PairSet) Add(p Pair) bool {
	if _, ok := s.index[p]; ok {
		return false
	}
	s.index[p] = struct{}{}
	s.order = append(s.order, p)
	return true
}

// Has is nil-safe: a nil set contains nothing.
func (s *PairSet) Has(p Pair) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[p]
	return ok
}

func (s *PairSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Pairs returns the members in insertion order. The slice must not be modified.
func (s *PairSet) Pairs() []Pair {
	if s == nil {
		return nil
	}
	return s.order
}

// Merge adds every member of other.
func (s *PairSet) Merge(other *PairSet) {
	for _, p := range other.Pairs() {
		s.Add(p)
	}
}
