package pvl

import (
	"fmt"
	"iter"
	"slices"
)

// Role distinguishes the three aggregation kinds sharing the Container
// representation.
type Role uint8

const (
	RoleModule Role = iota
	RoleGroup
	RoleObject
)

func (r Role) String() string {
	switch r {
	case RoleModule:
		return "Module"
	case RoleGroup:
		return "Group"
	case RoleObject:
		return "Object"
	default:
		return fmt.Sprintf("Role(%d)", uint8(r))
	}
}

// Entry is one (key, value) pair of a Container.
type Entry struct {
	Key   string
	Value any
}

// Container is an ordered sequence of (key, value) pairs in which keys may
// repeat. It is both the result of parsing and the input to encoding; the
// same representation serves modules, groups and objects, distinguished
// only by a role tag.
//
// Containers are safe to share for reading once built. Mutation assumes
// exclusive access; callers serialize concurrent writers.
type Container struct {
	role    Role
	entries []Entry

	// recovered holds the 1-based line numbers of assignments a lenient
	// parse repaired with EmptyValue placeholders. Only modules carry it.
	recovered []int
}

// NewModule returns an empty module.
func NewModule() *Container { return &Container{role: RoleModule} }

// NewGroup returns an empty group.
func NewGroup() *Container { return &Container{role: RoleGroup} }

// NewObject returns an empty object.
func NewObject() *Container { return &Container{role: RoleObject} }

// Role returns the container's role tag.
func (c *Container) Role() Role { return c.role }

// Len returns the number of entries.
func (c *Container) Len() int { return len(c.entries) }

// Entries returns a copy of the entry sequence in insertion order.
func (c *Container) Entries() []Entry {
	return slices.Clone(c.entries)
}

// All iterates the entries in insertion order.
func (c *Container) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for _, e := range c.entries {
			if !yield(e.Key, e.Value) {
				return
			}
		}
	}
}

// Append adds a new trailing entry. It never overwrites an existing key.
func (c *Container) Append(key string, value any) {
	c.entries = append(c.entries, Entry{Key: key, Value: value})
}

// Get returns the value of the first entry with the given key, or an error
// wrapping ErrNotFound.
func (c *Container) Get(key string) (any, error) {
	for _, e := range c.entries {
		if e.Key == key {
			return e.Value, nil
		}
	}
	return nil, fmt.Errorf("pvl: parameter %q: %w", key, ErrNotFound)
}

// GetAll returns the values of every entry with the given key, in insertion
// order. A missing key yields an empty slice.
func (c *Container) GetAll(key string) []any {
	var values []any
	for _, e := range c.entries {
		if e.Key == key {
			values = append(values, e.Value)
		}
	}
	return values
}

// Set assigns value to key. If the key is absent this is an Append; if
// present, the first occurrence is replaced in place and every other
// occurrence is removed, collapsing the key's multiplicity to one.
func (c *Container) Set(key string, value any) {
	first := -1
	for i, e := range c.entries {
		if e.Key == key {
			first = i
			break
		}
	}
	if first < 0 {
		c.Append(key, value)
		return
	}
	c.entries[first].Value = value
	kept := c.entries[:first+1]
	for _, e := range c.entries[first+1:] {
		if e.Key != key {
			kept = append(kept, e)
		}
	}
	c.entries = kept
}

// Delete removes every entry with the given key and returns how many were
// removed.
func (c *Container) Delete(key string) int {
	n := len(c.entries)
	c.entries = slices.DeleteFunc(c.entries, func(e Entry) bool { return e.Key == key })
	return n - len(c.entries)
}

// PopLast removes and returns the final entry, list-style. It reports false
// on an empty container.
func (c *Container) PopLast() (Entry, bool) {
	if len(c.entries) == 0 {
		return Entry{}, false
	}
	last := c.entries[len(c.entries)-1]
	c.entries = c.entries[:len(c.entries)-1]
	return last, true
}

// Clear removes all entries and recovered-error records.
func (c *Container) Clear() {
	c.entries = nil
	c.recovered = nil
}

// InsertBefore splices entries immediately before the occurrence-th entry
// (0-based, counting only entries whose key matches key). It returns an
// error wrapping ErrNotFound if the key is absent, or ErrIndexOutOfRange if
// the key has fewer occurrences.
func (c *Container) InsertBefore(key string, occurrence int, entries []Entry) error {
	i, err := c.occurrenceIndex(key, occurrence)
	if err != nil {
		return err
	}
	c.entries = slices.Insert(c.entries, i, entries...)
	return nil
}

// InsertAfter splices entries immediately after the occurrence-th entry
// with the given key. Errors as for InsertBefore.
func (c *Container) InsertAfter(key string, occurrence int, entries []Entry) error {
	i, err := c.occurrenceIndex(key, occurrence)
	if err != nil {
		return err
	}
	c.entries = slices.Insert(c.entries, i+1, entries...)
	return nil
}

func (c *Container) occurrenceIndex(key string, occurrence int) (int, error) {
	found := false
	seen := 0
	for i, e := range c.entries {
		if e.Key != key {
			continue
		}
		found = true
		if seen == occurrence {
			return i, nil
		}
		seen++
	}
	if !found {
		return 0, fmt.Errorf("pvl: parameter %q: %w", key, ErrNotFound)
	}
	return 0, fmt.Errorf("pvl: parameter %q occurrence %d: %w", key, occurrence, ErrIndexOutOfRange)
}

// Equal reports whether the two containers hold element-wise equal ordered
// (key, value) sequences. Equality is purely structural: role tags and
// recovered-error records do not participate.
func (c *Container) Equal(other *Container) bool {
	if c == nil || other == nil {
		return c == other
	}
	if len(c.entries) != len(other.entries) {
		return false
	}
	for i, e := range c.entries {
		o := other.entries[i]
		if e.Key != o.Key || !valueEqual(e.Value, o.Value) {
			return false
		}
	}
	return true
}

// Errors returns the 1-based line numbers of assignments recovered during a
// lenient parse, in source order. A fully well-formed input yields nil.
func (c *Container) Errors() []int {
	return slices.Clone(c.recovered)
}

func (c *Container) recordRecovered(line int) {
	c.recovered = append(c.recovered, line)
}
