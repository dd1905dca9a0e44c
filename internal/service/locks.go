package service

import "sync"

// AggregateLocks serializes mutations per aggregate (a user's pools, or a
// group's membership+pool+requests). Operations on different aggregates run
// in parallel; two operations on the same aggregate queue up instead of
// interleaving. Lock ordering: when an operation spans a group and a user,
// the group lock is taken first; when it spans two users, locks are taken in
// id order.
type AggregateLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewAggregateLocks creates an empty lock set.
func NewAggregateLocks() *AggregateLocks {
	return &AggregateLocks{locks: make(map[string]*sync.Mutex)}
}

func (l *AggregateLocks) get(key string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	return m
}

// LockUser acquires the lock for a user aggregate and returns the unlock.
func (l *AggregateLocks) LockUser(userID string) func() {
	m := l.get("user:" + userID)
	m.Lock()
	return m.Unlock
}

// LockUsers acquires both users' locks in id order, avoiding deadlock when
// two transfers cross.
func (l *AggregateLocks) LockUsers(a, b string) func() {
	if b < a {
		a, b = b, a
	}
	if a == b {
		return l.LockUser(a)
	}
	first := l.get("user:" + a)
	second := l.get("user:" + b)
	first.Lock()
	second.Lock()
	return func() {
		second.Unlock()
		first.Unlock()
	}
}

// LockGroup acquires the lock for a group aggregate and returns the unlock.
func (l *AggregateLocks) LockGroup(groupID string) func() {
	m := l.get("group:" + groupID)
	m.Lock()
	return m.Unlock
}
