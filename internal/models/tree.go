package models

import (
	"sync"

	"github.com/tidwall/btree"
)

// UserTree keeps users ordered newest-joined first, ties broken by username.
type UserTree struct {
	mu     sync.RWMutex
	tree   *btree.BTreeG[User]
	byName map[string]User
}

func byDateJoinedDesc(a, b User) bool {
	if !a.DateJoined.Equal(b.DateJoined) {
		return a.DateJoined.After(b.DateJoined)
	}
	return a.Username < b.Username
}

func NewUserTree() *UserTree {
	return &UserTree{
		tree: btree.NewBTreeGOptions(byDateJoinedDesc, btree.Options{
			NoLocks: true,
		}),
		byName: make(map[string]User),
	}
}

func (t *UserTree) Set(u User) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if prev, ok := t.byName[u.Username]; ok {
		t.tree.Delete(prev)
	}
	t.tree.Set(u)
	t.byName[u.Username] = u
}

func (t *UserTree) Get(username string) (User, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	u, ok := t.byName[username]
	return u, ok
}

func (t *UserTree) Delete(username string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	prev, ok := t.byName[username]
	if !ok {
		return false
	}
	t.tree.Delete(prev)
	delete(t.byName, username)
	return true
}

func (t *UserTree) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.tree.Len()
}

// Filter returns matching users in tree order.
func (t *UserTree) Filter(match func(User) bool) []User {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var out []User
	t.tree.Scan(func(u User) bool {
		if match == nil || match(u) {
			out = append(out, u)
		}
		return true
	})
	return out
}
