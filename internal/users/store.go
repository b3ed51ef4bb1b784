package users

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/yads-project/yads/internal/models"
)

const keyPrefix = "user:"

var (
	ErrNotFound        = errors.New("users: not found")
	ErrInvalidUsername = errors.New("users: invalid username")
)

// Store persists users in badger and keeps an ordered in-memory index for
// listing.
type Store struct {
	db    *badger.DB
	index *models.UserTree
	now   func() time.Time
}

// Open opens the store described by a DATABASE_URL: "memory://" for an
// in-memory database or "badger:///path/to/dir".
func Open(databaseURL string, logger *slog.Logger) (*Store, error) {
	opts, err := optionsFor(databaseURL)
	if err != nil {
		return nil, err
	}
	if logger != nil {
		opts = opts.WithLogger(badgerLogger{logger.With("component", "badger")})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}

	s := &Store{db: db, index: models.NewUserTree(), now: time.Now}
	if err := s.loadIndex(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func optionsFor(databaseURL string) (badger.Options, error) {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return badger.Options{}, fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	switch u.Scheme {
	case "memory":
		return badger.DefaultOptions("").WithInMemory(true), nil
	case "badger":
		dir := u.Host + u.Path
		if dir == "" {
			return badger.Options{}, fmt.Errorf("DATABASE_URL %q has no path", databaseURL)
		}
		return badger.DefaultOptions(dir), nil
	default:
		return badger.Options{}, fmt.Errorf("unsupported DATABASE_URL scheme %q", u.Scheme)
	}
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) loadIndex() error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var u models.User
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &u)
			})
			if err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
			s.index.Set(u)
		}
		return nil
	})
}

// Put creates or replaces a user. A zero DateJoined is set to now.
func (s *Store) Put(u models.User) (models.User, error) {
	u.Username = strings.TrimSpace(u.Username)
	if u.Username == "" || strings.ContainsAny(u.Username, " /") {
		return models.User{}, fmt.Errorf("%w: %q", ErrInvalidUsername, u.Username)
	}
	if u.DateJoined.IsZero() {
		u.DateJoined = s.now().UTC()
	}

	data, err := json.Marshal(u)
	if err != nil {
		return models.User{}, fmt.Errorf("encode user: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(u.Username), data)
	})
	if err != nil {
		return models.User{}, fmt.Errorf("store user %s: %w", u.Username, err)
	}

	s.index.Set(u)
	return u, nil
}

func (s *Store) Get(username string) (models.User, error) {
	u, ok := s.index.Get(username)
	if !ok {
		return models.User{}, ErrNotFound
	}
	return u, nil
}

func (s *Store) Delete(username string) error {
	if _, ok := s.index.Get(username); !ok {
		return ErrNotFound
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key(username))
	})
	if err != nil {
		return fmt.Errorf("delete user %s: %w", username, err)
	}
	s.index.Delete(username)
	return nil
}

// SetActive flips a user's active flag and returns the updated user.
func (s *Store) SetActive(username string, active bool) (models.User, error) {
	u, err := s.Get(username)
	if err != nil {
		return models.User{}, err
	}
	u.IsActive = active
	return s.Put(u)
}

// List returns users matching f, newest first.
func (s *Store) List(f models.UserFilter) []models.User {
	now := s.now()
	return s.index.Filter(func(u models.User) bool {
		return f.Match(u, now)
	})
}

func (s *Store) Count() int {
	return s.index.Len()
}

func key(username string) []byte {
	return []byte(keyPrefix + username)
}

type badgerLogger struct {
	logger *slog.Logger
}

func (l badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l badgerLogger) Infof(format string, args ...any) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l badgerLogger) Debugf(format string, args ...any) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}
