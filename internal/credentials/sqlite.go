package credentials

import (
	"database/sql"
	_ "embed"
	"log"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/tavsec/gin-healthcheck/checks"

	"github.com/rm-hull/inventory-console/internal"
	"github.com/rm-hull/inventory-console/internal/models"
)

//go:embed sql/select_credentials.sql
var selectCredentialsSQL string

//go:embed sql/upsert_credentials.sql
var upsertCredentialsSQL string

//go:embed sql/delete_credentials.sql
var deleteCredentialsSQL string

// SQLiteStore persists the token pair in a single-row table so that a CLI
// session survives between invocations. Reads are served from memory.
type SQLiteStore struct {
	mu   sync.RWMutex
	db   *sql.DB
	cred models.Credential
}

// OpenSQLiteStore connects to (and migrates) the database at dbPath, then
// loads any previously saved credentials.
func OpenSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := internal.Connect(dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize session database")
	}

	if err := internal.Migrate(dbPath); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to migrate session database")
	}

	store, err := NewSQLiteStore(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	store := &SQLiteStore{db: db}

	err := db.QueryRow(selectCredentialsSQL).Scan(&store.cred.AccessToken, &store.cred.RefreshToken)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrap(err, "failed to load credentials")
	}

	return store, nil
}

func (s *SQLiteStore) State() models.Credential {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cred
}

func (s *SQLiteStore) SetAccessToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.cred
	next.AccessToken = token
	return s.save(next)
}

func (s *SQLiteStore) SetRefreshToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.cred
	next.RefreshToken = token
	return s.save(next)
}

func (s *SQLiteStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(deleteCredentialsSQL); err != nil {
		return errors.Wrap(err, "failed to clear credentials")
	}
	s.cred = models.Credential{}
	return nil
}

// save must be called with s.mu held.
func (s *SQLiteStore) save(next models.Credential) error {
	_, err := s.db.Exec(upsertCredentialsSQL, next.AccessToken, next.RefreshToken, time.Now().UTC())
	if err != nil {
		return errors.Wrap(err, "failed to save credentials")
	}
	s.cred = next
	return nil
}

func (s *SQLiteStore) Check() checks.Check {
	return checks.SqlCheck{Sql: s.db}
}

func (s *SQLiteStore) Close() error {
	log.Println("closing session database")
	return s.db.Close()
}
