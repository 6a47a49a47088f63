package store

import (
	"context"
	"strconv"
	"sync"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

// Config holds the connection parameters for a session.
type Config struct {
	Host      string
	Port      int
	User      string
	Password  string
	Database  string // optional initial database
	Collation string
}

// DSN lowers the config to a go-sql-driver DSN. The charset is fixed to
// utf8mb4 and client-side parameter interpolation stays disabled so values
// always travel as bound parameters.
func (c Config) DSN() string {
	port := c.Port
	if port == 0 {
		port = 3306
	}

	cfg := mysql.NewConfig()
	cfg.User = c.User
	cfg.Passwd = c.Password
	cfg.Net = "tcp"
	cfg.Addr = c.Host + ":" + strconv.Itoa(port)
	cfg.DBName = c.Database
	cfg.ParseTime = true
	cfg.InterpolateParams = false
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	if c.Collation != "" {
		cfg.Collation = c.Collation
	}
	return cfg.FormatDSN()
}

// Open establishes a new session. Connection failures are reported as
// *ErrConnection wrapping the driver cause.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	return OpenDSN(ctx, cfg.DSN())
}

// OpenDSN establishes a new session from a raw go-sql-driver DSN.
func OpenDSN(ctx context.Context, dsn string) (*Store, error) {
	db, err := sqlx.ConnectContext(ctx, "mysql", dsn)
	if err != nil {
		return nil, &ErrConnection{Cause: err}
	}
	return newStore(db), nil
}

func newStore(db *sqlx.DB) *Store {
	s := &Store{
		db:  db,
		log: log.With().Str("session", uuid.NewString()).Logger(),
	}
	s.beginTx = func(ctx context.Context) (txConn, error) {
		return db.BeginTxx(ctx, nil)
	}
	return s
}

// Factory hands out one shared Store per process. Callers that need an
// isolated session call Open themselves; everyone else takes the shared
// handle by injection instead of reaching for a package-level global.
type Factory struct {
	cfg  Config
	once sync.Once
	st   *Store
	err  error
}

// NewFactory creates a factory for the given connection parameters.
func NewFactory(cfg Config) *Factory {
	return &Factory{cfg: cfg}
}

// Acquire returns the shared session, opening it on first call. Later calls
// return the same instance and ignore the stored config changes.
func (f *Factory) Acquire(ctx context.Context) (*Store, error) {
	f.once.Do(func() {
		f.st, f.err = Open(ctx, f.cfg)
	})
	return f.st, f.err
}

// Close releases the shared session if it was opened.
func (f *Factory) Close() error {
	if f.st == nil {
		return nil
	}
	return f.st.Close()
}
