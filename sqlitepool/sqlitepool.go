// Package sqlitepool implements a pool of SQLite database connections.
package sqlitepool

import (
	"context"
	"errors"
	"fmt"

	"github.com/sqltyped/sqlite"
	"github.com/sqltyped/sqlite/sqliteh"
)

// A Pool is a fixed-size pool of SQLite database connections.
// One is reserved for writable transactions, the others are
// used for read-only transactions.
type Pool struct {
	poolSize    int
	rwConnFree  chan *sqlite.Conn // cap == 1
	roConnsFree chan *sqlite.Conn // cap == poolSize-1
	tracer      sqliteh.Tracer
	closed      chan struct{}
}

// NewPool creates a Pool of poolSize database connections.
//
// For each connection, initFn is called to initialize the connection.
// Tracer is used to report statistics about the use of the Pool.
func NewPool(filename string, poolSize int, initFn func(*sqlite.Conn) error, tracer sqliteh.Tracer) (p *Pool, err error) {
	if poolSize < 2 {
		return nil, fmt.Errorf("sqlitepool.NewPool: poolSize=%d is too small", poolSize)
	}
	p = &Pool{
		poolSize:    poolSize,
		rwConnFree:  make(chan *sqlite.Conn, 1),
		roConnsFree: make(chan *sqlite.Conn, poolSize-1),
		tracer:      tracer,
		closed:      make(chan struct{}),
	}
	defer func() {
		if err == nil {
			return
		}
		err = fmt.Errorf("sqlitepool.NewPool: %w", err)
		select {
		case conn := <-p.rwConnFree:
			conn.Close()
		default:
		}
		for {
			select {
			case conn := <-p.roConnsFree:
				conn.Close()
			default:
				p = nil
				return
			}
		}
	}()
	for i := 0; i < poolSize; i++ {
		conn, err := sqlite.OpenConn(filename)
		if err != nil {
			return p, err
		}
		conn.SetTracer(tracer)
		if initFn != nil {
			if err := initFn(conn); err != nil {
				conn.Close()
				return p, err
			}
		}
		if i == 0 {
			p.rwConnFree <- conn
		} else {
			if err := conn.ExecScript("PRAGMA query_only=true"); err != nil {
				conn.Close()
				return p, err
			}
			p.roConnsFree <- conn
		}
	}

	return p, nil
}

// Close closes the pool's connections. It waits for all outstanding
// transactions to finish first.
func (p *Pool) Close() error {
	select {
	case <-p.closed:
		return errors.New("pool already closed")
	default:
	}
	close(p.closed)

	c := <-p.rwConnFree
	err := c.Close()

	for i := 0; i < p.poolSize-1; i++ {
		c := <-p.roConnsFree
		err2 := c.Close()
		if err == nil {
			err = err2
		}
	}
	return err
}

var errPoolClosed = fmt.Errorf("%w: sqlitepool closed", context.Canceled)

// BeginTx creates a writable transaction using BEGIN IMMEDIATE.
func (p *Pool) BeginTx(ctx context.Context) (*Tx, error) {
	select {
	case <-p.closed:
		return nil, errPoolClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	case conn := <-p.rwConnFree:
		tx := &Tx{Rx: &Rx{pool: p, conn: conn, inTx: true}}
		err := tx.Exec("BEGIN IMMEDIATE")
		if p.tracer != nil {
			p.tracer.BeginTx(conn.ID(), false, err)
		}
		if err != nil {
			p.rwConnFree <- conn // can't block, buffer is big enough
			return nil, err
		}
		return tx, nil
	}
}

// BeginRx creates a read-only transaction.
func (p *Pool) BeginRx(ctx context.Context) (*Rx, error) {
	select {
	case <-p.closed:
		return nil, errPoolClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	case conn := <-p.roConnsFree:
		rx := &Rx{pool: p, conn: conn}
		err := rx.Exec("BEGIN")
		if p.tracer != nil {
			p.tracer.BeginTx(conn.ID(), true, err)
		}
		if err != nil {
			p.roConnsFree <- conn // can't block, buffer is big enough
			return nil, err
		}
		return rx, nil
	}
}

// Rx is a read-only transaction.
//
// It is *not* safe for concurrent use.
type Rx struct {
	pool *Pool
	conn *sqlite.Conn
	inTx bool // true if this Rx is embedded in a writable Tx

	// OnRollback is an optional function called after rollback.
	// If Rx is part of a Tx and it is committed, then OnRollback
	// is not called.
	OnRollback func()
}

// Exec executes an SQL statement with no result.
func (rx *Rx) Exec(sql string, args ...any) error {
	return rx.conn.Exec(sql, args...)
}

// Prepare prepares an SQL statement.
// The Stmt is cached on the connection, so subsequent calls are fast.
func (rx *Rx) Prepare(sql string) *sqlite.Stmt {
	stmt, err := rx.conn.Prepare(sql)
	if err != nil {
		// Persistent statements are constant strings hardcoded into
		// programs. Failing to prepare one means the string is bad.
		// Ideally we would detect this at compile time, but barring
		// that, there is no point returning the error because this
		// is not something the program can recover from or handle.
		panic(err)
	}
	return stmt
}

// Conn returns the underlying database connection.
//
// Be careful: a transaction is in progress. Any use of BEGIN/COMMIT/ROLLBACK
// should be modelled as a nested transaction, and when done the original
// outer transaction should be left in-progress.
func (rx *Rx) Conn() *sqlite.Conn {
	return rx.conn
}

// Rollback executes ROLLBACK and cleans up the Rx.
// It is a no-op if Rx is already rolled back.
func (rx *Rx) Rollback() {
	if rx.conn == nil {
		return
	}
	if rx.inTx {
		panic("Tx.Rx.Rollback called, only call Rollback on the Tx object")
	}
	err := rx.Exec("ROLLBACK")
	if rx.pool.tracer != nil {
		rx.pool.tracer.Rollback(rx.conn.ID(), err)
	}
	rx.pool.roConnsFree <- rx.conn
	rx.conn = nil
	if rx.OnRollback != nil {
		rx.OnRollback()
		rx.OnRollback = nil
	}
	if err != nil {
		panic(err)
	}
}

// Tx is a writable SQLite database transaction.
//
// It is *not* safe for concurrent use.
//
// A Tx contains an embedded Rx, which can be used to pass to functions
// that want to perform read-only queries on the writable Tx.
type Tx struct {
	*Rx

	// OnCommit is an optional function called after successful commit.
	OnCommit func()
}

// Rollback executes ROLLBACK and cleans up the Tx.
// It is a no-op if the Tx is already rolled back or committed.
func (tx *Tx) Rollback() {
	if tx.conn == nil {
		return
	}
	err := tx.Exec("ROLLBACK")
	if tx.pool.tracer != nil {
		tx.pool.tracer.Rollback(tx.conn.ID(), err)
	}
	tx.pool.rwConnFree <- tx.conn
	tx.conn = nil
	if tx.OnRollback != nil {
		tx.OnRollback()
		tx.OnRollback = nil
		tx.OnCommit = nil
	}
	if err != nil {
		panic(err)
	}
}

// Commit executes COMMIT and cleans up the Tx.
// It is an error to call if the Tx is already rolled back or committed.
func (tx *Tx) Commit() error {
	if tx.conn == nil {
		return errors.New("tx already done")
	}
	err := tx.Exec("COMMIT")
	if tx.pool.tracer != nil {
		tx.pool.tracer.Commit(tx.conn.ID(), err)
	}
	tx.pool.rwConnFree <- tx.conn
	tx.conn = nil
	if tx.OnCommit != nil {
		tx.OnCommit()
		tx.OnCommit = nil
		tx.OnRollback = nil
	}
	return err
}
