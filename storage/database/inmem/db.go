// Package inmemdb is an in-memory storage backend, used by tests and local runs without a database.
package inmemdb

import (
	"context"
	"sync"

	"github.com/vidyalaya/vidyalaya/core"
	"github.com/vidyalaya/vidyalaya/core/attendance"
	"github.com/vidyalaya/vidyalaya/core/payment"
	"github.com/vidyalaya/vidyalaya/core/schedule"
	"github.com/vidyalaya/vidyalaya/core/student"
	"github.com/vidyalaya/vidyalaya/core/teacher"
	"github.com/vidyalaya/vidyalaya/core/user"
)

type (
	DB struct {
		mutex sync.RWMutex
		txMu  sync.Mutex
		tables
	}

	tables struct {
		users    map[string]user.User
		students map[string]student.Student
		legacy   map[string][]attendance.LegacyEntry // by student primary key
		teachers map[string]teacher.Teacher
		records  map[string]attendance.Record
		slots    map[string]schedule.Slot
		payments map[string]payment.Payment
		salaries map[string]payment.Salary
	}
)

var _ core.Transactor = (*DB)(nil)

func Open() *DB {
	return &DB{tables: newTables()}
}

func newTables() tables {
	return tables{
		users:    make(map[string]user.User),
		students: make(map[string]student.Student),
		legacy:   make(map[string][]attendance.LegacyEntry),
		teachers: make(map[string]teacher.Teacher),
		records:  make(map[string]attendance.Record),
		slots:    make(map[string]schedule.Slot),
		payments: make(map[string]payment.Payment),
		salaries: make(map[string]payment.Salary),
	}
}

func (t tables) clone() tables {
	c := newTables()
	for k, v := range t.users {
		c.users[k] = v
	}
	for k, v := range t.students {
		c.students[k] = v
	}
	for k, v := range t.legacy {
		c.legacy[k] = append([]attendance.LegacyEntry(nil), v...)
	}
	for k, v := range t.teachers {
		c.teachers[k] = v
	}
	for k, v := range t.records {
		c.records[k] = v
	}
	for k, v := range t.slots {
		c.slots[k] = v
	}
	for k, v := range t.payments {
		c.payments[k] = v
	}
	for k, v := range t.salaries {
		c.salaries[k] = v
	}
	return c
}

type txKey struct{}

// WithinTx runs transactions one at a time and restores the tables when fn fails.
// Writes outside a transaction wait for the running one, so a rollback never discards them.
func (db *DB) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if db.inTx(ctx) {
		return fn(ctx)
	}

	db.txMu.Lock()
	defer db.txMu.Unlock()

	db.mutex.RLock()
	snapshot := db.tables.clone()
	db.mutex.RUnlock()

	if err := fn(context.WithValue(ctx, txKey{}, db)); err != nil {
		db.mutex.Lock()
		db.tables = snapshot
		db.mutex.Unlock()
		return err
	}
	return nil
}

func (db *DB) inTx(ctx context.Context) bool {
	tx, _ := ctx.Value(txKey{}).(*DB)
	return tx == db
}

// lockWrites locks the tables for a write and returns the unlock func.
func (db *DB) lockWrites(ctx context.Context) func() {
	if db.inTx(ctx) {
		db.mutex.Lock()
		return db.mutex.Unlock
	}
	db.txMu.Lock()
	db.mutex.Lock()
	return func() {
		db.mutex.Unlock()
		db.txMu.Unlock()
	}
}

// SetLegacyAttendance replaces the attendance list embedded in a student document.
func (db *DB) SetLegacyAttendance(studentID string, entries ...attendance.LegacyEntry) {
	defer db.lockWrites(context.Background())()
	db.legacy[studentID] = append([]attendance.LegacyEntry(nil), entries...)
}

// Reset empties all the tables.
func (db *DB) Reset() {
	defer db.lockWrites(context.Background())()
	db.tables = newTables()
}
