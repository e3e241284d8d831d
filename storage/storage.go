// Package storage wires the repositories of the storage engine selected by the configuration.
package storage

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/vidyalaya/vidyalaya/core"
	"github.com/vidyalaya/vidyalaya/core/attendance"
	"github.com/vidyalaya/vidyalaya/core/payment"
	"github.com/vidyalaya/vidyalaya/core/schedule"
	"github.com/vidyalaya/vidyalaya/core/student"
	"github.com/vidyalaya/vidyalaya/core/teacher"
	"github.com/vidyalaya/vidyalaya/core/user"
	"github.com/vidyalaya/vidyalaya/storage/database"
	inmemdb "github.com/vidyalaya/vidyalaya/storage/database/inmem"
	mongorepos "github.com/vidyalaya/vidyalaya/storage/database/mongo"
	sqlxrepos "github.com/vidyalaya/vidyalaya/storage/database/sqlx"
)

// Storage holds the repositories of one engine.
type Storage struct {
	Engine     string
	Tx         core.Transactor
	Users      user.Repository
	Students   student.Repository
	Teachers   teacher.Repository
	Attendance attendance.Repository
	Schedules  schedule.Repository
	Payments   payment.Repository
	SQL        *sqlx.DB    // postgres only
	Memory     *inmemdb.DB // memory only
	ping       func(ctx context.Context) error
	close      func() error
}

// Open connects to conf.Database.Engine. Postgres databases are created and migrated when missing.
func Open(ctx context.Context, conf *core.Config) (*Storage, error) {
	switch conf.Database.Engine {
	case core.EngineMemory:
		return OpenMemory(), nil
	case core.EnginePostgres, "":
		return openPostgres(conf)
	case core.EngineMongo:
		return openMongo(ctx, conf)
	}
	return nil, errors.Errorf("unknown database engine %q", conf.Database.Engine)
}

func OpenMemory() *Storage {
	db := inmemdb.Open()
	return &Storage{
		Engine:     core.EngineMemory,
		Tx:         db,
		Users:      inmemdb.NewUserRepository(db),
		Students:   inmemdb.NewStudentRepository(db),
		Teachers:   inmemdb.NewTeacherRepository(db),
		Attendance: inmemdb.NewAttendanceRepository(db),
		Schedules:  inmemdb.NewScheduleRepository(db),
		Payments:   inmemdb.NewPaymentRepository(db),
		Memory:     db,
	}
}

func openPostgres(conf *core.Config) (*Storage, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, errors.Wrap(err, "creating database")
	}
	db, err := database.Open(conf)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	if err = database.Migrate(db.DB); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "migrating database")
	}

	return &Storage{
		Engine:     core.EnginePostgres,
		Tx:         sqlxrepos.NewTransactor(db),
		Users:      sqlxrepos.NewUserRepository(db),
		Students:   sqlxrepos.NewStudentRepository(db),
		Teachers:   sqlxrepos.NewTeacherRepository(db),
		Attendance: sqlxrepos.NewAttendanceRepository(db),
		Schedules:  sqlxrepos.NewScheduleRepository(db),
		Payments:   sqlxrepos.NewPaymentRepository(db),
		SQL:        db,
		ping:       db.PingContext,
		close:      db.Close,
	}, nil
}

func openMongo(ctx context.Context, conf *core.Config) (*Storage, error) {
	client, db, err := database.OpenMongo(ctx, conf)
	if err != nil {
		return nil, errors.Wrap(err, "opening mongo database")
	}
	if err = mongorepos.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(err, "creating indexes")
	}

	return &Storage{
		Engine:     core.EngineMongo,
		Tx:         mongorepos.NewTransactor(client, conf.Database.UseTransactions),
		Users:      mongorepos.NewUserRepository(db),
		Students:   mongorepos.NewStudentRepository(db),
		Teachers:   mongorepos.NewTeacherRepository(db),
		Attendance: mongorepos.NewAttendanceRepository(db),
		Schedules:  mongorepos.NewScheduleRepository(db),
		Payments:   mongorepos.NewPaymentRepository(db),
		ping: func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		},
		close: func() error {
			return client.Disconnect(context.Background())
		},
	}, nil
}

// Ping checks the connection to the engine.
func (s *Storage) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

func (s *Storage) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}
