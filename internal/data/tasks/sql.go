package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/deckforge-backend/internal/platform/logger"
)

type taskRow struct {
	ID         string         `gorm:"column:id;primaryKey;size:36"`
	Status     string         `gorm:"column:status;not null;index"`
	Progress   int            `gorm:"column:progress;not null;default:0"`
	Message    string         `gorm:"column:message"`
	Warnings   datatypes.JSON `gorm:"column:warnings"`
	Result     datatypes.JSON `gorm:"column:result"`
	OutputPath string         `gorm:"column:output_path"`
	CreatedAt  time.Time      `gorm:"column:created_at;not null;index"`
	UpdatedAt  time.Time      `gorm:"column:updated_at;not null"`
	ExpiresAt  *time.Time     `gorm:"column:expires_at;index"`
}

func (taskRow) TableName() string { return "deck_task" }

type SQLOptions struct {
	// PostgresDSN wins over SQLitePath when set.
	PostgresDSN string
	SQLitePath  string
	TTL         time.Duration
}

// SQLStore keeps tasks in a gorm table (sqlite or postgres).
type SQLStore struct {
	db  *gorm.DB
	log *logger.Logger
	ttl time.Duration
	now func() time.Time
}

// OpenSQLStore connects and migrates the deck_task table.
func OpenSQLStore(baseLog *logger.Logger, opts SQLOptions) (*SQLStore, error) {
	var dialector gorm.Dialector
	switch {
	case strings.TrimSpace(opts.PostgresDSN) != "":
		dialector = postgres.Open(opts.PostgresDSN)
	case strings.TrimSpace(opts.SQLitePath) != "":
		dialector = sqlite.Open(opts.SQLitePath)
	default:
		return nil, errors.New("sql task store needs POSTGRES_DSN or SQLITE_PATH")
	}

	gormLog := gormLogger.New(
		zap.NewStdLog(baseLog.Desugar()),
		gormLogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("failed to open task database: %w", err)
	}
	return NewSQLStore(db, baseLog, opts.TTL)
}

func NewSQLStore(db *gorm.DB, baseLog *logger.Logger, ttl time.Duration) (*SQLStore, error) {
	if err := db.AutoMigrate(&taskRow{}); err != nil {
		return nil, fmt.Errorf("migrate deck_task: %w", err)
	}
	return &SQLStore{
		db:  db,
		log: baseLog.With("store", "SQLTaskStore"),
		ttl: ttl,
		now: time.Now,
	}, nil
}

func (s *SQLStore) Create(ctx context.Context, t *Task) error {
	row, err := s.toRow(t)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing taskRow
		err := tx.Where("id = ?", t.ID).Take(&existing).Error
		switch {
		case err == nil:
			if !s.expired(&existing) {
				return ErrExists
			}
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}
		return tx.Create(row).Error
	})
}

func (s *SQLStore) Get(ctx context.Context, id string) (*Task, error) {
	var row taskRow
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if s.expired(&row) {
		return nil, ErrNotFound
	}
	return s.fromRow(&row)
}

func (s *SQLStore) Save(ctx context.Context, t *Task) error {
	row, err := s.toRow(t)
	if err != nil {
		return err
	}
	res := s.db.WithContext(ctx).
		Model(&taskRow{}).
		Where("id = ?", t.ID).
		Updates(map[string]interface{}{
			"status":      row.Status,
			"progress":    row.Progress,
			"message":     row.Message,
			"warnings":    row.Warnings,
			"result":      row.Result,
			"output_path": row.OutputPath,
			"updated_at":  row.UpdatedAt,
			"expires_at":  row.ExpiresAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// PurgeExpired deletes rows past their expiry and returns how many went.
func (s *SQLStore) PurgeExpired(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ?", s.now().UTC()).
		Delete(&taskRow{})
	return res.RowsAffected, res.Error
}

func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *SQLStore) expired(row *taskRow) bool {
	return row.ExpiresAt != nil && !s.now().UTC().Before(*row.ExpiresAt)
}

func (s *SQLStore) toRow(t *Task) (*taskRow, error) {
	row := &taskRow{
		ID:         t.ID,
		Status:     string(t.Status),
		Progress:   t.Progress,
		Message:    t.Message,
		OutputPath: t.OutputPath,
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = s.now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	if s.ttl > 0 {
		exp := s.now().UTC().Add(s.ttl)
		row.ExpiresAt = &exp
	}
	if len(t.Warnings) > 0 {
		b, err := json.Marshal(t.Warnings)
		if err != nil {
			return nil, err
		}
		row.Warnings = datatypes.JSON(b)
	}
	if t.Result != nil {
		b, err := json.Marshal(t.Result)
		if err != nil {
			return nil, err
		}
		row.Result = datatypes.JSON(b)
	}
	return row, nil
}

func (s *SQLStore) fromRow(row *taskRow) (*Task, error) {
	t := &Task{
		ID:         row.ID,
		Status:     Status(row.Status),
		Progress:   row.Progress,
		Message:    row.Message,
		OutputPath: row.OutputPath,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
	if len(row.Warnings) > 0 {
		if err := json.Unmarshal(row.Warnings, &t.Warnings); err != nil {
			return nil, fmt.Errorf("decode warnings for task %s: %w", row.ID, err)
		}
	}
	if len(row.Result) > 0 {
		var r Result
		if err := json.Unmarshal(row.Result, &r); err != nil {
			return nil, fmt.Errorf("decode result for task %s: %w", row.ID, err)
		}
		t.Result = &r
	}
	return t, nil
}
