// Package sqlaudit persists the classifier's SQL/NoSQL decision in a
// small gorm/postgres table: the decision is still reported even
// though every non-media file routes to NoSQL ingestion regardless.
package sqlaudit

import (
	"context"
	"fmt"

	"github.com/RAj5517/Clustro/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// auditRow is the gorm-mapped table, migrated via AutoMigrate.
type auditRow struct {
	gorm.Model
	FileID         string `gorm:"column:file_id;index"`
	OriginalName   string `gorm:"column:original_name"`
	SQLScore       int    `gorm:"column:sql_score"`
	NoSQLScore     int    `gorm:"column:nosql_score"`
	Classification string `gorm:"column:classification"`
	Confidence     float64 `gorm:"column:confidence"`
	Reasons        string  `gorm:"column:reasons;type:text"`
}

func (auditRow) TableName() string { return "classification_audit" }

// Log is a no-op-safe audit writer: when no Postgres connection is
// configured, Record silently does nothing. This trail is
// documentation, not a gating dependency.
type Log struct {
	db *gorm.DB
}

// Open connects to Postgres and migrates the audit table. A nil
// *Log (Open never called) is handled by Record as a no-op.
func Open(user, password, dbname, host, port string) (*Log, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		host, user, password, dbname, port)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := db.AutoMigrate(&auditRow{}); err != nil {
		return nil, fmt.Errorf("migrate classification_audit: %w", err)
	}
	return &Log{db: db}, nil
}

// Record appends one classification decision. Non-media files only —
// callers should not record media files, which never go through
// stage 2 scoring.
func (l *Log) Record(ctx context.Context, fileID, originalName string, report model.ClassificationReport) error {
	if l == nil || l.db == nil {
		return nil
	}
	row := auditRow{
		FileID:         fileID,
		OriginalName:   originalName,
		SQLScore:       report.SQLScore,
		NoSQLScore:     report.NoSQLScore,
		Classification: report.Classification,
		Confidence:     report.Confidence,
		Reasons:        joinReasons(report.Reasons),
	}
	return l.db.WithContext(ctx).Create(&row).Error
}

func joinReasons(reasons []string) string {
	out := ""
	for i, r := range reasons {
		if i > 0 {
			out += "; "
		}
		out += r
	}
	return out
}
