// Package whitelist manages the registrar-provided student roster used during
// onboarding. Rosters arrive as CSV exports and are upserted by student id.
package whitelist

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/volt-campus/VoltRentalAPI/internal/fault"
	"github.com/volt-campus/VoltRentalAPI/internal/models"
)

// Importer loads student whitelist rows.
type Importer struct {
	db *gorm.DB
}

// NewImporter constructs an Importer.
func NewImporter(db *gorm.DB) *Importer { return &Importer{db: db} }

// columnAliases maps accepted CSV header spellings to canonical field names.
var columnAliases = map[string]string{
	"student_id": "student_id",
	"studentid":  "student_id",
	"id":         "student_id",
	"first_name": "first_name",
	"firstname":  "first_name",
	"last_name":  "last_name",
	"lastname":   "last_name",
	"email":      "email",
	"program":    "program",
	"course":     "program",
}

// ImportCSV parses a roster CSV and upserts every row by student id. The first
// record must be a header naming at least a student id column. Returns the
// number of rows written.
func (i *Importer) ImportCSV(ctx context.Context, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, errHeader := reader.Read()
	if errHeader != nil {
		return 0, fault.Validation("empty or unreadable csv")
	}

	columns := make(map[int]string, len(header))
	for idx, name := range header {
		canonical, ok := columnAliases[strings.ToLower(strings.TrimSpace(name))]
		if ok {
			columns[idx] = canonical
		}
	}
	hasID := false
	for _, canonical := range columns {
		if canonical == "student_id" {
			hasID = true
			break
		}
	}
	if !hasID {
		return 0, fault.Validation("csv missing a student id column")
	}

	imported := 0
	for {
		record, errRead := reader.Read()
		if errors.Is(errRead, io.EOF) {
			break
		}
		if errRead != nil {
			return imported, fault.Validation("malformed csv row")
		}

		student := models.Student{}
		for idx, value := range record {
			canonical, ok := columns[idx]
			if !ok {
				continue
			}
			value = strings.TrimSpace(value)
			switch canonical {
			case "student_id":
				student.StudentID = value
			case "first_name":
				student.FirstName = value
			case "last_name":
				student.LastName = value
			case "email":
				student.Email = value
			case "program":
				student.Program = value
			}
		}
		if student.StudentID == "" {
			continue
		}

		if errUpsert := i.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "student_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"first_name", "last_name", "email", "program", "updated_at"}),
			}).
			Create(&student).Error; errUpsert != nil {
			return imported, fault.Server(errUpsert)
		}
		imported++
	}

	return imported, nil
}

// Lookup returns the whitelist entry for a student id.
func (i *Importer) Lookup(ctx context.Context, studentID string) (*models.Student, error) {
	var student models.Student
	if errFind := i.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		First(&student).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, fault.NotFound("student", studentID)
		}
		return nil, fault.Server(errFind)
	}
	return &student, nil
}
