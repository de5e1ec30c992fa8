package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aarambhveda/counselor/internal/catalog"
	"github.com/aarambhveda/counselor/pkg/logger"
	"github.com/bytedance/sonic"
)

// CatalogStorage persists colleges, course categories and exams
type CatalogStorage struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewCatalogStorage creates the catalog tables if needed
func NewCatalogStorage(db *sql.DB, logger *logger.Logger) (*CatalogStorage, error) {
	s := &CatalogStorage{
		db:     db,
		logger: logger.Named("sqlite-catalog"),
	}
	if err := s.initDB(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *CatalogStorage) initDB() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS colleges (
			id TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			city TEXT NOT NULL,
			state TEXT NOT NULL,
			type TEXT NOT NULL,
			rating REAL NOT NULL,
			avg_fees INTEGER NOT NULL,
			avg_package INTEGER NOT NULL,
			highest_package INTEGER NOT NULL,
			established INTEGER,
			campus_area TEXT,
			approvals TEXT,
			admission_exams TEXT,
			courses TEXT,
			top_recruiters TEXT,
			infrastructure TEXT,
			description TEXT,
			image TEXT,
			created_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create colleges table: %w", err)
	}

	_, err = s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_colleges_state ON colleges(state)`)
	if err != nil {
		return fmt.Errorf("failed to create state index: %w", err)
	}

	_, err = s.db.Exec(`
		CREATE TABLE IF NOT EXISTS course_categories (
			slug TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			description TEXT,
			programs TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create course_categories table: %w", err)
	}

	_, err = s.db.Exec(`
		CREATE TABLE IF NOT EXISTS exams (
			slug TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			category TEXT,
			date TEXT,
			registrations TEXT,
			status TEXT
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create exams table: %w", err)
	}

	return nil
}

// CountColleges returns the number of stored colleges
func (s *CatalogStorage) CountColleges(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM colleges`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count colleges: %w", err)
	}
	return n, nil
}

// Seed writes the given catalog in a single transaction, replacing rows with the same key
func (s *CatalogStorage) Seed(ctx context.Context, colleges []catalog.College, categories []catalog.CourseCategory, exams []catalog.Exam) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	for i, c := range colleges {
		_, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO colleges
			(id, position, name, city, state, type, rating, avg_fees, avg_package, highest_package, established,
			 campus_area, approvals, admission_exams, courses, top_recruiters, infrastructure, description, image, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID, i, c.Name, c.City, c.State, c.Type, c.Rating, c.AvgFees, c.AvgPackage, c.HighestPackage, c.Established,
			c.CampusArea, marshalStringArray(c.Approvals), marshalStringArray(c.AdmissionExams), marshalStringArray(c.Courses),
			marshalStringArray(c.TopRecruiters), marshalStringArray(c.Infrastructure), c.Description, c.Image, now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert college %s: %w", c.ID, err)
		}
	}

	for i, cat := range categories {
		programs, err := sonic.MarshalString(cat.Programs)
		if err != nil {
			return fmt.Errorf("failed to encode programs for %s: %w", cat.Slug, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO course_categories (slug, position, name, description, programs) VALUES (?, ?, ?, ?, ?)`,
			cat.Slug, i, cat.Name, cat.Description, programs,
		)
		if err != nil {
			return fmt.Errorf("failed to insert course category %s: %w", cat.Slug, err)
		}
	}

	for i, e := range exams {
		_, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO exams (slug, position, name, category, date, registrations, status) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			e.Slug, i, e.Name, e.Category, e.Date, e.Registrations, e.Status,
		)
		if err != nil {
			return fmt.Errorf("failed to insert exam %s: %w", e.Slug, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed: %w", err)
	}

	s.logger.Info("Seeded catalog",
		logger.Int("colleges", len(colleges)),
		logger.Int("categories", len(categories)),
		logger.Int("exams", len(exams)))
	return nil
}

// SeedIfEmpty seeds the catalog only when no colleges are stored
func (s *CatalogStorage) SeedIfEmpty(ctx context.Context, colleges []catalog.College, categories []catalog.CourseCategory, exams []catalog.Exam) (bool, error) {
	n, err := s.CountColleges(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	return true, s.Seed(ctx, colleges, categories, exams)
}

// Load reads the whole catalog in stored order
func (s *CatalogStorage) Load(ctx context.Context) ([]catalog.College, []catalog.CourseCategory, []catalog.Exam, error) {
	colleges, err := s.loadColleges(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	categories, err := s.loadCategories(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	exams, err := s.loadExams(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	return colleges, categories, exams, nil
}

func (s *CatalogStorage) loadColleges(ctx context.Context) ([]catalog.College, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, city, state, type, rating, avg_fees, avg_package, highest_package, established,
		campus_area, approvals, admission_exams, courses, top_recruiters, infrastructure, description, image
		FROM colleges ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query colleges: %w", err)
	}
	defer rows.Close()

	var colleges []catalog.College
	for rows.Next() {
		var (
			c                                                   catalog.College
			established                                         sql.NullInt64
			campusArea, description, image                      sql.NullString
			approvals, exams, courses, recruiters, infrastructure sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.City, &c.State, &c.Type, &c.Rating, &c.AvgFees, &c.AvgPackage, &c.HighestPackage,
			&established, &campusArea, &approvals, &exams, &courses, &recruiters, &infrastructure, &description, &image); err != nil {
			return nil, fmt.Errorf("failed to scan college: %w", err)
		}
		c.Established = int(established.Int64)
		c.CampusArea = campusArea.String
		c.Description = description.String
		c.Image = image.String
		c.Approvals = unmarshalStringArray(approvals)
		c.AdmissionExams = unmarshalStringArray(exams)
		c.Courses = unmarshalStringArray(courses)
		c.TopRecruiters = unmarshalStringArray(recruiters)
		c.Infrastructure = unmarshalStringArray(infrastructure)
		colleges = append(colleges, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate colleges: %w", err)
	}
	return colleges, nil
}

func (s *CatalogStorage) loadCategories(ctx context.Context) ([]catalog.CourseCategory, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT slug, name, description, programs FROM course_categories ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query course categories: %w", err)
	}
	defer rows.Close()

	var categories []catalog.CourseCategory
	for rows.Next() {
		var (
			cat         catalog.CourseCategory
			description sql.NullString
			programs    string
		)
		if err := rows.Scan(&cat.Slug, &cat.Name, &description, &programs); err != nil {
			return nil, fmt.Errorf("failed to scan course category: %w", err)
		}
		cat.Description = description.String
		if err := sonic.UnmarshalString(programs, &cat.Programs); err != nil {
			return nil, fmt.Errorf("failed to decode programs for %s: %w", cat.Slug, err)
		}
		categories = append(categories, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate course categories: %w", err)
	}
	return categories, nil
}

func (s *CatalogStorage) loadExams(ctx context.Context) ([]catalog.Exam, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT slug, name, category, date, registrations, status FROM exams ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query exams: %w", err)
	}
	defer rows.Close()

	var exams []catalog.Exam
	for rows.Next() {
		var (
			e                                      catalog.Exam
			category, date, registrations, status sql.NullString
		)
		if err := rows.Scan(&e.Slug, &e.Name, &category, &date, &registrations, &status); err != nil {
			return nil, fmt.Errorf("failed to scan exam: %w", err)
		}
		e.Category = category.String
		e.Date = date.String
		e.Registrations = registrations.String
		e.Status = status.String
		exams = append(exams, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate exams: %w", err)
	}
	return exams, nil
}

func marshalStringArray(arr []string) string {
	if len(arr) == 0 {
		return "[]"
	}
	data, err := sonic.MarshalString(arr)
	if err != nil {
		return "[]"
	}
	return data
}

func unmarshalStringArray(v sql.NullString) []string {
	if !v.Valid || v.String == "" {
		return nil
	}
	var out []string
	if err := sonic.UnmarshalString(v.String, &out); err != nil || len(out) == 0 {
		return nil
	}
	return out
}
