package catalog

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/aarambhveda/counselor/pkg/logger"
)

var (
	// ErrNotFound is returned for unknown college ids
	ErrNotFound = errors.New("college not found")
	// ErrTooMany is returned when a comparison exceeds the limit
	ErrTooMany = errors.New("too many colleges to compare")
)

// Service answers catalog queries from an in-memory snapshot
type Service struct {
	logger       *logger.Logger
	compareLimit int

	mu         sync.RWMutex
	colleges   []College
	byID       map[string]int
	categories []CourseCategory
	exams      []Exam
}

// NewService creates a catalog service over the given data
func NewService(colleges []College, categories []CourseCategory, exams []Exam, compareLimit int, logger *logger.Logger) *Service {
	if compareLimit <= 0 {
		compareLimit = 4
	}
	s := &Service{
		logger:       logger.Named("catalog"),
		compareLimit: compareLimit,
	}
	s.Replace(colleges, categories, exams)
	return s
}

// Replace swaps the catalog contents
func (s *Service) Replace(colleges []College, categories []CourseCategory, exams []Exam) {
	byID := make(map[string]int, len(colleges))
	for i, c := range colleges {
		byID[c.ID] = i
	}

	s.mu.Lock()
	s.colleges = slices.Clone(colleges)
	s.byID = byID
	s.categories = slices.Clone(categories)
	s.exams = slices.Clone(exams)
	s.mu.Unlock()

	s.logger.Info("Catalog loaded",
		logger.Int("colleges", len(colleges)),
		logger.Int("categories", len(categories)),
		logger.Int("exams", len(exams)))
}

// Filter returns the colleges matching q in the requested order
func (s *Service) Filter(q Query) []College {
	s.mu.RLock()
	result := slices.Clone(s.colleges)
	s.mu.RUnlock()

	if search := strings.ToLower(strings.TrimSpace(q.Search)); search != "" {
		result = slices.DeleteFunc(result, func(c College) bool {
			return !matchesSearch(c, search)
		})
	}

	if fragments := categoryCourses[strings.ToLower(q.Category)]; len(fragments) > 0 {
		result = slices.DeleteFunc(result, func(c College) bool {
			return !offersAny(c, fragments)
		})
	}

	if len(q.States) > 0 {
		result = slices.DeleteFunc(result, func(c College) bool {
			return !slices.Contains(q.States, c.State)
		})
	}

	if len(q.Types) > 0 {
		result = slices.DeleteFunc(result, func(c College) bool {
			return !slices.Contains(q.Types, c.Type)
		})
	}

	sortColleges(result, q.SortBy)
	return result
}

func matchesSearch(c College, search string) bool {
	if strings.Contains(strings.ToLower(c.Name), search) ||
		strings.Contains(strings.ToLower(c.City), search) ||
		strings.Contains(strings.ToLower(c.State), search) {
		return true
	}
	for _, course := range c.Courses {
		if strings.Contains(strings.ToLower(course), search) {
			return true
		}
	}
	return false
}

func offersAny(c College, fragments []string) bool {
	for _, course := range c.Courses {
		lc := strings.ToLower(course)
		for _, f := range fragments {
			if strings.Contains(lc, strings.ToLower(f)) {
				return true
			}
		}
	}
	return false
}

func sortColleges(cs []College, by string) {
	switch by {
	case SortFeesLow:
		slices.SortStableFunc(cs, func(a, b College) int { return cmp.Compare(a.AvgFees, b.AvgFees) })
	case SortFeesHigh:
		slices.SortStableFunc(cs, func(a, b College) int { return cmp.Compare(b.AvgFees, a.AvgFees) })
	case SortPackage:
		slices.SortStableFunc(cs, func(a, b College) int { return cmp.Compare(b.AvgPackage, a.AvgPackage) })
	case SortName:
		slices.SortStableFunc(cs, func(a, b College) int { return strings.Compare(a.Name, b.Name) })
	default:
		slices.SortStableFunc(cs, func(a, b College) int { return cmp.Compare(b.Rating, a.Rating) })
	}
}

// Top returns the n best rated colleges (all when n <= 0)
func (s *Service) Top(n int) []College {
	result := s.Filter(Query{SortBy: SortRating})
	if n > 0 && n < len(result) {
		result = result[:n]
	}
	return result
}

// Get returns a college by id
func (s *Service) Get(id string) (College, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byID[id]
	if !ok {
		return College{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.colleges[i], nil
}

// Compare returns the colleges for ids in the given order with duplicates removed.
// With no ids it returns the first two colleges of the catalog.
func (s *Service) Compare(ids []string) ([]College, error) {
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id != "" && !slices.Contains(unique, id) {
			unique = append(unique, id)
		}
	}

	if len(unique) == 0 {
		s.mu.RLock()
		defer s.mu.RUnlock()
		return slices.Clone(s.colleges[:min(2, len(s.colleges))]), nil
	}
	if len(unique) > s.compareLimit {
		return nil, fmt.Errorf("%w: %d requested, at most %d", ErrTooMany, len(unique), s.compareLimit)
	}

	out := make([]College, 0, len(unique))
	for _, id := range unique {
		c, err := s.Get(id)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// CompareLimit returns the maximum number of colleges in a comparison
func (s *Service) CompareLimit() int {
	return s.compareLimit
}

// States returns the distinct states, sorted
func (s *Service) States() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var states []string
	for _, c := range s.colleges {
		if !slices.Contains(states, c.State) {
			states = append(states, c.State)
		}
	}
	slices.Sort(states)
	return states
}

// Types returns the institution types present in the catalog, in filter panel order
func (s *Service) Types() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	types := make([]string, 0, len(CollegeTypes))
	for _, t := range CollegeTypes {
		if slices.ContainsFunc(s.colleges, func(c College) bool { return c.Type == t }) {
			types = append(types, t)
		}
	}
	return types
}

// Courses returns the course categories
func (s *Service) Courses() []CourseCategory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.categories)
}

// Exams returns the entrance exams
func (s *Service) Exams() []Exam {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.exams)
}

// Filters returns the filter options for the college listing
func (s *Service) Filters() Filters {
	categories := make([]string, 0, len(categoryCourses))
	for k := range categoryCourses {
		categories = append(categories, k)
	}
	slices.Sort(categories)

	return Filters{
		States:     s.States(),
		Types:      slices.Clone(CollegeTypes),
		Categories: categories,
		Sorts:      []string{SortRating, SortFeesLow, SortFeesHigh, SortPackage, SortName},
	}
}

// Count returns the number of colleges
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.colleges)
}
