package catalog

// College is a single institution listed in the catalog
type College struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	City           string   `json:"city"`
	State          string   `json:"state"`
	Type           string   `json:"type"`
	Rating         float64  `json:"rating"`
	AvgFees        int64    `json:"avg_fees"`        // rupees per year
	AvgPackage     int64    `json:"avg_package"`     // rupees per year
	HighestPackage int64    `json:"highest_package"` // rupees per year
	Established    int      `json:"established"`
	CampusArea     string   `json:"campus_area"`
	Approvals      []string `json:"approvals"`
	AdmissionExams []string `json:"admission_exams"`
	Courses        []string `json:"courses"`
	TopRecruiters  []string `json:"top_recruiters"`
	Infrastructure []string `json:"infrastructure"`
	Description    string   `json:"description"`
	Image          string   `json:"image,omitempty"`
}

// Program is one degree within a course category
type Program struct {
	Name     string `json:"name"`
	Duration string `json:"duration"`
	Colleges int    `json:"colleges"`
}

// CourseCategory groups programs by discipline
type CourseCategory struct {
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Programs    []Program `json:"programs"`
}

// Exam is a national entrance exam
type Exam struct {
	Slug          string `json:"slug"`
	Name          string `json:"name"`
	Category      string `json:"category"`
	Date          string `json:"date"`
	Registrations string `json:"registrations"`
	Status        string `json:"status"`
}

// Sort orders accepted by Filter
const (
	SortRating   = "rating"
	SortFeesLow  = "fees-low"
	SortFeesHigh = "fees-high"
	SortPackage  = "package"
	SortName     = "name"
)

// Query narrows and orders the college list
type Query struct {
	Search   string   // matches name, city, state or any course
	Category string   // engineering, management, medical, ...
	States   []string // any of
	Types    []string // any of
	SortBy   string   // defaults to rating
}

// Filters lists the values a client can filter on
type Filters struct {
	States     []string `json:"states"`
	Types      []string `json:"types"`
	Categories []string `json:"categories"`
	Sorts      []string `json:"sorts"`
}

// CollegeTypes are the institution types recognised by the filter panel
var CollegeTypes = []string{"Government", "Private", "Autonomous", "Deemed University", "Central University", "State University"}

// categoryCourses maps a category slug to course name fragments
var categoryCourses = map[string][]string{
	"engineering": {"B.Tech", "M.Tech", "BE", "ME"},
	"management":  {"MBA", "BBA", "PGDM"},
	"medical":     {"MBBS", "MD", "MS", "BDS"},
	"law":         {"BA LLB", "LLB", "LLM", "Law"},
	"design":      {"BDes", "MDes", "Design"},
	"arts":        {"BA", "MA", "MPhil"},
	"commerce":    {"BCom", "MCom", "BBA"},
	"science":     {"BSc", "MSc", "PhD"},
}
