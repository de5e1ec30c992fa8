package catalog

// DefaultColleges is the built-in catalog used to seed an empty database
func DefaultColleges() []College {
	return []College{
		{
			ID: "1", Name: "Indian Institute of Technology Bombay", City: "Mumbai", State: "Maharashtra", Type: "Government",
			Rating: 4.8, AvgFees: 230000, AvgPackage: 2300000, HighestPackage: 36800000, Established: 1958, CampusArea: "550 acres",
			Approvals:      []string{"UGC", "AICTE", "NAAC A++"},
			AdmissionExams: []string{"JEE Advanced", "GATE", "CAT"},
			Courses:        []string{"B.Tech", "M.Tech", "MBA", "PhD", "MSc"},
			TopRecruiters:  []string{"Google", "Microsoft", "Goldman Sachs", "Qualcomm"},
			Infrastructure: []string{"Central Library", "Hostels", "Research Parks", "Sports Complex"},
			Description:    "One of India's premier engineering institutes, known for research and its entrepreneurship ecosystem.",
		},
		{
			ID: "2", Name: "Indian Institute of Technology Delhi", City: "New Delhi", State: "Delhi", Type: "Government",
			Rating: 4.7, AvgFees: 225000, AvgPackage: 2100000, HighestPackage: 20000000, Established: 1961, CampusArea: "320 acres",
			Approvals:      []string{"UGC", "AICTE", "NAAC A++"},
			AdmissionExams: []string{"JEE Advanced", "GATE"},
			Courses:        []string{"B.Tech", "M.Tech", "MBA", "PhD", "MSc"},
			TopRecruiters:  []string{"Microsoft", "Amazon", "Adobe", "Uber"},
			Infrastructure: []string{"Central Library", "Hostels", "Incubation Centre", "Hospital"},
			Description:    "A leading technical university in the capital with strong industry ties.",
		},
		{
			ID: "3", Name: "Indian Institute of Management Ahmedabad", City: "Ahmedabad", State: "Gujarat", Type: "Government",
			Rating: 4.9, AvgFees: 1250000, AvgPackage: 3400000, HighestPackage: 11500000, Established: 1961, CampusArea: "102 acres",
			Approvals:      []string{"AICTE", "EQUIS", "AMBA"},
			AdmissionExams: []string{"CAT", "GMAT"},
			Courses:        []string{"MBA", "PGDM", "PhD", "Executive MBA"},
			TopRecruiters:  []string{"McKinsey", "BCG", "Bain", "Goldman Sachs"},
			Infrastructure: []string{"Vikram Sarabhai Library", "Hostels", "Auditorium"},
			Description:    "India's top business school, famous for its case-method pedagogy.",
		},
		{
			ID: "4", Name: "All India Institute of Medical Sciences", City: "New Delhi", State: "Delhi", Type: "Central University",
			Rating: 4.9, AvgFees: 6000, AvgPackage: 1800000, HighestPackage: 4000000, Established: 1956, CampusArea: "123 acres",
			Approvals:      []string{"NMC", "UGC"},
			AdmissionExams: []string{"NEET UG", "NEET PG", "INI-CET"},
			Courses:        []string{"MBBS", "MD", "MS", "BSc Nursing", "PhD"},
			TopRecruiters:  []string{"AIIMS Hospitals", "Apollo", "Fortis", "Max Healthcare"},
			Infrastructure: []string{"Teaching Hospital", "Research Labs", "Hostels", "Library"},
			Description:    "The country's most sought-after medical college with a large teaching hospital.",
		},
		{
			ID: "5", Name: "National Law School of India University", City: "Bengaluru", State: "Karnataka", Type: "State University",
			Rating: 4.7, AvgFees: 300000, AvgPackage: 1600000, HighestPackage: 2500000, Established: 1987, CampusArea: "23 acres",
			Approvals:      []string{"BCI", "UGC", "NAAC A"},
			AdmissionExams: []string{"CLAT"},
			Courses:        []string{"BA LLB", "LLM", "PhD"},
			TopRecruiters:  []string{"Cyril Amarchand Mangaldas", "AZB & Partners", "Khaitan & Co"},
			Infrastructure: []string{"Law Library", "Moot Court Hall", "Hostels"},
			Description:    "The pioneer of the five-year integrated law degree in India.",
		},
		{
			ID: "6", Name: "National Institute of Design", City: "Ahmedabad", State: "Gujarat", Type: "Autonomous",
			Rating: 4.6, AvgFees: 380000, AvgPackage: 1100000, HighestPackage: 3000000, Established: 1961, CampusArea: "15 acres",
			Approvals:      []string{"DPIIT"},
			AdmissionExams: []string{"NID DAT"},
			Courses:        []string{"BDes", "MDes", "Design PhD"},
			TopRecruiters:  []string{"Titan", "Tata Elxsi", "Microsoft", "Flipkart"},
			Infrastructure: []string{"Design Studios", "Workshops", "Knowledge Management Centre"},
			Description:    "India's foremost design school across industrial, communication and textile design.",
		},
		{
			ID: "7", Name: "Birla Institute of Technology and Science", City: "Pilani", State: "Rajasthan", Type: "Deemed University",
			Rating: 4.5, AvgFees: 550000, AvgPackage: 1800000, HighestPackage: 6000000, Established: 1964, CampusArea: "328 acres",
			Approvals:      []string{"UGC", "NAAC A++"},
			AdmissionExams: []string{"BITSAT"},
			Courses:        []string{"BE", "ME", "MBA", "MSc", "PhD"},
			TopRecruiters:  []string{"Google", "Oracle", "Goldman Sachs", "Cisco"},
			Infrastructure: []string{"Library", "Hostels", "Innovation Labs", "Sports Complex"},
			Description:    "A private deemed university known for its flexible academics and zero attendance policy.",
		},
		{
			ID: "8", Name: "Vellore Institute of Technology", City: "Vellore", State: "Tamil Nadu", Type: "Private",
			Rating: 4.2, AvgFees: 198000, AvgPackage: 900000, HighestPackage: 10200000, Established: 1984, CampusArea: "372 acres",
			Approvals:      []string{"UGC", "AICTE", "NAAC A++"},
			AdmissionExams: []string{"VITEEE", "JEE Main"},
			Courses:        []string{"B.Tech", "M.Tech", "MBA", "BBA", "BCom", "BSc"},
			TopRecruiters:  []string{"Amazon", "Wipro", "TCS", "Cognizant"},
			Infrastructure: []string{"Library", "Hostels", "Hospital", "Auditorium"},
			Description:    "A large private university with wide course choice and strong mass recruiting.",
		},
		{
			ID: "9", Name: "St. Stephen's College", City: "New Delhi", State: "Delhi", Type: "Autonomous",
			Rating: 4.6, AvgFees: 45000, AvgPackage: 800000, HighestPackage: 3000000, Established: 1881, CampusArea: "69 acres",
			Approvals:      []string{"UGC", "NAAC A+"},
			AdmissionExams: []string{"CUET"},
			Courses:        []string{"BA", "BSc", "MA", "MSc"},
			TopRecruiters:  []string{"Deloitte", "EY", "KPMG", "ZS Associates"},
			Infrastructure: []string{"Library", "Hostels", "Chapel", "Sports Ground"},
			Description:    "A historic liberal arts and sciences college of the University of Delhi.",
		},
		{
			ID: "10", Name: "Shri Ram College of Commerce", City: "New Delhi", State: "Delhi", Type: "Government",
			Rating: 4.5, AvgFees: 30000, AvgPackage: 1000000, HighestPackage: 3300000, Established: 1926, CampusArea: "16 acres",
			Approvals:      []string{"UGC", "NAAC A++"},
			AdmissionExams: []string{"CUET"},
			Courses:        []string{"BCom", "BA Economics", "MCom"},
			TopRecruiters:  []string{"BCG", "Bain", "Deloitte", "JP Morgan"},
			Infrastructure: []string{"Library", "Hostels", "Auditorium"},
			Description:    "The country's best known commerce college.",
		},
		{
			ID: "11", Name: "Indian Institute of Science", City: "Bengaluru", State: "Karnataka", Type: "Deemed University",
			Rating: 4.8, AvgFees: 35000, AvgPackage: 2000000, HighestPackage: 6000000, Established: 1909, CampusArea: "440 acres",
			Approvals:      []string{"UGC", "NAAC A++"},
			AdmissionExams: []string{"JEE Advanced", "GATE", "JAM"},
			Courses:        []string{"BSc", "MSc", "M.Tech", "PhD"},
			TopRecruiters:  []string{"Intel", "Texas Instruments", "Samsung R&D", "ISRO"},
			Infrastructure: []string{"JRD Tata Library", "Supercomputer", "Hostels"},
			Description:    "India's leading research institution for science and engineering.",
		},
		{
			ID: "12", Name: "Christ University", City: "Bengaluru", State: "Karnataka", Type: "Deemed University",
			Rating: 4.1, AvgFees: 250000, AvgPackage: 650000, HighestPackage: 2500000, Established: 1969, CampusArea: "148 acres",
			Approvals:      []string{"UGC", "NAAC A+"},
			AdmissionExams: []string{"CUET", "CLAT", "CAT"},
			Courses:        []string{"BBA", "BCom", "BA LLB", "MBA", "BA", "MA"},
			TopRecruiters:  []string{"Deloitte", "KPMG", "Accenture", "HUL"},
			Infrastructure: []string{"Library", "Hostels", "Auditorium", "Sports Complex"},
			Description:    "A multi-disciplinary private university known for commerce, management and law.",
		},
		{
			ID: "13", Name: "Christian Medical College", City: "Vellore", State: "Tamil Nadu", Type: "Private",
			Rating: 4.7, AvgFees: 60000, AvgPackage: 1500000, HighestPackage: 3000000, Established: 1900, CampusArea: "200 acres",
			Approvals:      []string{"NMC", "UGC"},
			AdmissionExams: []string{"NEET UG", "NEET PG"},
			Courses:        []string{"MBBS", "MD", "MS", "BSc Nursing"},
			TopRecruiters:  []string{"CMC Hospital", "Apollo", "Narayana Health"},
			Infrastructure: []string{"Teaching Hospital", "Research Labs", "Hostels"},
			Description:    "A private medical college with a strong service and community health tradition.",
		},
		{
			ID: "14", Name: "Anna University", City: "Chennai", State: "Tamil Nadu", Type: "State University",
			Rating: 4.3, AvgFees: 50000, AvgPackage: 700000, HighestPackage: 4000000, Established: 1978, CampusArea: "185 acres",
			Approvals:      []string{"UGC", "AICTE", "NAAC A++"},
			AdmissionExams: []string{"TNEA", "TANCET", "GATE"},
			Courses:        []string{"BE", "B.Tech", "ME", "M.Tech", "MBA", "PhD"},
			TopRecruiters:  []string{"Zoho", "TCS", "Infosys", "L&T"},
			Infrastructure: []string{"Library", "Hostels", "Research Centres"},
			Description:    "Tamil Nadu's flagship technical university.",
		},
	}
}

// DefaultCourseCategories lists programs offered across India by category
func DefaultCourseCategories() []CourseCategory {
	return []CourseCategory{
		{Slug: "engineering", Name: "Engineering", Description: "Build the future with technology and innovation", Programs: []Program{
			{"B.Tech", "4 Years", 2500}, {"M.Tech", "2 Years", 1800}, {"B.E.", "4 Years", 1200}, {"Diploma", "3 Years", 3000},
		}},
		{Slug: "management", Name: "Management", Description: "Lead organizations and drive business growth", Programs: []Program{
			{"MBA", "2 Years", 1800}, {"BBA", "3 Years", 2000}, {"PGDM", "2 Years", 500}, {"Executive MBA", "1 Year", 200},
		}},
		{Slug: "medical", Name: "Medical", Description: "Heal lives and advance healthcare", Programs: []Program{
			{"MBBS", "5.5 Years", 600}, {"BDS", "5 Years", 300}, {"BAMS", "5.5 Years", 250}, {"B.Sc Nursing", "4 Years", 2000},
		}},
		{Slug: "law", Name: "Law", Description: "Uphold justice and shape legal frameworks", Programs: []Program{
			{"BA LLB", "5 Years", 500}, {"BBA LLB", "5 Years", 300}, {"LLB", "3 Years", 800}, {"LLM", "2 Years", 200},
		}},
		{Slug: "design", Name: "Design", Description: "Create experiences that inspire and delight", Programs: []Program{
			{"B.Des", "4 Years", 150}, {"M.Des", "2 Years", 80}, {"Fashion Design", "4 Years", 100}, {"Interior Design", "4 Years", 120},
		}},
		{Slug: "arts", Name: "Arts & Humanities", Description: "Explore human expression and culture", Programs: []Program{
			{"BA", "3 Years", 5000}, {"MA", "2 Years", 3000}, {"BA Journalism", "3 Years", 400}, {"BA Psychology", "3 Years", 500},
		}},
		{Slug: "commerce", Name: "Commerce", Description: "Master finance, accounting and business", Programs: []Program{
			{"B.Com", "3 Years", 4000}, {"M.Com", "2 Years", 2000}, {"CA", "3-4 Years", 100}, {"B.Com (Hons)", "3 Years", 1500},
		}},
		{Slug: "science", Name: "Science", Description: "Discover the laws that govern our universe", Programs: []Program{
			{"B.Sc", "3 Years", 3500}, {"M.Sc", "2 Years", 2000}, {"B.Sc (Hons)", "3 Years", 1000}, {"Integrated M.Sc", "5 Years", 200},
		}},
		{Slug: "pharmacy", Name: "Pharmacy", Description: "Advance pharmaceutical sciences and healthcare", Programs: []Program{
			{"B.Pharm", "4 Years", 450}, {"M.Pharm", "2 Years", 300}, {"D.Pharm", "2 Years", 800}, {"Pharm.D", "6 Years", 100},
		}},
		{Slug: "architecture", Name: "Architecture", Description: "Design spaces that transform how we live", Programs: []Program{
			{"B.Arch", "5 Years", 280}, {"M.Arch", "2 Years", 150}, {"B.Plan", "4 Years", 100}, {"M.Plan", "2 Years", 80},
		}},
	}
}

// DefaultExams lists the major national entrance exams
func DefaultExams() []Exam {
	return []Exam{
		{Slug: "jee-main", Name: "JEE Main 2026", Category: "Engineering", Date: "Jan 22 - Jan 31, 2026", Registrations: "12 Lakh+", Status: "Registration Open"},
		{Slug: "neet", Name: "NEET UG 2026", Category: "Medical", Date: "May 4, 2026", Registrations: "18 Lakh+", Status: "Upcoming"},
		{Slug: "cat", Name: "CAT 2026", Category: "Management", Date: "Nov 24, 2026", Registrations: "2.5 Lakh+", Status: "Upcoming"},
		{Slug: "gate", Name: "GATE 2026", Category: "Engineering/PG", Date: "Feb 1-16, 2026", Registrations: "8 Lakh+", Status: "Registration Open"},
		{Slug: "clat", Name: "CLAT 2026", Category: "Law", Date: "Dec 2026", Registrations: "80,000+", Status: "Upcoming"},
		{Slug: "jee-advanced", Name: "JEE Advanced 2026", Category: "Engineering", Date: "May 2026", Registrations: "1.5 Lakh+", Status: "Upcoming"},
	}
}
