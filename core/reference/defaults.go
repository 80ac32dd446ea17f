package reference

// Initial lists, also seeded by the database migrations.
var (
	DefaultCategories = []Category{
		{1, "Frontend Development", "frontend"},
		{2, "Backend Development", "backend"},
		{3, "Full Stack Development", "fullstack"},
		{4, "UI/UX Design", "design"},
		{5, "Database", "database"},
		{6, "DevOps", "devops"},
		{7, "Mobile Development", "mobile"},
		{8, "Data Science", "datascience"},
		{9, "Machine Learning", "ml"},
		{10, "Cybersecurity", "security"},
		{11, "Quality Assurance", "qa"},
		{12, "Project Management", "pm"},
		{13, "Other", "other"},
	}

	DefaultDepartments = []string{
		"Frontend Development",
		"Backend Development",
		"Full Stack Development",
		"UI/UX Design",
		"Database",
		"DevOps",
		"Mobile Development",
		"Data Science",
		"Quality Assurance",
		"Project Management",
		"Cybersecurity",
		"Machine Learning",
		"Cloud Computing",
		"Software Testing",
	}

	DefaultSupervisors = []string{
		"Sarah Johnson",
		"Mike Davis",
		"Emily Chen",
		"John Smith",
		"Lisa Wang",
		"David Brown",
		"Anna Martinez",
		"Robert Wilson",
		"Maria Garcia",
		"James Thompson",
		"Jessica Lee",
		"Kevin Rodriguez",
		"Amanda Foster",
		"Chris Parker",
	}
)
