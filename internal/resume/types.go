package resume

// PersonalData 是 personal_data 列中的联系信息。
type PersonalData struct {
	FirstName string `json:"fname"`
	LastName  string `json:"lname"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	LinkedIn  string `json:"linkedin"`
}

// FullName joins the first and last name, skipping empty parts.
func (p PersonalData) FullName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	default:
		return p.FirstName + " " + p.LastName
	}
}

// Experience 表示一段工作经历。
type Experience struct {
	JobTitle    string `json:"job_title"`
	Company     string `json:"company"`
	Duration    string `json:"duration"`
	Description string `json:"description"`
}

// Education 表示一段教育经历。
type Education struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Year        string `json:"year"`
}

// Project 表示一个项目。
type Project struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Record 是解码后的完整简历，供表单回填与预览渲染使用。
type Record struct {
	Email        string
	Template     Template
	Personal     PersonalData
	Summary      string
	Experience   []Experience
	Education    []Education
	Skills       []string
	Projects     []Project
	ExportStatus string
	HasPDF       bool
}

// Empty returns the record used when no resume row exists yet.
func Empty(email string) Record {
	return Record{
		Email:      email,
		Template:   DefaultTemplate,
		Experience: []Experience{},
		Education:  []Education{},
		Skills:     []string{},
		Projects:   []Project{},
	}
}
