package resume

import "strings"

// CollectExperience zips the repeated experience fields by index and drops
// entries whose job title is blank.
func CollectExperience(jobTitles, companies, durations, descriptions []string) []Experience {
	n := maxLen(jobTitles, companies, durations, descriptions)
	items := make([]Experience, 0, n)
	for i := 0; i < n; i++ {
		e := Experience{
			JobTitle:    at(jobTitles, i),
			Company:     at(companies, i),
			Duration:    at(durations, i),
			Description: at(descriptions, i),
		}
		if e.JobTitle == "" {
			continue
		}
		items = append(items, e)
	}
	return items
}

// CollectEducation drops entries whose degree is blank.
func CollectEducation(degrees, institutions, years []string) []Education {
	n := maxLen(degrees, institutions, years)
	items := make([]Education, 0, n)
	for i := 0; i < n; i++ {
		e := Education{
			Degree:      at(degrees, i),
			Institution: at(institutions, i),
			Year:        at(years, i),
		}
		if e.Degree == "" {
			continue
		}
		items = append(items, e)
	}
	return items
}

// CollectProjects drops entries whose name is blank.
func CollectProjects(names, descriptions []string) []Project {
	n := maxLen(names, descriptions)
	items := make([]Project, 0, n)
	for i := 0; i < n; i++ {
		p := Project{
			Name:        at(names, i),
			Description: at(descriptions, i),
		}
		if p.Name == "" {
			continue
		}
		items = append(items, p)
	}
	return items
}

// CollectSkills accepts repeated inputs as well as comma or newline separated lists.
func CollectSkills(values []string) []string {
	skills := make([]string, 0, len(values))
	for _, v := range values {
		for _, part := range strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == '\n' || r == '\r' }) {
			if part = strings.TrimSpace(part); part != "" {
				skills = append(skills, part)
			}
		}
	}
	return skills
}

func at(values []string, i int) string {
	if i >= len(values) {
		return ""
	}
	return strings.TrimSpace(values[i])
}

func maxLen(lists ...[]string) int {
	n := 0
	for _, l := range lists {
		if len(l) > n {
			n = len(l)
		}
	}
	return n
}
