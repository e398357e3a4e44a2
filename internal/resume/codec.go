package resume

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"resumeBuilder/internal/database"
)

// Encode serializes a structured field for its text column.
func Encode(v any) (datatypes.JSON, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode resume field: %w", err)
	}
	return datatypes.JSON(data), nil
}

// DecodePersonal parses personal_data; NULL or malformed input yields the zero value.
func DecodePersonal(raw []byte) PersonalData {
	var p PersonalData
	if len(raw) == 0 || json.Unmarshal(raw, &p) != nil {
		return PersonalData{}
	}
	return p
}

// DecodeExperience parses the experience list; NULL or malformed input yields an empty list.
func DecodeExperience(raw []byte) []Experience {
	return decodeList[Experience](raw)
}

// DecodeEducation parses the education list.
func DecodeEducation(raw []byte) []Education {
	return decodeList[Education](raw)
}

// DecodeSkills parses the skills list.
func DecodeSkills(raw []byte) []string {
	return decodeList[string](raw)
}

// DecodeProjects parses the projects list.
func DecodeProjects(raw []byte) []Project {
	return decodeList[Project](raw)
}

func decodeList[T any](raw []byte) []T {
	var items []T
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil || items == nil {
		return []T{}
	}
	return items
}

// FromModel decodes a stored row into a Record.
func FromModel(m database.Resume) Record {
	return Record{
		Email:        m.Email,
		Template:     TemplateOrDefault(m.Template),
		Personal:     DecodePersonal(m.PersonalData),
		Summary:      m.Summary,
		Experience:   DecodeExperience(m.Experience),
		Education:    DecodeEducation(m.Education),
		Skills:       DecodeSkills(m.Skills),
		Projects:     DecodeProjects(m.Projects),
		ExportStatus: m.ExportStatus,
		HasPDF:       m.PdfObjectKey != "",
	}
}
