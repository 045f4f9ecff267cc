package dto

// CreateAcademicYearRequest opens a new school year.
type CreateAcademicYearRequest struct {
	Year   string `json:"year" validate:"required,min=4,max=12"`
	Active bool   `json:"active"`
}

// CreateSectionRequest adds a division to a standard.
type CreateSectionRequest struct {
	Standard     string  `json:"standard" validate:"required,oneof=play_group pre_kg lkg ukg"`
	SectionName  string  `json:"section_name" validate:"required,min=1,max=10"`
	Capacity     int     `json:"capacity" validate:"required,gt=0"`
	AcademicYear string  `json:"academic_year" validate:"required"`
	TeacherID    *string `json:"teacher_id" validate:"omitempty,uuid"`
}

// AssignTeacherRequest links a teacher to a cohort.
type AssignTeacherRequest struct {
	TeacherID      string `json:"teacher_id" validate:"required,uuid"`
	Standard       string `json:"standard" validate:"required,oneof=play_group pre_kg lkg ukg"`
	Section        string `json:"section" validate:"required,min=1,max=10"`
	AcademicYear   string `json:"academic_year" validate:"required"`
	IsClassTeacher bool   `json:"is_class_teacher"`
}
