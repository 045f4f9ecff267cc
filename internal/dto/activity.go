package dto

// RecordActivityRequest captures a teacher's daily notes for a student.
type RecordActivityRequest struct {
	StudentID     string  `json:"student_id" validate:"required,uuid"`
	Date          string  `json:"date" validate:"required,datetime=2006-01-02"`
	Rhymes        *string `json:"rhymes" validate:"omitempty,max=500"`
	Activities    *string `json:"activities" validate:"omitempty,max=500"`
	FoodHabits    *string `json:"food_habits" validate:"omitempty,max=500"`
	NapStatus     *string `json:"nap_status" validate:"omitempty,max=200"`
	BehaviorNotes *string `json:"behavior_notes" validate:"omitempty,max=500"`
	Homework      *string `json:"homework" validate:"omitempty,max=500"`
	Remarks       *string `json:"remarks" validate:"omitempty,max=500"`
}

// ActivityHistoryQuery bounds a student's activity window.
type ActivityHistoryQuery struct {
	From string `form:"from" validate:"required,datetime=2006-01-02"`
	To   string `form:"to" validate:"required,datetime=2006-01-02"`
}
