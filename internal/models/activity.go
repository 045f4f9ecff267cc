package models

import "time"

// DailyActivity captures a teacher's end-of-day notes for one student.
type DailyActivity struct {
	ID            string    `db:"id" json:"id"`
	StudentID     string    `db:"student_id" json:"student_id"`
	TeacherID     string    `db:"teacher_id" json:"teacher_id"`
	Date          string    `db:"date" json:"date"`
	Rhymes        *string   `db:"rhymes" json:"rhymes,omitempty"`
	Activities    *string   `db:"activities" json:"activities,omitempty"`
	FoodHabits    *string   `db:"food_habits" json:"food_habits,omitempty"`
	NapStatus     *string   `db:"nap_status" json:"nap_status,omitempty"`
	BehaviorNotes *string   `db:"behavior_notes" json:"behavior_notes,omitempty"`
	Homework      *string   `db:"homework" json:"homework,omitempty"`
	Remarks       *string   `db:"remarks" json:"remarks,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
