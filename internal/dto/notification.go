package dto

// BroadcastNotificationRequest fans an announcement out to a set of users.
type BroadcastNotificationRequest struct {
	UserIDs []string `json:"user_ids" validate:"required,min=1,dive,uuid"`
	Title   string   `json:"title" validate:"required,min=1,max=200"`
	Message string   `json:"message" validate:"required,min=1,max=2000"`
}
