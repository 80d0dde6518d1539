package entity

type PushToken struct {
	UserID        int64  `json:"user_id" validate:"required,gt=0"`
	ExpoPushToken string `json:"expo_push_token" validate:"required,max=255"`
}
