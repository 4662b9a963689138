package request

type ListNotificationsRequest struct {
	Filter   string `form:"filter"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}
