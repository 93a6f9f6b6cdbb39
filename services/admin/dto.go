package admin

type MailExportRequest struct {
	To        []string `json:"to" binding:"required,min=1"`
	Purpose   string   `json:"purpose"`
	EventCode string   `json:"event_code"`
}

type DeleteResponse struct {
	Deleted map[string]int `json:"deleted"`
}
