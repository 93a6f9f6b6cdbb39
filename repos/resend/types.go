package resend

// ExportMail describes one export sent by mail.
type ExportMail struct {
	To        []string
	Purpose   string
	EventCode string
	Filename  string
	Rows      int
}
