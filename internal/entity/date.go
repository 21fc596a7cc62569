package entity

const (
	// DateLayout is the DD-MM-YYYY form used in file names and messages.
	DateLayout = "02-01-2006"
	// FormDateLayout is what an HTML date input submits.
	FormDateLayout = "2006-01-02"
)
