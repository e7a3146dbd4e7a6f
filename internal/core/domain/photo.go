package domain

// Photo - фотография из стокового поиска
type Photo struct {
	SmallURL       string
	Description    string
	AltDescription string
	Tags           []string
}
