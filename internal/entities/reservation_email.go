package entities

// ReservationEmailData feeds the confirmation/cancellation messages.
type ReservationEmailData struct {
	UserName           string
	ReservationID      int64
	GarageAddress      string
	StartTimeFormatted string
	EndTimeFormatted   string
	TotalFormatted     string
	Status             string
	CurrentYear        int
}
