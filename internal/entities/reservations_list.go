package entities

import "quickpark/internal/db"

// ToReservationResponse converts a stored reservation for the JSON boundary.
func ToReservationResponse(r db.Reservation) ReservationResponse {
	return ReservationResponse{
		ID:              r.ID,
		RenterID:        r.RenterID,
		GarageID:        r.GarageID,
		StartTime:       r.StartTime,
		EndTime:         r.EndTime,
		VehicleClass:    r.VehicleClass,
		TotalPrice:      r.TotalPrice,
		PaymentIntentID: r.PaymentIntentID,
		Status:          r.Status,
	}
}

func ToReservationList(rs []db.Reservation) []ReservationResponse {
	out := make([]ReservationResponse, 0, len(rs))
	for _, r := range rs {
		out = append(out, ToReservationResponse(r))
	}
	return out
}

func ToGarageResponse(g db.Garage) GarageResponse {
	return GarageResponse{
		ID:          g.ID,
		OwnerID:     g.OwnerID,
		Address:     g.Address,
		Description: g.Description,
		HourlyRate:  g.HourlyRate,
		Available:   g.Available,
		CreatedAt:   g.CreatedAt,
	}
}

func ToGarageList(gs []db.Garage) []GarageResponse {
	out := make([]GarageResponse, 0, len(gs))
	for _, g := range gs {
		out = append(out, ToGarageResponse(g))
	}
	return out
}
