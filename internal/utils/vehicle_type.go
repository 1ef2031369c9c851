package utils

import (
	"strings"

	"quickpark/internal/db"
)

var vehicleAliases = map[string]string{
	"moto":        db.VehicleTwoWheel,
	"motocicleta": db.VehicleTwoWheel,
	"motorcycle":  db.VehicleTwoWheel,
	"two-wheel":   db.VehicleTwoWheel,
	"coche":       db.VehicleCar,
	"car":         db.VehicleCar,
	"furgoneta":   db.VehicleVan,
	"van":         db.VehicleVan,
}

// NormalizeVehicleClass maps the vehicle class sent by clients onto the stored value.
// The second return is false for unknown classes.
func NormalizeVehicleClass(name string) (string, bool) {
	class, ok := vehicleAliases[strings.ToLower(strings.TrimSpace(name))]
	return class, ok
}
