package db

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"emergency-dispatch-backend/internal/model"
)

func ptr(id int64) *int64 { return &id }

// Seed populates an empty database with the sample Bangalore fleet.
// It is a no-op when units already exist.
func Seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Unit{}).Count(&count).Error; err != nil {
		return fmt.Errorf("seed precheck failed: %w", err)
	}
	if count > 0 {
		return nil
	}

	log.Println("Seeding sample fleet data...")

	fireStations := []model.Station{
		{ID: 1, Service: model.ServiceFire, Code: "FS-001", Name: "Central Fire Station", Latitude: 12.9716, Longitude: 77.5946, ContactPhone: "101", AvailableUnits: 3, TotalUnits: 4},
		{ID: 2, Service: model.ServiceFire, Code: "FS-002", Name: "Koramangala Fire Station", Latitude: 12.9352, Longitude: 77.6245, ContactPhone: "101", AvailableUnits: 2, TotalUnits: 3},
		{ID: 3, Service: model.ServiceFire, Code: "FS-003", Name: "Whitefield Fire Station", Latitude: 12.9698, Longitude: 77.7500, ContactPhone: "101", AvailableUnits: 2, TotalUnits: 2},
		{ID: 4, Service: model.ServiceFire, Code: "FS-004", Name: "Jayanagar Fire Station", Latitude: 12.9250, Longitude: 77.5897, ContactPhone: "101", AvailableUnits: 1, TotalUnits: 3},
		{ID: 5, Service: model.ServiceFire, Code: "FS-005", Name: "Electronic City Fire Station", Latitude: 12.8456, Longitude: 77.6603, ContactPhone: "101", AvailableUnits: 2, TotalUnits: 2},
	}

	policeStations := []model.Station{
		{ID: 6, Service: model.ServicePolice, Code: "PS-001", Name: "Cubbon Park Police Station", Latitude: 12.9763, Longitude: 77.5929, ContactPhone: "100", Jurisdiction: "Central Bangalore"},
		{ID: 7, Service: model.ServicePolice, Code: "PS-002", Name: "Koramangala Police Station", Latitude: 12.9279, Longitude: 77.6271, ContactPhone: "100", Jurisdiction: "Koramangala"},
		{ID: 8, Service: model.ServicePolice, Code: "PS-003", Name: "Whitefield Police Station", Latitude: 12.9698, Longitude: 77.7500, ContactPhone: "100", Jurisdiction: "Whitefield"},
		{ID: 9, Service: model.ServicePolice, Code: "PS-004", Name: "Jayanagar Police Station", Latitude: 12.9299, Longitude: 77.5838, ContactPhone: "100", Jurisdiction: "Jayanagar"},
		{ID: 10, Service: model.ServicePolice, Code: "PS-005", Name: "Electronic City Police Station", Latitude: 12.8456, Longitude: 77.6603, ContactPhone: "100", Jurisdiction: "Electronic City"},
		{ID: 11, Service: model.ServicePolice, Code: "PS-006", Name: "HSR Layout Police Station", Latitude: 12.9116, Longitude: 77.6389, ContactPhone: "100", Jurisdiction: "HSR Layout"},
	}

	ambulances := []model.Unit{
		{Service: model.ServiceAmbulance, CallSign: "KA-01-AM-1001", StationName: "City Hospital Ambulance", Latitude: 12.9716, Longitude: 77.5946, Status: model.StatusAvailable, Type: "advanced", ContactPhone: "080-1001"},
		{Service: model.ServiceAmbulance, CallSign: "KA-01-AM-1002", StationName: "Apollo Emergency", Latitude: 12.9352, Longitude: 77.6245, Status: model.StatusAvailable, Type: "basic", ContactPhone: "080-1002"},
		{Service: model.ServiceAmbulance, CallSign: "KA-01-AM-1003", StationName: "Manipal Ambulance", Latitude: 12.9165, Longitude: 77.6019, Status: model.StatusBusy, Type: "advanced", ContactPhone: "080-1003"},
		{Service: model.ServiceAmbulance, CallSign: "KA-01-AM-1004", StationName: "Fortis Emergency", Latitude: 12.9698, Longitude: 77.7500, Status: model.StatusAvailable, Type: "icu", ContactPhone: "080-1004"},
		{Service: model.ServiceAmbulance, CallSign: "KA-01-AM-1005", StationName: "Government Hospital", Latitude: 12.9783, Longitude: 77.5713, Status: model.StatusAvailable, Type: "basic", ContactPhone: "080-1005"},
		{Service: model.ServiceAmbulance, CallSign: "KA-01-AM-1006", StationName: "Red Cross Ambulance", Latitude: 12.9250, Longitude: 77.5897, Status: model.StatusMaintenance, Type: "basic", ContactPhone: "080-1006"},
		{Service: model.ServiceAmbulance, CallSign: "KA-01-AM-1007", StationName: "St. Johns Ambulance", Latitude: 12.9300, Longitude: 77.6200, Status: model.StatusAvailable, Type: "advanced", ContactPhone: "080-1007"},
		{Service: model.ServiceAmbulance, CallSign: "KA-01-AM-1008", StationName: "Narayana Health", Latitude: 12.9100, Longitude: 77.6500, Status: model.StatusAvailable, Type: "icu", ContactPhone: "080-1008"},
	}

	// Fire trucks are co-located with their home station.
	fireTrucks := []model.Unit{
		{Service: model.ServiceFire, CallSign: "KA-01-FT-101", StationID: ptr(1), Latitude: 12.9716, Longitude: 77.5946, Type: "water_tender", Status: model.StatusAvailable, WaterCapacityLiters: 8000},
		{Service: model.ServiceFire, CallSign: "KA-01-FT-102", StationID: ptr(1), Latitude: 12.9716, Longitude: 77.5946, Type: "ladder", Status: model.StatusAvailable, WaterCapacityLiters: 3000},
		{Service: model.ServiceFire, CallSign: "KA-01-FT-103", StationID: ptr(1), Latitude: 12.9716, Longitude: 77.5946, Type: "rescue", Status: model.StatusBusy, WaterCapacityLiters: 2000},
		{Service: model.ServiceFire, CallSign: "KA-01-FT-201", StationID: ptr(2), Latitude: 12.9352, Longitude: 77.6245, Type: "water_tender", Status: model.StatusAvailable, WaterCapacityLiters: 6000},
		{Service: model.ServiceFire, CallSign: "KA-01-FT-202", StationID: ptr(2), Latitude: 12.9352, Longitude: 77.6245, Type: "standard", Status: model.StatusAvailable, WaterCapacityLiters: 5000},
		{Service: model.ServiceFire, CallSign: "KA-01-FT-301", StationID: ptr(3), Latitude: 12.9698, Longitude: 77.7500, Type: "water_tender", Status: model.StatusAvailable, WaterCapacityLiters: 7000},
		{Service: model.ServiceFire, CallSign: "KA-01-FT-302", StationID: ptr(3), Latitude: 12.9698, Longitude: 77.7500, Type: "standard", Status: model.StatusMaintenance, WaterCapacityLiters: 5000},
		{Service: model.ServiceFire, CallSign: "KA-01-FT-401", StationID: ptr(4), Latitude: 12.9250, Longitude: 77.5897, Type: "water_tender", Status: model.StatusAvailable, WaterCapacityLiters: 5000},
		{Service: model.ServiceFire, CallSign: "KA-01-FT-501", StationID: ptr(5), Latitude: 12.8456, Longitude: 77.6603, Type: "standard", Status: model.StatusAvailable, WaterCapacityLiters: 5000},
		{Service: model.ServiceFire, CallSign: "KA-01-FT-502", StationID: ptr(5), Latitude: 12.8456, Longitude: 77.6603, Type: "rescue", Status: model.StatusAvailable, WaterCapacityLiters: 2000},
	}

	patrolUnits := []model.Unit{
		{Service: model.ServicePolice, CallSign: "PATROL-001", StationID: ptr(6), Latitude: 12.9750, Longitude: 77.5900, Type: "patrol", Status: model.StatusAvailable, OfficersCount: 2},
		{Service: model.ServicePolice, CallSign: "PATROL-002", StationID: ptr(6), Latitude: 12.9780, Longitude: 77.6000, Type: "rapid_response", Status: model.StatusAvailable, OfficersCount: 4},
		{Service: model.ServicePolice, CallSign: "PATROL-003", StationID: ptr(7), Latitude: 12.9300, Longitude: 77.6300, Type: "patrol", Status: model.StatusBusy, OfficersCount: 2},
		{Service: model.ServicePolice, CallSign: "PATROL-004", StationID: ptr(7), Latitude: 12.9250, Longitude: 77.6200, Type: "patrol", Status: model.StatusAvailable, OfficersCount: 2},
		{Service: model.ServicePolice, CallSign: "PATROL-005", StationID: ptr(8), Latitude: 12.9700, Longitude: 77.7450, Type: "patrol", Status: model.StatusAvailable, OfficersCount: 2},
		{Service: model.ServicePolice, CallSign: "PATROL-006", StationID: ptr(9), Latitude: 12.9320, Longitude: 77.5850, Type: "patrol", Status: model.StatusAvailable, OfficersCount: 2},
		{Service: model.ServicePolice, CallSign: "PATROL-007", StationID: ptr(10), Latitude: 12.8500, Longitude: 77.6600, Type: "rapid_response", Status: model.StatusAvailable, OfficersCount: 4},
		{Service: model.ServicePolice, CallSign: "PATROL-008", StationID: ptr(11), Latitude: 12.9100, Longitude: 77.6400, Type: "patrol", Status: model.StatusAvailable, OfficersCount: 2},
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for _, batch := range [][]model.Station{fireStations, policeStations} {
			if err := tx.Create(&batch).Error; err != nil {
				return fmt.Errorf("seed stations: %w", err)
			}
		}
		for _, batch := range [][]model.Unit{ambulances, fireTrucks, patrolUnits} {
			if err := tx.Create(&batch).Error; err != nil {
				return fmt.Errorf("seed units: %w", err)
			}
		}
		return nil
	})
}
