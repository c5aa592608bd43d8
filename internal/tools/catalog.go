// Package tools exposes the emergency dispatch toolset to the language
// model and executes the calls it makes.
package tools

import "emergency-dispatch-backend/internal/llm"

func fn(name, description string, properties map[string]any, required ...string) llm.Tool {
	params := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		params["required"] = required
	}
	return llm.Tool{
		Type: "function",
		Function: llm.Function{
			Name:        name,
			Description: description,
			Parameters:  params,
		},
	}
}

func num(desc string) map[string]any {
	return map[string]any{"type": "number", "description": desc}
}

func integer(desc string) map[string]any {
	return map[string]any{"type": "integer", "description": desc}
}

func boolean(desc string) map[string]any {
	return map[string]any{"type": "boolean", "description": desc}
}

func str(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

func strEnum(desc string, values ...string) map[string]any {
	return map[string]any{"type": "string", "enum": values, "description": desc}
}

// StateTools manage conversation context: classification, location and
// per-service detail updates.
func StateTools() []llm.Tool {
	return []llm.Tool{
		fn("classify_emergency",
			"Classify the type of emergency based on the user's description. Call this once you understand what kind of emergency it is.",
			map[string]any{
				"emergency_type": strEnum("The type of emergency: medical (injuries, illness, accidents), fire (fires, smoke, explosions), police (kidnap, extortion, robbery, assault, threats)", "medical", "fire", "police"),
				"confidence":     strEnum("How confident you are in this classification", "high", "medium", "low"),
			}, "emergency_type"),
		fn("set_user_location",
			"Set user's location when they provide exact coordinates",
			map[string]any{
				"latitude":  num("Latitude coordinate"),
				"longitude": num("Longitude coordinate"),
				"address":   str("Optional address description"),
			}, "latitude", "longitude"),
		fn("lookup_location_by_area",
			"Convert an area/neighborhood name to coordinates. Use this when user provides a location like 'Koramangala', 'HSR Layout', 'Indiranagar' etc.",
			map[string]any{
				"area_name": str("Name of the area/neighborhood (e.g., 'Koramangala', 'HSR Layout', 'Indiranagar')"),
			}, "area_name"),
		fn("update_medical_info",
			"Update medical emergency details as you gather information from the user",
			map[string]any{
				"patient_count":     integer("Number of patients/injured people"),
				"symptoms":          map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "List of symptoms or conditions"},
				"patient_conscious": boolean("Is the patient conscious"),
				"patient_breathing": boolean("Is the patient breathing normally"),
				"notes":             str("Additional notes"),
			}),
		fn("update_fire_info",
			"Update fire emergency details as you gather information from the user",
			map[string]any{
				"smoke_visible":  boolean("Is smoke visible"),
				"flames_visible": boolean("Are flames visible"),
				"building_type":  strEnum("Type of building/area", "residential", "commercial", "industrial", "vehicle", "forest"),
				"people_trapped": integer("Number of people trapped"),
				"floor_count":    integer("Number of floors"),
				"notes":          str("Additional notes"),
			}),
		fn("update_police_info",
			"Update police emergency details as you gather information from the user",
			map[string]any{
				"emergency_subtype": strEnum("Specific type of police emergency", "kidnap", "extortion", "robbery", "assault", "threat", "suspicious_activity"),
				"weapons_involved":  boolean("Are weapons involved"),
				"hostage_situation": boolean("Is this a hostage situation"),
				"suspect_count":     integer("Number of suspects"),
				"victim_count":      integer("Number of victims"),
				"suspect_present":   boolean("Is the suspect still present"),
				"victim_safe":       boolean("Is the victim currently safe"),
				"notes":             str("Additional notes"),
			}),
	}
}

// AmbulanceTools cover medical emergencies.
func AmbulanceTools() []llm.Tool {
	return []llm.Tool{
		fn("get_nearby_ambulances",
			"Find available ambulances near a given location within a specified radius. Returns ambulances sorted by distance with estimated arrival times.",
			map[string]any{
				"user_lat":       num("User's latitude coordinate"),
				"user_lon":       num("User's longitude coordinate"),
				"radius_km":      num("Search radius in kilometers (default: 10)"),
				"ambulance_type": strEnum("Filter by ambulance type", "basic", "advanced", "icu"),
			}, "user_lat", "user_lon"),
		fn("get_available_ambulances",
			"List all available ambulances in the system",
			map[string]any{}),
		fn("dispatch_nearest_ambulance",
			"Automatically find and dispatch the nearest available ambulance to a medical emergency",
			map[string]any{
				"user_lat":       num("Emergency location latitude"),
				"user_lon":       num("Emergency location longitude"),
				"emergency_type": str("Type of medical emergency"),
				"patient_count":  integer("Number of patients"),
				"ambulance_type": strEnum("Required ambulance type", "basic", "advanced", "icu"),
				"notes":          str("Additional emergency details"),
			}, "user_lat", "user_lon", "emergency_type"),
		fn("assess_ambulance_need",
			"Assess the urgency of a medical situation and the ambulance type needed based on symptoms",
			map[string]any{
				"symptoms":          map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "List of symptoms or conditions"},
				"patient_count":     integer("Number of patients"),
				"patient_conscious": boolean("Is the patient conscious"),
				"patient_breathing": boolean("Is the patient breathing"),
			}, "symptoms"),
		fn("update_ambulance_status",
			"Update an ambulance's operational status",
			map[string]any{
				"ambulance_id": integer("ID of the ambulance"),
				"new_status":   strEnum("New status", "available", "busy", "dispatched", "maintenance"),
			}, "ambulance_id", "new_status"),
	}
}

// FireTools cover fire emergencies.
func FireTools() []llm.Tool {
	return []llm.Tool{
		fn("get_nearby_fire_stations",
			"Find fire stations near a location that have available units",
			map[string]any{
				"user_lat":  num("User's latitude coordinate"),
				"user_lon":  num("User's longitude coordinate"),
				"radius_km": num("Search radius in kilometers (default: 15)"),
			}, "user_lat", "user_lon"),
		fn("get_nearby_fire_trucks",
			"Find available fire trucks near a location",
			map[string]any{
				"user_lat":   num("User's latitude coordinate"),
				"user_lon":   num("User's longitude coordinate"),
				"radius_km":  num("Search radius in kilometers (default: 15)"),
				"truck_type": strEnum("Filter by truck type", "water_tender", "ladder", "rescue", "standard"),
			}, "user_lat", "user_lon"),
		fn("get_available_fire_trucks",
			"List all available fire trucks",
			map[string]any{}),
		fn("dispatch_nearest_fire_truck",
			"Automatically find and dispatch the nearest available fire truck to a fire emergency",
			map[string]any{
				"user_lat":       num("Fire location latitude"),
				"user_lon":       num("Fire location longitude"),
				"fire_type":      strEnum("Type of fire emergency", "building", "residential", "commercial", "industrial", "vehicle", "forest", "electrical", "gas", "kitchen", "other"),
				"severity":       strEnum("Severity of the fire", "low", "medium", "high", "critical"),
				"people_trapped": integer("Number of people trapped"),
				"truck_type":     strEnum("Preferred truck type", "water_tender", "ladder", "rescue", "standard"),
				"notes":          str("Additional emergency details"),
			}, "user_lat", "user_lon", "fire_type"),
		fn("dispatch_multiple_fire_units",
			"Dispatch multiple fire units for large-scale fire emergencies",
			map[string]any{
				"user_lat":     num("Fire location latitude"),
				"user_lon":     num("Fire location longitude"),
				"fire_type":    str("Type of fire emergency"),
				"severity":     strEnum("Severity of the fire", "low", "medium", "high", "critical"),
				"units_needed": integer("Number of units to dispatch"),
				"notes":        str("Additional emergency details"),
			}, "user_lat", "user_lon", "fire_type", "severity"),
		fn("assess_fire_severity",
			"Assess fire severity and get the recommended response",
			map[string]any{
				"smoke_visible":  boolean("Is smoke visible"),
				"flames_visible": boolean("Are flames visible"),
				"building_type":  strEnum("Type of building/area", "residential", "commercial", "industrial", "vehicle", "forest"),
				"people_trapped": integer("Number of people trapped"),
				"floor_count":    integer("Number of floors in the building"),
				"spread_rate":    strEnum("How fast the fire is spreading", "slow", "moderate", "fast", "unknown"),
			}, "building_type"),
		fn("update_fire_truck_status",
			"Update a fire truck's operational status",
			map[string]any{
				"fire_truck_id": integer("ID of the fire truck"),
				"new_status":    strEnum("New status", "available", "busy", "dispatched", "maintenance"),
			}, "fire_truck_id", "new_status"),
	}
}

// PoliceTools cover police emergencies and case tracking.
func PoliceTools() []llm.Tool {
	return []llm.Tool{
		fn("get_nearby_patrol_units",
			"Find available police patrol units near a location",
			map[string]any{
				"user_lat":  num("User's latitude coordinate"),
				"user_lon":  num("User's longitude coordinate"),
				"radius_km": num("Search radius in kilometers (default: 10)"),
				"unit_type": strEnum("Filter by unit type", "patrol", "rapid_response"),
			}, "user_lat", "user_lon"),
		fn("get_available_patrol_units",
			"List all available patrol units",
			map[string]any{}),
		fn("dispatch_nearest_patrol_unit",
			"Automatically find and dispatch the nearest available patrol unit to a police emergency",
			map[string]any{
				"user_lat":               num("Emergency location latitude"),
				"user_lon":               num("Emergency location longitude"),
				"emergency_type":         strEnum("Type of police emergency", "kidnap", "extortion", "robbery", "assault", "threat", "suspicious_activity"),
				"threat_level":           strEnum("Assessed threat level", "low", "medium", "high", "critical"),
				"require_rapid_response": boolean("Whether rapid response unit is required"),
				"notes":                  str("Additional emergency details"),
			}, "user_lat", "user_lon", "emergency_type"),
		fn("dispatch_multiple_police_units",
			"Dispatch multiple patrol units for high-threat situations",
			map[string]any{
				"user_lat":       num("Emergency location latitude"),
				"user_lon":       num("Emergency location longitude"),
				"emergency_type": str("Type of police emergency"),
				"threat_level":   strEnum("Assessed threat level", "low", "medium", "high", "critical"),
				"units_needed":   integer("Number of units to dispatch"),
				"notes":          str("Additional emergency details"),
			}, "user_lat", "user_lon", "emergency_type", "threat_level"),
		fn("assess_threat_level",
			"Assess threat level of a police emergency and get response recommendations",
			map[string]any{
				"emergency_type":    strEnum("Type of emergency", "kidnap", "extortion", "robbery", "assault", "threat", "suspicious_activity"),
				"weapons_involved":  boolean("Are weapons involved"),
				"hostage_situation": boolean("Is this a hostage situation"),
				"suspect_count":     integer("Number of suspects"),
				"victim_count":      integer("Number of victims"),
				"suspect_present":   boolean("Is the suspect still present"),
				"violence_occurred": boolean("Has violence occurred"),
			}, "emergency_type"),
		fn("create_case",
			"Create a new case record in the police system for tracking",
			map[string]any{
				"case_type":    strEnum("Type of case", "kidnap", "extortion", "robbery", "assault", "missing_person"),
				"location_lat": num("Incident location latitude"),
				"location_lon": num("Incident location longitude"),
				"description":  str("Case description"),
				"victim_safe":  boolean("Is the victim currently safe"),
			}, "case_type", "description"),
		fn("update_case_status",
			"Update the status of an existing case",
			map[string]any{
				"case_number": str("The case number"),
				"new_status":  strEnum("New status", "open", "investigating", "resolved", "closed"),
				"notes":       str("Additional notes"),
			}, "case_number", "new_status"),
		fn("get_safety_instructions",
			"Get safety instructions for specific emergency types to guide the user",
			map[string]any{
				"emergency_type": strEnum("Type of emergency", "kidnap", "extortion", "robbery", "assault", "threat"),
			}, "emergency_type"),
	}
}

// Catalog returns every tool the model may call.
func Catalog() []llm.Tool {
	all := StateTools()
	all = append(all, AmbulanceTools()...)
	all = append(all, FireTools()...)
	all = append(all, PoliceTools()...)
	return all
}
