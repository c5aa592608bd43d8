package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"emergency-dispatch-backend/internal/assess"
	"emergency-dispatch-backend/internal/fleet"
	"emergency-dispatch-backend/internal/model"
	"emergency-dispatch-backend/internal/session"
)

// dispatchTools are refused once a session already has services on the
// way, so a confused model cannot send a second wave of units.
var dispatchTools = map[string]bool{
	"dispatch_nearest_ambulance":     true,
	"dispatch_nearest_fire_truck":    true,
	"dispatch_multiple_fire_units":   true,
	"dispatch_nearest_patrol_unit":   true,
	"dispatch_multiple_police_units": true,
}

// Executor runs tool calls against the fleet registry and folds their
// results into the session state. The caller must hold the session lock
// for the duration of the call.
type Executor struct {
	registry   *fleet.Registry
	onDispatch func(dispatchID int64)
}

// NewExecutor wires an executor. onDispatch, if set, is invoked after
// every confirmed dispatch so operator alerts can go out.
func NewExecutor(registry *fleet.Registry, onDispatch func(int64)) *Executor {
	return &Executor{registry: registry, onDispatch: onDispatch}
}

func failure(msg string) map[string]any {
	return map[string]any{"success": false, "error": msg}
}

// Succeeded reports whether a tool result map indicates success.
func Succeeded(result map[string]any) bool {
	ok, _ := result["success"].(bool)
	return ok
}

// Execute runs one named tool with raw JSON arguments and returns the
// result to feed back to the model. State mutations happen here, so a
// successful result is already reflected in st when Execute returns.
func (e *Executor) Execute(ctx context.Context, st *session.State, name, rawArgs string) map[string]any {
	if rawArgs == "" {
		rawArgs = "{}"
	}

	if dispatchTools[name] && st.ServicesDispatched {
		res := map[string]any{
			"success": false,
			"error":   "Emergency services have already been dispatched for this session",
		}
		if st.ActiveDispatch != nil {
			res["active_dispatch"] = *st.ActiveDispatch
		}
		return res
	}

	switch name {
	case "classify_emergency":
		return e.classifyEmergency(st, rawArgs)
	case "set_user_location":
		return e.setUserLocation(st, rawArgs)
	case "lookup_location_by_area":
		return e.lookupLocationByArea(st, rawArgs)
	case "update_medical_info":
		return e.updateMedicalInfo(st, rawArgs)
	case "update_fire_info":
		return e.updateFireInfo(st, rawArgs)
	case "update_police_info":
		return e.updatePoliceInfo(st, rawArgs)

	case "get_nearby_ambulances":
		return e.getNearbyUnits(ctx, model.ServiceAmbulance, "ambulances", rawArgs)
	case "get_available_ambulances":
		return e.getAvailableUnits(ctx, model.ServiceAmbulance, "ambulances")
	case "dispatch_nearest_ambulance":
		return e.dispatchNearestAmbulance(ctx, st, rawArgs)
	case "assess_ambulance_need":
		return e.assessAmbulanceNeed(st, rawArgs)
	case "update_ambulance_status":
		return e.updateUnitStatus(ctx, model.ServiceAmbulance, "ambulance_id", rawArgs)

	case "get_nearby_fire_stations":
		return e.getNearbyFireStations(ctx, rawArgs)
	case "get_nearby_fire_trucks":
		return e.getNearbyUnits(ctx, model.ServiceFire, "fire_trucks", rawArgs)
	case "get_available_fire_trucks":
		return e.getAvailableUnits(ctx, model.ServiceFire, "fire_trucks")
	case "dispatch_nearest_fire_truck":
		return e.dispatchNearestFireTruck(ctx, st, rawArgs)
	case "dispatch_multiple_fire_units":
		return e.dispatchMultipleFireUnits(ctx, st, rawArgs)
	case "assess_fire_severity":
		return e.assessFireSeverity(st, rawArgs)
	case "update_fire_truck_status":
		return e.updateUnitStatus(ctx, model.ServiceFire, "fire_truck_id", rawArgs)

	case "get_nearby_patrol_units":
		return e.getNearbyUnits(ctx, model.ServicePolice, "patrol_units", rawArgs)
	case "get_available_patrol_units":
		return e.getAvailableUnits(ctx, model.ServicePolice, "patrol_units")
	case "dispatch_nearest_patrol_unit":
		return e.dispatchNearestPatrolUnit(ctx, st, rawArgs)
	case "dispatch_multiple_police_units":
		return e.dispatchMultiplePoliceUnits(ctx, st, rawArgs)
	case "assess_threat_level":
		return e.assessThreatLevel(st, rawArgs)
	case "create_case":
		return e.createCase(ctx, st, rawArgs)
	case "update_case_status":
		return e.updateCaseStatus(ctx, rawArgs)
	case "get_safety_instructions":
		return e.getSafetyInstructions(st, rawArgs)
	}

	return map[string]any{
		"success":         false,
		"error":           fmt.Sprintf("Unknown tool: %s", name),
		"available_tools": toolNames(),
	}
}

func toolNames() []string {
	catalog := Catalog()
	names := make([]string, 0, len(catalog))
	for _, t := range catalog {
		names = append(names, t.Function.Name)
	}
	sort.Strings(names)
	return names
}

func (e *Executor) classifyEmergency(st *session.State, rawArgs string) map[string]any {
	var args struct {
		EmergencyType string `json:"emergency_type"`
		Confidence    string `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return failure("Failed to parse tool arguments")
	}

	t, ok := session.ParseEmergencyType(args.EmergencyType)
	if !ok {
		return failure(fmt.Sprintf("Invalid emergency type: %s. Must be medical, fire, or police", args.EmergencyType))
	}
	st.SetEmergencyType(t)

	confidence := args.Confidence
	if confidence == "" {
		confidence = "medium"
	}
	return map[string]any{
		"success":        true,
		"emergency_type": string(t),
		"confidence":     confidence,
		"message":        fmt.Sprintf("Emergency classified as %s", t),
	}
}

func (e *Executor) setUserLocation(st *session.State, rawArgs string) map[string]any {
	var args struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Address   string  `json:"address"`
	}
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return failure("Failed to parse tool arguments")
	}
	if args.Latitude < -90 || args.Latitude > 90 || args.Longitude < -180 || args.Longitude > 180 {
		return failure("Invalid coordinates provided")
	}

	st.SetLocation(args.Latitude, args.Longitude, "llm_tool", args.Address)
	return map[string]any{
		"success":   true,
		"latitude":  args.Latitude,
		"longitude": args.Longitude,
		"message":   "Location recorded",
	}
}

func (e *Executor) lookupLocationByArea(st *session.State, rawArgs string) map[string]any {
	var args struct {
		AreaName string `json:"area_name"`
	}
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return failure("Failed to parse tool arguments")
	}

	lat, lon, matched := lookupArea(args.AreaName)
	st.SetLocation(lat, lon, "area_lookup", args.AreaName)
	return map[string]any{
		"success":      true,
		"area_name":    args.AreaName,
		"matched_area": matched,
		"latitude":     lat,
		"longitude":    lon,
		"message":      fmt.Sprintf("Location set to %s", matched),
	}
}

func (e *Executor) updateMedicalInfo(st *session.State, rawArgs string) map[string]any {
	var args struct {
		PatientCount *int     `json:"patient_count"`
		Symptoms     []string `json:"symptoms"`
		Conscious    *bool    `json:"patient_conscious"`
		Breathing    *bool    `json:"patient_breathing"`
		Notes        *string  `json:"notes"`
	}
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return failure("Failed to parse tool arguments")
	}

	update := map[string]any{}
	if args.PatientCount != nil {
		st.Medical.PatientCount = *args.PatientCount
		update["patient_count"] = *args.PatientCount
	}
	if len(args.Symptoms) > 0 {
		st.Medical.Symptoms = args.Symptoms
		update["symptoms"] = args.Symptoms
	}
	if args.Conscious != nil {
		st.Medical.Conscious = args.Conscious
		update["patient_conscious"] = *args.Conscious
	}
	if args.Breathing != nil {
		st.Medical.Breathing = args.Breathing
		update["patient_breathing"] = *args.Breathing
	}
	if args.Notes != nil {
		st.Medical.Notes = *args.Notes
		update["additional_notes"] = *args.Notes
	}

	return map[string]any{
		"success":             true,
		"medical_info_update": update,
		"message":             "Medical information updated",
	}
}

func (e *Executor) updateFireInfo(st *session.State, rawArgs string) map[string]any {
	var args struct {
		SmokeVisible  *bool   `json:"smoke_visible"`
		FlamesVisible *bool   `json:"flames_visible"`
		BuildingType  *string `json:"building_type"`
		PeopleTrapped *int    `json:"people_trapped"`
		FloorCount    *int    `json:"floor_count"`
		Notes         *string `json:"notes"`
	}
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return failure("Failed to parse tool arguments")
	}

	update := map[string]any{}
	if args.SmokeVisible != nil {
		st.Fire.SmokeVisible = args.SmokeVisible
		update["smoke_visible"] = *args.SmokeVisible
	}
	if args.FlamesVisible != nil {
		st.Fire.FlamesVisible = args.FlamesVisible
		update["flames_visible"] = *args.FlamesVisible
	}
	if args.BuildingType != nil {
		st.Fire.BuildingType = *args.BuildingType
		update["building_type"] = *args.BuildingType
	}
	if args.PeopleTrapped != nil {
		st.Fire.PeopleTrapped = *args.PeopleTrapped
		update["people_trapped"] = *args.PeopleTrapped
	}
	if args.FloorCount != nil {
		st.Fire.FloorCount = *args.FloorCount
		update["floor_count"] = *args.FloorCount
	}
	if args.Notes != nil {
		st.Fire.Notes = *args.Notes
		update["additional_notes"] = *args.Notes
	}

	return map[string]any{
		"success":          true,
		"fire_info_update": update,
		"message":          "Fire information updated",
	}
}

func (e *Executor) updatePoliceInfo(st *session.State, rawArgs string) map[string]any {
	var args struct {
		Subtype        *string `json:"emergency_subtype"`
		Weapons        *bool   `json:"weapons_involved"`
		Hostage        *bool   `json:"hostage_situation"`
		SuspectCount   *int    `json:"suspect_count"`
		VictimCount    *int    `json:"victim_count"`
		SuspectPresent *bool   `json:"suspect_present"`
		VictimSafe     *bool   `json:"victim_safe"`
		Notes          *string `json:"notes"`
	}
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return failure("Failed to parse tool arguments")
	}

	update := map[string]any{}
	if args.Subtype != nil {
		st.Police.Subtype = strings.ToLower(*args.Subtype)
		update["emergency_subtype"] = st.Police.Subtype
	}
	if args.Weapons != nil {
		st.Police.Weapons = args.Weapons
		update["weapons_involved"] = *args.Weapons
	}
	if args.Hostage != nil {
		st.Police.Hostage = args.Hostage
		update["hostage_situation"] = *args.Hostage
	}
	if args.SuspectCount != nil {
		st.Police.SuspectCount = *args.SuspectCount
		update["suspect_count"] = *args.SuspectCount
	}
	if args.VictimCount != nil {
		st.Police.VictimCount = *args.VictimCount
		update["victim_count"] = *args.VictimCount
	}
	if args.SuspectPresent != nil {
		st.Police.SuspectPresent = args.SuspectPresent
		update["suspect_present"] = *args.SuspectPresent
	}
	if args.VictimSafe != nil {
		st.Police.VictimSafe = args.VictimSafe
		update["victim_safe"] = *args.VictimSafe
	}
	if args.Notes != nil {
		st.Police.Notes = *args.Notes
		update["additional_notes"] = *args.Notes
	}

	return map[string]any{
		"success":            true,
		"police_info_update": update,
		"message":            "Police information updated",
	}
}

func unitMap(u model.Unit) map[string]any {
	m := map[string]any{
		"id":        u.ID,
		"call_sign": u.CallSign,
		"type":      u.Type,
		"status":    u.Status,
		"latitude":  u.Latitude,
		"longitude": u.Longitude,
	}
	if u.ContactPhone != "" {
		m["contact_phone"] = u.ContactPhone
	}
	if u.StationName != "" {
		m["station_name"] = u.StationName
	}
	if u.OfficersCount > 0 {
		m["officers_count"] = u.OfficersCount
	}
	if u.WaterCapacityLiters > 0 {
		m["water_capacity_liters"] = u.WaterCapacityLiters
	}
	return m
}

func candidateMap(c fleet.Candidate) map[string]any {
	m := unitMap(c.Unit)
	m["distance_km"] = c.DistanceKm
	m["estimated_arrival_minutes"] = c.EstimatedArrival
	return m
}

func (e *Executor) getNearbyUnits(ctx context.Context, service model.Service, key, rawArgs string) map[string]any {
	var args struct {
		UserLat  float64 `json:"user_lat"`
		UserLon  float64 `json:"user_lon"`
		RadiusKm float64 `json:"radius_km"`
		// Only one of these comes through per tool.
		AmbulanceType string `json:"ambulance_type"`
		TruckType     string `json:"truck_type"`
		UnitType      string `json:"unit_type"`
	}
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return failure("Failed to parse tool arguments")
	}
	unitType := args.AmbulanceType + args.TruckType + args.UnitType

	candidates, err := e.registry.Nearby(ctx, service, args.UserLat, args.UserLon, args.RadiusKm, unitType)
	if err != nil {
		return failure(err.Error())
	}

	res := map[string]any{"success": true, "count": len(candidates)}
	items := make([]map[string]any, 0, len(candidates))
	for _, c := range candidates {
		items = append(items, candidateMap(c))
	}
	res[key] = items

	if len(candidates) == 0 {
		p, _ := e.registry.Profile(service)
		radius := args.RadiusKm
		if radius <= 0 {
			radius = p.NearbyRadiusKm
		}
		res["message"] = fmt.Sprintf("No available units found within %.0f km", radius)
		res["suggestion"] = p.Suggestion
		res["fallback_number"] = p.FallbackNumber
	}
	return res
}

func (e *Executor) getAvailableUnits(ctx context.Context, service model.Service, key string) map[string]any {
	units, err := e.registry.AvailableUnits(ctx, service)
	if err != nil {
		return failure(err.Error())
	}
	items := make([]map[string]any, 0, len(units))
	for _, u := range units {
		items = append(items, unitMap(u))
	}
	return map[string]any{"success": true, "count": len(units), key: items}
}

func (e *Executor) getNearbyFireStations(ctx context.Context, rawArgs string) map[string]any {
	var args struct {
		UserLat  float64 `json:"user_lat"`
		UserLon  float64 `json:"user_lon"`
		RadiusKm float64 `json:"radius_km"`
	}
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return failure("Failed to parse tool arguments")
	}

	stations, err := e.registry.NearbyStations(ctx, model.ServiceFire, args.UserLat, args.UserLon, args.RadiusKm)
	if err != nil {
		return failure(err.Error())
	}

	items := make([]map[string]any, 0, len(stations))
	for _, s := range stations {
		items = append(items, map[string]any{
			"id":                        s.ID,
			"code":                      s.Code,
			"name":                      s.Name,
			"latitude":                  s.Latitude,
			"longitude":                 s.Longitude,
			"available_units":           s.AvailableUnits,
			"total_units":               s.TotalUnits,
			"contact_phone":             s.ContactPhone,
			"distance_km":               s.DistanceKm,
			"estimated_arrival_minutes": s.EstimatedArrival,
		})
	}
	res := map[string]any{"success": true, "count": len(stations), "fire_stations": items}
	if len(stations) == 0 {
		p, _ := e.registry.Profile(model.ServiceFire)
		res["message"] = "No fire stations with available units found nearby"
		res["suggestion"] = p.Suggestion
		res["fallback_number"] = p.FallbackNumber
	}
	return res
}

func (e *Executor) recordDispatch(st *session.State, serviceType string, res *fleet.Result) session.DispatchRecord {
	rec := session.DispatchRecord{
		DispatchID:   res.Dispatch.ID,
		ServiceType:  serviceType,
		UnitID:       res.Unit.ID,
		UnitCallSign: res.Unit.CallSign,
		ETAMinutes:   res.ETAMinutes,
		CaseNumber:   res.CaseNumber,
		Status:       model.DispatchActive,
		DispatchedAt: res.Dispatch.DispatchedAt,
	}
	st.AddDispatch(rec)
	st.AdvancePhase(session.PhaseProvidingGuidance)
	if e.onDispatch != nil {
		e.onDispatch(res.Dispatch.ID)
	}
	return rec
}

func (e *Executor) dispatchFailure(service model.Service, err error) map[string]any {
	p, perr := e.registry.Profile(service)
	if perr != nil {
		return failure(perr.Error())
	}
	if errors.Is(err, fleet.ErrNoCandidates) {
		return map[string]any{
			"success":         false,
			"error":           err.Error(),
			"suggestion":      p.Suggestion,
			"fallback_number": p.FallbackNumber,
		}
	}
	return failure(err.Error())
}

func (e *Executor) dispatchNearestAmbulance(ctx context.Context, st *session.State, rawArgs string) map[string]any {
	var args struct {
		UserLat       float64 `json:"user_lat"`
		UserLon       float64 `json:"user_lon"`
		EmergencyType string  `json:"emergency_type"`
		PatientCount  int     `json:"patient_count"`
		AmbulanceType string  `json:"ambulance_type"`
		Notes         string  `json:"notes"`
	}
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return failure("Failed to parse tool arguments")
	}

	res, err := e.registry.DispatchNearest(ctx, model.ServiceAmbulance, args.UserLat, args.UserLon, args.AmbulanceType, false, fleet.Detail{
		EmergencyType: args.EmergencyType,
		PeopleCount:   args.PatientCount,
		Notes:         args.Notes,
	})
	if err != nil {
		return e.dispatchFailure(model.ServiceAmbulance, err)
	}

	e.recordDispatch(st, string(model.ServiceAmbulance), res)
	return map[string]any{
		"success":                   true,
		"dispatch_id":               res.Dispatch.ID,
		"ambulance":                 unitMap(res.Unit),
		"distance_km":               res.DistanceKm,
		"estimated_arrival_minutes": res.ETAMinutes,
		"message":                   res.Message,
	}
}

func (e *Executor) assessAmbulanceNeed(st *session.State, rawArgs string) map[string]any {
	var args struct {
		Symptoms     []string `json:"symptoms"`
		PatientCount int      `json:"patient_count"`
		Conscious    *bool    `json:"patient_conscious"`
		Breathing    *bool    `json:"patient_breathing"`
	}
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return failure("Failed to parse tool arguments")
	}
	if args.PatientCount <= 0 {
		args.PatientCount = 1
	}
	conscious := args.Conscious == nil || *args.Conscious
	breathing := args.Breathing == nil || *args.Breathing

	result := assess.AmbulanceNeed(args.Symptoms, args.PatientCount, conscious, breathing)

	st.Medical.SeverityLevel = result.UrgencyLevel
	st.Medical.AmbulanceType = result.AmbulanceType
	st.AdvancePhase(session.PhaseAssessing)

	return map[string]any{"success": true, "assessment": result}
}

func (e *Executor) dispatchNearestFireTruck(ctx context.Context, st *session.State, rawArgs string) map[string]any {
	var args struct {
		UserLat       float64 `json:"user_lat"`
		UserLon       float64 `json:"user_lon"`
		FireType      string  `json:"fire_type"`
		Severity      string  `json:"severity"`
		PeopleTrapped int     `json:"people_trapped"`
		TruckType     string  `json:"truck_type"`
		Notes         string  `json:"notes"`
	}
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return failure("Failed to parse tool arguments")
	}

	res, err := e.registry.DispatchNearest(ctx, model.ServiceFire, args.UserLat, args.UserLon, args.TruckType, false, fleet.Detail{
		EmergencyType: args.FireType,
		Severity:      args.Severity,
		PeopleCount:   args.PeopleTrapped,
		Notes:         args.Notes,
	})
	if err != nil {
		return e.dispatchFailure(model.ServiceFire, err)
	}

	e.recordDispatch(st, string(model.ServiceFire), res)
	return map[string]any{
		"success":                   true,
		"dispatch_id":               res.Dispatch.ID,
		"fire_truck":                unitMap(res.Unit),
		"distance_km":               res.DistanceKm,
		"estimated_arrival_minutes": res.ETAMinutes,
		"message":                   res.Message,
	}
}

func multiDispatchResult(m *fleet.MultiResult, key string) map[string]any {
	items := make([]map[string]any, 0, len(m.Dispatches))
	for _, d := range m.Dispatches {
		items = append(items, map[string]any{
			"dispatch_id":               d.Dispatch.ID,
			"unit":                      unitMap(d.Unit),
			"distance_km":               d.DistanceKm,
			"estimated_arrival_minutes": d.ETAMinutes,
			"case_number":               d.CaseNumber,
			"message":                   d.Message,
		})
	}
	res := map[string]any{
		"success":          true,
		"units_requested":  m.UnitsRequested,
		"units_dispatched": m.UnitsDispatched,
		key:                items,
	}
	if len(m.Failed) > 0 {
		res["failed"] = m.Failed
	}
	return res
}

func (e *Executor) dispatchMultipleFireUnits(ctx context.Context, st *session.State, rawArgs string) map[string]any {
	var args struct {
		UserLat     float64 `json:"user_lat"`
		UserLon     float64 `json:"user_lon"`
		FireType    string  `json:"fire_type"`
		Severity    string  `json:"severity"`
		UnitsNeeded int     `json:"units_needed"`
		Notes       string  `json:"notes"`
	}
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return failure("Failed to parse tool arguments")
	}

	multi, err := e.registry.DispatchMultiple(ctx, model.ServiceFire, args.UserLat, args.UserLon, args.UnitsNeeded, fleet.Detail{
		EmergencyType: args.FireType,
		Severity:      args.Severity,
		Notes:         args.Notes,
	})
	if err != nil {
		return e.dispatchFailure(model.ServiceFire, err)
	}
	if multi.UnitsDispatched == 0 {
		return e.dispatchFailure(model.ServiceFire, fleet.ErrNoCandidates)
	}

	for i := range multi.Dispatches {
		e.recordDispatch(st, string(model.ServiceFire), &multi.Dispatches[i])
	}
	return multiDispatchResult(multi, "dispatches")
}

func (e *Executor) assessFireSeverity(st *session.State, rawArgs string) map[string]any {
	var in assess.FireInput
	if err := json.Unmarshal([]byte(rawArgs), &in); err != nil {
		return failure("Failed to parse tool arguments")
	}
	if in.FloorCount <= 0 {
		in.FloorCount = 1
	}
	if in.SpreadRate == "" {
		in.SpreadRate = "unknown"
	}

	result := assess.FireSeverity(in)

	st.Fire.SeverityLevel = result.SeverityLevel
	st.Fire.UnitsRecommended = result.UnitsRecommended
	st.AdvancePhase(session.PhaseAssessing)

	return map[string]any{
		"success":             true,
		"assessment":          result,
		"safety_instructions": assess.FireSafetyInstructions,
	}
}

func (e *Executor) dispatchNearestPatrolUnit(ctx context.Context, st *session.State, rawArgs string) map[string]any {
	var args struct {
		UserLat       float64 `json:"user_lat"`
		UserLon       float64 `json:"user_lon"`
		EmergencyType string  `json:"emergency_type"`
		ThreatLevel   string  `json:"threat_level"`
		RequireRapid  bool    `json:"require_rapid_response"`
		Notes         string  `json:"notes"`
	}
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return failure("Failed to parse tool arguments")
	}

	threat := strings.ToLower(args.ThreatLevel)
	requireRapid := args.RequireRapid || threat == "high" || threat == "critical"

	res, err := e.registry.DispatchNearest(ctx, model.ServicePolice, args.UserLat, args.UserLon, "", requireRapid, fleet.Detail{
		EmergencyType: args.EmergencyType,
		Severity:      threat,
		Notes:         args.Notes,
	})
	if err != nil {
		return e.dispatchFailure(model.ServicePolice, err)
	}

	e.recordDispatch(st, string(model.ServicePolice), res)
	if res.CaseNumber != "" {
		st.Police.CaseNumber = res.CaseNumber
	}
	return map[string]any{
		"success":                   true,
		"dispatch_id":               res.Dispatch.ID,
		"patrol_unit":               unitMap(res.Unit),
		"distance_km":               res.DistanceKm,
		"estimated_arrival_minutes": res.ETAMinutes,
		"case_number":               res.CaseNumber,
		"message":                   res.Message,
	}
}

func (e *Executor) dispatchMultiplePoliceUnits(ctx context.Context, st *session.State, rawArgs string) map[string]any {
	var args struct {
		UserLat       float64 `json:"user_lat"`
		UserLon       float64 `json:"user_lon"`
		EmergencyType string  `json:"emergency_type"`
		ThreatLevel   string  `json:"threat_level"`
		UnitsNeeded   int     `json:"units_needed"`
		Notes         string  `json:"notes"`
	}
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return failure("Failed to parse tool arguments")
	}

	multi, err := e.registry.DispatchMultiple(ctx, model.ServicePolice, args.UserLat, args.UserLon, args.UnitsNeeded, fleet.Detail{
		EmergencyType: args.EmergencyType,
		Severity:      strings.ToLower(args.ThreatLevel),
		Notes:         args.Notes,
	})
	if err != nil {
		return e.dispatchFailure(model.ServicePolice, err)
	}
	if multi.UnitsDispatched == 0 {
		return e.dispatchFailure(model.ServicePolice, fleet.ErrNoCandidates)
	}

	for i := range multi.Dispatches {
		e.recordDispatch(st, string(model.ServicePolice), &multi.Dispatches[i])
	}
	if st.Police.CaseNumber == "" && multi.Dispatches[0].CaseNumber != "" {
		st.Police.CaseNumber = multi.Dispatches[0].CaseNumber
	}
	return multiDispatchResult(multi, "dispatches")
}

func (e *Executor) assessThreatLevel(st *session.State, rawArgs string) map[string]any {
	var in assess.ThreatInput
	if err := json.Unmarshal([]byte(rawArgs), &in); err != nil {
		return failure("Failed to parse tool arguments")
	}
	if in.VictimCount <= 0 {
		in.VictimCount = 1
	}

	result := assess.ThreatLevel(in)

	st.Police.ThreatLevel = result.ThreatLevel
	st.AdvancePhase(session.PhaseAssessing)

	return map[string]any{"success": true, "assessment": result}
}

func (e *Executor) createCase(ctx context.Context, st *session.State, rawArgs string) map[string]any {
	var args struct {
		CaseType    string   `json:"case_type"`
		LocationLat *float64 `json:"location_lat"`
		LocationLon *float64 `json:"location_lon"`
		Description string   `json:"description"`
		VictimSafe  *bool    `json:"victim_safe"`
	}
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return failure("Failed to parse tool arguments")
	}

	lat, lon := st.Location.Latitude, st.Location.Longitude
	if args.LocationLat != nil {
		lat = *args.LocationLat
	}
	if args.LocationLon != nil {
		lon = *args.LocationLon
	}
	if args.VictimSafe != nil {
		st.Police.VictimSafe = args.VictimSafe
	}

	c, err := e.registry.CreateCase(ctx, args.CaseType, lat, lon, args.Description)
	if err != nil {
		return failure(err.Error())
	}

	st.Police.CaseNumber = c.CaseNumber
	return map[string]any{
		"success":     true,
		"case_number": c.CaseNumber,
		"case_type":   c.CrimeType,
		"status":      c.Status,
		"message":     fmt.Sprintf("Case %s created", c.CaseNumber),
	}
}

func (e *Executor) updateCaseStatus(ctx context.Context, rawArgs string) map[string]any {
	var args struct {
		CaseNumber string `json:"case_number"`
		NewStatus  string `json:"new_status"`
		Notes      string `json:"notes"`
	}
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return failure("Failed to parse tool arguments")
	}

	c, err := e.registry.UpdateCaseStatus(ctx, args.CaseNumber, args.NewStatus, args.Notes)
	switch {
	case errors.Is(err, fleet.ErrCaseNotFound):
		return failure(fmt.Sprintf("Case not found: %s", args.CaseNumber))
	case errors.Is(err, fleet.ErrInvalidStatus):
		return failure(fmt.Sprintf("Invalid case status: %s", args.NewStatus))
	case err != nil:
		return failure(err.Error())
	}

	return map[string]any{
		"success":     true,
		"case_number": c.CaseNumber,
		"new_status":  c.Status,
		"message":     fmt.Sprintf("Case %s updated to %s", c.CaseNumber, c.Status),
	}
}

func (e *Executor) getSafetyInstructions(st *session.State, rawArgs string) map[string]any {
	var args struct {
		EmergencyType string `json:"emergency_type"`
	}
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return failure("Failed to parse tool arguments")
	}

	instructions := assess.SafetyInstructions(args.EmergencyType)
	st.SafetyInstructionsGiven = true

	return map[string]any{
		"success":        true,
		"emergency_type": args.EmergencyType,
		"instructions":   instructions,
	}
}

func (e *Executor) updateUnitStatus(ctx context.Context, service model.Service, idKey, rawArgs string) map[string]any {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(rawArgs), &raw); err != nil {
		return failure("Failed to parse tool arguments")
	}
	var unitID int64
	if v, ok := raw[idKey]; ok {
		if err := json.Unmarshal(v, &unitID); err != nil {
			return failure("Failed to parse tool arguments")
		}
	}
	var newStatus string
	if v, ok := raw["new_status"]; ok {
		if err := json.Unmarshal(v, &newStatus); err != nil {
			return failure("Failed to parse tool arguments")
		}
	}

	oldStatus, err := e.registry.UpdateUnitStatus(ctx, service, unitID, newStatus)
	switch {
	case errors.Is(err, fleet.ErrUnitNotFound):
		return failure(fmt.Sprintf("Unit not found: %d", unitID))
	case errors.Is(err, fleet.ErrInvalidStatus):
		return failure(fmt.Sprintf("Invalid status: %s", newStatus))
	case err != nil:
		return failure(err.Error())
	}

	return map[string]any{
		"success":    true,
		"unit_id":    unitID,
		"old_status": oldStatus,
		"new_status": newStatus,
		"message":    fmt.Sprintf("Unit %d status updated to %s", unitID, newStatus),
	}
}
