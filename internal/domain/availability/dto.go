package availability

type SettingsRequest struct {
	DaysOff     map[string]bool `json:"days_off" validate:"dive,keys,weekday,endkeys"`
	SlotsPerDay *int            `json:"slots_per_day" validate:"omitempty,gte=1,lte=50"`
}

type SettingsResponse struct {
	DaysOff     map[string]bool `json:"days_off"`
	SlotsPerDay *int64          `json:"slots_per_day,omitempty"`
	Configured  bool            `json:"configured"`
}

func SettingsResponseFrom(s *Settings, configured bool) SettingsResponse {
	out := SettingsResponse{DaysOff: map[string]bool{}, Configured: configured}
	for _, d := range Weekdays {
		out.DaysOff[d] = s.DaysOff.Off(d)
	}
	if s.SlotsPerDay.Valid {
		v := s.SlotsPerDay.Int64
		out.SlotsPerDay = &v
	}
	return out
}

type BlockRequest struct {
	Date   string `json:"date" validate:"required,iso_date"`
	Reason string `json:"reason" validate:"max=500"`
}

type BlockedResponse struct {
	ID     string `json:"id"`
	Date   string `json:"date"`
	Reason string `json:"reason,omitempty"`
}

func BlockedResponseFrom(items []*BlockedDate) []BlockedResponse {
	out := make([]BlockedResponse, 0, len(items))
	for _, b := range items {
		out = append(out, BlockedResponse{ID: b.ID.String(), Date: b.ISODate(), Reason: b.Reason.String})
	}
	return out
}

// PlanRequest replays a date picker interaction: the client sends the month
// on screen, its current selection and optionally one date to toggle.
type PlanRequest struct {
	Month    string   `json:"month" validate:"required,iso_month"`
	Selected []string `json:"selected" validate:"dive,iso_date"`
	Toggle   string   `json:"toggle" validate:"omitempty,iso_date"`
}

type PlanResponse struct {
	Calendar Month    `json:"calendar"`
	Selected []string `json:"selected"`
	Changed  bool     `json:"changed"`
}
