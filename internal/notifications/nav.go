package notifications

const (
	PathCalendar = "/(tabs)/calendar"
	PathAdmin    = "/(tabs)/admin"
	PathHome     = "/(tabs)/home"
	PathTasks    = "/(tabs)/tasks"

	CalendarTabShifts  = "Shifts"
	CalendarTabTimeOff = "Time Off"
)

type Nav struct {
	Pathname string         `json:"pathname"`
	Params   map[string]any `json:"params"`
}

// Payload is the data block attached to every push so the app can route
// the tap to the right screen.
type Payload struct {
	Event Kind           `json:"event"`
	Nav   Nav            `json:"nav"`
	UI    map[string]any `json:"ui,omitempty"`
}

func Build(kind Kind, pathname string, params, ui map[string]any) Payload {
	if params == nil {
		params = map[string]any{}
	}
	if len(ui) == 0 {
		ui = nil
	}

	return Payload{
		Event: kind,
		Nav:   Nav{Pathname: pathname, Params: params},
		UI:    ui,
	}
}

func calendarTab(tab string) map[string]any {
	return map[string]any{"calendarTab": tab}
}
