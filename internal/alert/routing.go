package alert

// Route declares which capability channels fire for a priority level.
// Voice and ShortMessage remain subject to deployment configuration and
// the event's Speak flag; RemotePush is always best-effort.
type Route struct {
	Voice        bool
	Tone         bool
	ShortMessage bool
	RemotePush   bool
}

var routes = map[Priority]Route{
	PriorityNormal:   {Voice: true, RemotePush: true},
	PriorityHigh:     {Voice: true, Tone: true, RemotePush: true},
	PriorityCritical: {Voice: true, Tone: true, ShortMessage: true, RemotePush: true},
}

// RouteFor returns the channel set for a priority. Unknown priorities get
// the normal route.
func RouteFor(p Priority) Route {
	if route, ok := routes[p]; ok {
		return route
	}
	return routes[PriorityNormal]
}
