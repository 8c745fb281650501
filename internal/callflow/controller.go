// Package callflow drives the IVR menu as a finite state machine and maps
// DTMF digits onto routing directives.
package callflow

import (
	"github.com/superparty/callcenter/internal/model/call"
	"github.com/superparty/callcenter/internal/transport"
)

// GreetingPrompt is spoken while the first digit is collected.
const GreetingPrompt = "Bună ziua! SuperParty. Apăsați 1 pentru rezervări. " +
	"Apăsați 2 pentru informații. Apăsați 3 pentru agent."

// DefaultDigit routes unrecognized or missing selections to the agent queue.
const DefaultDigit = "3"

// Route pairs the confirmation message with the transfer target.
type Route struct {
	Message string
	Target  string
}

// Targets lists the transfer destinations per menu option.
type Targets struct {
	Rezervari string
	Info      string
	Agent     string
}

// Controller turns call events into directives. It holds no per-call
// state; the caller owns the CallSession rows.
type Controller struct {
	routes     map[string]Route
	menuAction string
}

// New builds a controller with the fixed digit table.
func New(targets Targets, menuAction string) *Controller {
	return &Controller{
		menuAction: menuAction,
		routes: map[string]Route{
			"1": {Message: "Vă conectez cu rezervări.", Target: targets.Rezervari},
			"2": {Message: "Vă conectez cu informații.", Target: targets.Info},
			"3": {Message: "Vă conectez cu un agent.", Target: targets.Agent},
		},
	}
}

// Greeting emits the directive for the Greeting state: collect one digit,
// play the menu prompt, then post the selection to the menu action.
func (c *Controller) Greeting() transport.Response {
	return transport.Response{
		Gather: &transport.Gather{
			Input:     "dtmf",
			NumDigits: 1,
			Action:    c.menuAction,
			Method:    "POST",
			Say:       []transport.Say{transport.SpeakRO(GreetingPrompt)},
		},
	}
}

// Route resolves a digit (possibly empty on timeout) to its route and the
// directive that plays the confirmation and transfers the call. This is
// the Greeting→Routed transition.
func (c *Controller) Route(digit string) (Route, transport.Response) {
	route, ok := c.routes[digit]
	if !ok {
		route = c.routes[DefaultDigit]
	}
	directive := transport.Response{
		Say:  []transport.Say{transport.SpeakRO(route.Message)},
		Dial: &transport.Dial{Number: route.Target},
	}
	return route, directive
}

// statusRank orders lifecycle statuses so that late or repeated events
// never walk a session backwards.
func statusRank(s call.Status) int {
	switch s {
	case call.StatusQueued:
		return 1
	case call.StatusRinging:
		return 2
	case call.StatusInProgress:
		return 3
	}
	if s.Terminal() {
		return 4
	}
	return 0
}

// ApplyStatus folds a status event into the session. Status events form a
// separate, possibly out-of-order stream: they overwrite status and
// duration monotonically and never reset the menu state, so a routed call
// stays routed. Terminal statuses move the menu to Terminated.
func ApplyStatus(s *call.Session, status call.Status, durationSeconds int) {
	if statusRank(status) >= statusRank(s.Status) {
		s.Status = status
	}
	if durationSeconds > 0 {
		s.DurationSeconds = durationSeconds
	}
	if status.Terminal() {
		s.Menu = call.StateTerminated
	}
}
