package sim

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-drift/fade/cmd/fade/internal/config"
)

// Action is something a script does to the controller.
type Action int

const (
	ActionShow Action = iota
	ActionHide
	ActionUnmount
)

// String returns the script keyword for the action.
func (a Action) String() string {
	switch a {
	case ActionShow:
		return "show"
	case ActionHide:
		return "hide"
	case ActionUnmount:
		return "unmount"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// Event is one scripted action at a point in simulated time.
type Event struct {
	At     time.Duration
	Action Action
}

// ParseScript parses a comma-separated list of "<time>:<action>" items,
// such as "0:show,150:hide,1s:unmount". A bare number is milliseconds;
// anything else is parsed by time.ParseDuration. Events are returned in
// time order, keeping the written order for equal times.
func ParseScript(s string) ([]Event, error) {
	var events []Event
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		at, action, ok := strings.Cut(item, ":")
		if !ok {
			return nil, fmt.Errorf("script item %q: want <time>:<action>", item)
		}
		d, err := parseTime(strings.TrimSpace(at))
		if err != nil {
			return nil, fmt.Errorf("script item %q: %w", item, err)
		}
		a, err := parseAction(strings.TrimSpace(action))
		if err != nil {
			return nil, fmt.Errorf("script item %q: %w", item, err)
		}
		events = append(events, Event{At: d, Action: a})
	}
	slices.SortStableFunc(events, func(a, b Event) int {
		return cmp.Compare(a.At, b.At)
	})
	return events, nil
}

func parseTime(s string) (time.Duration, error) {
	if ms, err := strconv.Atoi(s); err == nil {
		if ms < 0 {
			return 0, fmt.Errorf("negative time %d", ms)
		}
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative time %s", d)
	}
	return d, nil
}

func parseAction(s string) (Action, error) {
	switch strings.ToLower(s) {
	case "show", "on", "true":
		return ActionShow, nil
	case "hide", "off", "false":
		return ActionHide, nil
	case "unmount":
		return ActionUnmount, nil
	default:
		return 0, fmt.Errorf("unknown action %q", s)
	}
}

// DefaultScript shows the controller at zero and, unless it hides
// itself after the dwell, hides it once the dwell would have elapsed.
func DefaultScript(r *config.Resolved) []Event {
	events := []Event{{At: 0, Action: ActionShow}}
	if !r.HasAutoAdvance || !r.AutoHide {
		events = append(events, Event{At: r.Cycle() - r.Exit, Action: ActionHide})
	}
	return events
}
