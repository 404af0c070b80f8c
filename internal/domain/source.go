package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// ActivitySource identifies the upstream feed a posting came from.
type ActivitySource struct {
	Type           ActivitySourceType `json:"type"`
	Channel        string             `json:"channel"`
	Subchannel     string             `json:"subchannel"`
	ReportOrMethod string             `json:"reportOrMethod"`
}

// Key is the persisted form: "type|channel|subchannel|report".
func (s ActivitySource) Key() string {
	return fmt.Sprintf("%d|%s|%s|%s", s.Type, s.Channel, s.Subchannel, s.ReportOrMethod)
}

func (s ActivitySource) String() string { return s.Key() }

// ParseActivitySourceKey reverses Key. Malformed keys give an API source with no channel.
func ParseActivitySourceKey(key string) ActivitySource {
	parts := strings.SplitN(key, "|", 4)
	if len(parts) < 4 {
		return ActivitySource{Type: ActivitySourceAPI}
	}
	t, err := strconv.Atoi(parts[0])
	if err != nil || !ActivitySourceType(t).IsValid() {
		t = int(ActivitySourceAPI)
	}
	return ActivitySource{
		Type:           ActivitySourceType(t),
		Channel:        parts[1],
		Subchannel:     parts[2],
		ReportOrMethod: parts[3],
	}
}
