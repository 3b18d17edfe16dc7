package webhook

import (
	"fmt"
	"math"
	"time"

	"heliroute/internal/geo"
	"heliroute/internal/wind"
)

const (
	ColorNoGo     = 0xFF0000
	ColorRepaired = 0xFFAA00
	ColorInfo     = 0x00D4FF
)

type DiscordEmbed struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Color       int            `json:"color"`
	Fields      []DiscordField `json:"fields,omitempty"`
	Timestamp   string         `json:"timestamp,omitempty"`
	Footer      *DiscordFooter `json:"footer,omitempty"`
}

type DiscordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type DiscordFooter struct {
	Text string `json:"text"`
}

type DiscordMessage struct {
	Username  string         `json:"username,omitempty"`
	AvatarURL string         `json:"avatar_url,omitempty"`
	Content   string         `json:"content,omitempty"`
	Embeds    []DiscordEmbed `json:"embeds"`
}

func FormatDiscordMessage(event Event, node string) DiscordMessage {
	var embed DiscordEmbed

	switch event.Type {
	case EventNoGo:
		embed = formatRouteEmbed(event, "⛔ NO-GO: "+event.Message, ColorNoGo)
	case EventRouteRepaired:
		embed = formatRouteEmbed(event, "🔧 Route stats repaired", ColorRepaired)
	default:
		embed = DiscordEmbed{
			Title:       "Heliroute Event",
			Description: event.Message,
			Color:       ColorInfo,
			Timestamp:   event.Timestamp.Format(time.RFC3339),
		}
	}
	embed.Footer = &DiscordFooter{Text: "Heliroute " + node}

	return DiscordMessage{
		Username: "Heliroute",
		Embeds:   []DiscordEmbed{embed},
	}
}

func formatRouteEmbed(event Event, title string, color int) DiscordEmbed {
	s := event.Stats
	fields := []DiscordField{
		{Name: "Aircraft", Value: aircraftLabel(event), Inline: true},
		{Name: "Distance", Value: fmt.Sprintf("%.1f nm", s.TotalDistanceNm), Inline: true},
		{Name: "ETE", Value: s.EstimatedTime, Inline: true},
		{Name: "Fuel Required", Value: fmt.Sprintf("%.0f lbs", s.FuelRequiredLbs), Inline: true},
		{Name: "Usable Load", Value: fmt.Sprintf("%.0f lbs", s.UsableLoadLbs), Inline: true},
		{Name: "Max Passengers", Value: fmt.Sprintf("%d", s.MaxPassengers), Inline: true},
	}
	if len(s.Legs) > 0 {
		first := s.Legs[0]
		fields = append(fields, DiscordField{
			Name:   "Initial Course",
			Value:  fmt.Sprintf("%03.0f° %s", first.BearingDegrees, geo.Cardinal(first.BearingDegrees)),
			Inline: true,
		})
	}
	if s.WindAdjusted && !s.Wind.Calm() {
		value := fmt.Sprintf("%03.0f° @ %.0f kt", s.Wind.DirectionDegrees, s.Wind.SpeedKnots)
		if len(s.Legs) > 0 {
			course := s.Legs[0].BearingDegrees
			value += fmt.Sprintf(" (headwind %+.0f kt, crosswind %.0f kt)",
				wind.HeadwindComponent(course, *s.Wind), math.Abs(wind.CrosswindComponent(course, *s.Wind)))
		}
		fields = append(fields, DiscordField{Name: "Wind", Value: value, Inline: true})
	}

	desc := event.Message
	if event.Type == EventNoGo {
		desc = fmt.Sprintf("Snapshot v%d cannot be flown as loaded.", event.Version)
	}

	return DiscordEmbed{
		Title:       title,
		Description: desc,
		Color:       color,
		Fields:      fields,
		Timestamp:   event.Timestamp.Format(time.RFC3339),
	}
}

func aircraftLabel(event Event) string {
	a := event.Stats.Aircraft
	if a.Registration != "" {
		return a.Type + " (" + a.Registration + ")"
	}
	return a.Type
}
