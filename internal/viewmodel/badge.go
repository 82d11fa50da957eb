// Package viewmodel derives everything the dashboard renders from an
// in-memory delivery collection. All functions are pure and never fail.
package viewmodel

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type Badge struct {
	BackgroundClass string `json:"backgroundClass"`
	TextClass       string `json:"textClass"`
	Icon            string `json:"icon"`
	Label           string `json:"label"`
}

type palette struct {
	bg, text, icon string
}

var neutral = palette{bg: "bg-gray-100", text: "text-gray-800", icon: "package"}

// Delivery and order taxonomies share value names (PENDING, DELIVERED, ...),
// so one table covers both.
var palettes = map[string]palette{
	"PENDING":    {bg: "bg-yellow-100", text: "text-yellow-800", icon: "clock"},
	"PROCESSING": {bg: "bg-indigo-100", text: "text-indigo-800", icon: "loader"},
	"INTRANSIT":  {bg: "bg-blue-100", text: "text-blue-800", icon: "truck"},
	"SHIPPED":    {bg: "bg-blue-100", text: "text-blue-800", icon: "truck"},
	"DELIVERED":  {bg: "bg-green-100", text: "text-green-800", icon: "check-circle"},
	"CANCELLED":  {bg: "bg-red-100", text: "text-red-800", icon: "x-circle"},
	"REFUNDED":   {bg: "bg-pink-100", text: "text-pink-800", icon: "credit-card"},
	"RETURNED":   {bg: "bg-purple-100", text: "text-purple-800", icon: "rotate-ccw"},
}

// BadgeFor maps a raw status string to its presentation. Unknown values get
// the neutral badge.
func BadgeFor(status string) Badge {
	p, ok := palettes[strings.ToUpper(strings.TrimSpace(status))]
	if !ok {
		p = neutral
	}
	return Badge{
		BackgroundClass: p.bg,
		TextClass:       p.text,
		Icon:            p.icon,
		Label:           Label(status),
	}
}

// Label uppercases the first rune and lowercases the rest.
func Label(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "Unknown"
	}
	r, size := utf8.DecodeRuneInString(raw)
	return string(unicode.ToUpper(r)) + strings.ToLower(raw[size:])
}
