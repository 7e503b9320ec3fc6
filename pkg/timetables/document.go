package timetables

import (
	"encoding/xml"
	"time"
)

// Raw document structures of the DB Timetables API. Timestamps on the wire
// use the compact "yymmddHHMM" format.

type Timetable struct {
	XMLName xml.Name        `xml:"timetable"`
	Station string          `xml:"station,attr"`
	EVA     string          `xml:"eva,attr"`
	Stops   []TimetableStop `xml:"s"`
}

type TimetableStop struct {
	ID string `xml:"id,attr"`

	TripLabel *TripLabel `xml:"tl"`

	Arrival   *TimetableEvent `xml:"ar"`
	Departure *TimetableEvent `xml:"dp"`

	Messages []Message `xml:"m"`
}

type TripLabel struct {
	Category string `xml:"c,attr"`
	Number   string `xml:"n,attr"`
	Owner    string `xml:"o,attr"`
	Filter   string `xml:"f,attr"`
	Type     string `xml:"t,attr"`
}

type TimetableEvent struct {
	PlannedTime string `xml:"pt,attr"`
	ChangedTime string `xml:"ct,attr"`

	PlannedPath string `xml:"ppth,attr"`
	ChangedPath string `xml:"cpth,attr"`

	Line string `xml:"l,attr"`

	// "c" marks a cancelled event
	ChangedStatus string `xml:"cs,attr"`

	Messages []Message `xml:"m"`
}

type Message struct {
	ID       string `xml:"id,attr"`
	Type     string `xml:"t,attr"`
	Code     string `xml:"c,attr"`
	Category string `xml:"cat,attr"`
	From     string `xml:"from,attr"`
	To       string `xml:"to,attr"`
	Text     string `xml:",chardata"`
}

const timetableTimeFormat = "0601021504"

// ParseTimetableTime parses the compact DB timestamp into the given location.
func ParseTimetableTime(raw string, location *time.Location) (time.Time, error) {
	value := raw
	if len(value) > 10 {
		value = value[:10]
	}

	return time.ParseInLocation(timetableTimeFormat, value, location)
}
