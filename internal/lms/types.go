// Package lms defines the data model for Kangnam e-Campus course data and
// provides the scraping client that produces it.
package lms

// OverviewWeekTitle is the literal title of the course overview section
// on the e-Campus week list. It carries no week ordinal and is always
// pinned first when weeks are sorted.
const OverviewWeekTitle = "강의 개요"

// AssignmentStatus carries the submission state scraped from an
// assignment page. Scrape failures arrive with only Err set and are
// normalized by preprocessing into Status/Message form.
type AssignmentStatus struct {
	Submitted string `json:"submission_state,omitempty"`
	Deadline  string `json:"deadline,omitempty"`
	Status    string `json:"status,omitempty"`
	Message   string `json:"message,omitempty"`
	Err       string `json:"error,omitempty"`
}

// IsError reports whether the status describes a scrape failure,
// either raw (Err set) or normalized (Status == "error").
func (a *AssignmentStatus) IsError() bool {
	if a == nil {
		return false
	}
	return a.Err != "" || a.Status == "error"
}

// RawNotice is one course notice board entry.
type RawNotice struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

// RawVideo is one online lecture with its attendance period string,
// e.g. "2025-03-04 ~ 2025-03-18(지각 : 2025-03-25)".
type RawVideo struct {
	Title  string `json:"title"`
	Period string `json:"period"`
	URL    string `json:"url"`
}

// RawAttendance is one row of the weekly attendance summary.
// Status is "출석", "결석", or "-" when the class has not met yet.
type RawAttendance struct {
	Week   int    `json:"week"`
	Status string `json:"status"`
}

// RawWeek is one week section scraped from a course page.
// Title usually contains an "N주차" ordinal marker; the overview
// section and malformed titles carry none.
type RawWeek struct {
	Title      string            `json:"title"`
	Activities []string          `json:"activities"`
	Assignment *AssignmentStatus `json:"assignment_status,omitempty"`
}

// RawWeeks groups the week-scoped scrape results of one course.
type RawWeeks struct {
	Weeks             []RawWeek       `json:"weeks"`
	VideoAttendance   []RawVideo      `json:"video_attendance"`
	AttendanceSummary []RawAttendance `json:"attendance_summary"`
}

// RawCourse is the scraper's output for one enrolled course,
// immutable input to preprocessing.
type RawCourse struct {
	Title       string      `json:"title"`
	Professor   string      `json:"professor"`
	Description string      `json:"description,omitempty"`
	Weeks       RawWeeks    `json:"weeks"`
	Notices     []RawNotice `json:"notices"`
}

// Week is a RawWeek enriched with its extracted ordinal and, when the
// course title carries a parseable weekday/time pattern, the projected
// calendar date of the class meeting.
type Week struct {
	Title      string            `json:"title"`
	Ordinal    int               `json:"ordinal"`
	Activities []string          `json:"activities"`
	Assignment *AssignmentStatus `json:"assignment_status,omitempty"`
	Date       string            `json:"date,omitempty"`
	DayOfWeek  string            `json:"day_of_week,omitempty"`
	StartTime  string            `json:"start_time,omitempty"`
	EndTime    string            `json:"end_time,omitempty"`
}

// Video is a RawVideo with its period string split into discrete dates.
// Malformed period strings leave the date fields unset.
type Video struct {
	Title     string `json:"title"`
	Period    string `json:"period"`
	URL       string `json:"url"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
	LateDate  string `json:"late_date,omitempty"`
}

// Course is the normalized form consumed by chunk generation:
// weeks sorted and date-stamped, blank activities removed, notices
// deduplicated, video periods parsed.
type Course struct {
	Title       string          `json:"title"`
	Professor   string          `json:"professor"`
	Description string          `json:"description,omitempty"`
	Weeks       []Week          `json:"weeks"`
	Videos      []Video         `json:"videos"`
	Attendance  []RawAttendance `json:"attendance"`
	Notices     []RawNotice     `json:"notices"`
}

// CourseRef is the per-user course listing held in the session profile.
type CourseRef struct {
	Title     string `json:"title"`
	Professor string `json:"professor"`
}

// UserContext is the per-request user profile supplied by the session layer.
type UserContext struct {
	Username   string      `json:"username"`
	Name       string      `json:"name"`
	Department string      `json:"department"`
	Courses    []CourseRef `json:"courses"`
}
