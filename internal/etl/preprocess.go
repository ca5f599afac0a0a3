// Package etl turns raw e-Campus scrape data into normalized courses
// and retrieval chunks, and drives the refresh pipeline end to end.
package etl

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/CodeBBakGoSu/kangnam-Unv-chatbot/internal/lms"
)

// semesterAnchor is the first day of the semester. Week dates are
// projected from the first class meeting on or after this date.
var semesterAnchor = time.Date(2025, time.March, 4, 0, 0, 0, 0, time.UTC)

var koreanWeekdays = []string{"월", "화", "수", "목", "금", "토", "일"}

const weekMarker = "주차"

// timeInfo is the weekday/time pattern extracted from a course title
// parenthetical such as "(화 10:00-11:50)". day is Monday-based, -1
// when no weekday was found.
type timeInfo struct {
	day       int
	startTime string
	endTime   string
}

// Preprocess normalizes one scraped course: weeks sorted with the
// overview pinned first, blank activities dropped, assignment scrape
// errors normalized, video periods parsed, notices deduplicated, and
// week dates projected from the course title's weekday slot.
func Preprocess(raw lms.RawCourse) lms.Course {
	course := lms.Course{
		Title:       raw.Title,
		Professor:   raw.Professor,
		Description: raw.Description,
		Attendance:  raw.Weeks.AttendanceSummary,
	}

	course.Weeks = normalizeWeeks(raw.Weeks.Weeks)
	course.Videos = normalizeVideos(raw.Weeks.VideoAttendance)
	course.Notices = dedupeNotices(raw.Notices)

	info := extractTimeInfo(raw.Title)
	if info.day >= 0 {
		applyWeekDates(course.Weeks, info)
	}

	return course
}

// PreprocessAll normalizes every course. Normalization never fails for
// a single course, so the batch is always complete.
func PreprocessAll(raw []lms.RawCourse) []lms.Course {
	courses := make([]lms.Course, 0, len(raw))
	for _, r := range raw {
		courses = append(courses, Preprocess(r))
	}
	return courses
}

func normalizeWeeks(raw []lms.RawWeek) []lms.Week {
	weeks := make([]lms.Week, 0, len(raw))
	for _, rw := range raw {
		week := lms.Week{
			Title:      rw.Title,
			Ordinal:    weekOrdinal(rw.Title),
			Assignment: normalizeAssignment(rw.Assignment),
		}
		for _, act := range rw.Activities {
			if act == "" {
				continue
			}
			week.Activities = append(week.Activities, act)
		}
		weeks = append(weeks, week)
	}

	// Stable sort keeps the scrape order for weeks without an ordinal.
	sort.SliceStable(weeks, func(i, j int) bool {
		return weeks[i].Ordinal < weeks[j].Ordinal
	})

	// The overview section is pinned first regardless of ordinal.
	for i, w := range weeks {
		if w.Title == lms.OverviewWeekTitle {
			overview := weeks[i]
			copy(weeks[1:i+1], weeks[:i])
			weeks[0] = overview
			break
		}
	}

	return weeks
}

// weekOrdinal parses the leading number of an "N주차" title.
// Titles without the marker or with an unparseable prefix get 0.
func weekOrdinal(title string) int {
	idx := strings.Index(title, weekMarker)
	if idx < 0 {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(title[:idx]))
	if err != nil {
		return 0
	}
	return n
}

// normalizeAssignment converts a raw scrape failure into status/message
// form so downstream templates branch on one shape.
func normalizeAssignment(a *lms.AssignmentStatus) *lms.AssignmentStatus {
	if a == nil {
		return nil
	}
	out := *a
	if out.Err != "" {
		out.Status = "error"
		out.Message = out.Err
		out.Err = ""
	}
	return &out
}

// normalizeVideos splits period strings of the form
// "start ~ end(지각 : late)" into discrete dates. A period that does
// not match the pattern leaves the date fields empty.
func normalizeVideos(raw []lms.RawVideo) []lms.Video {
	videos := make([]lms.Video, 0, len(raw))
	for _, rv := range raw {
		v := lms.Video{Title: rv.Title, Period: rv.Period, URL: rv.URL}

		if start, rest, ok := strings.Cut(rv.Period, "~"); ok {
			v.StartDate = strings.TrimSpace(start)
			end, late, hasLate := strings.Cut(rest, "(")
			v.EndDate = strings.TrimSpace(end)
			if hasLate {
				late = strings.Replace(late, "지각 :", "", 1)
				late = strings.Replace(late, ")", "", 1)
				v.LateDate = strings.TrimSpace(late)
			}
		}

		videos = append(videos, v)
	}
	return videos
}

// dedupeNotices sorts notices by title descending, then keeps the
// first occurrence of each title.
func dedupeNotices(raw []lms.RawNotice) []lms.RawNotice {
	notices := make([]lms.RawNotice, len(raw))
	copy(notices, raw)
	sort.SliceStable(notices, func(i, j int) bool {
		return notices[i].Title > notices[j].Title
	})

	seen := make(map[string]struct{}, len(notices))
	out := notices[:0]
	for _, n := range notices {
		if _, ok := seen[n.Title]; ok {
			continue
		}
		seen[n.Title] = struct{}{}
		out = append(out, n)
	}
	return out
}

// extractTimeInfo reads the weekday and class hours from the first
// parenthetical in a course title, e.g. "데이터베이스실습 (화 10:00-11:50)".
func extractTimeInfo(title string) timeInfo {
	info := timeInfo{day: -1}

	open := strings.Index(title, "(")
	closing := strings.Index(title, ")")
	if open < 0 || closing < 0 || closing < open {
		return info
	}
	timeStr := title[open+1 : closing]

	for i, day := range koreanWeekdays {
		if strings.Contains(timeStr, day) {
			info.day = i
			break
		}
	}

	parts := strings.Fields(timeStr)
	if len(parts) >= 2 {
		if start, end, ok := strings.Cut(parts[1], "-"); ok {
			info.startTime = strings.TrimSpace(start)
			info.endTime = strings.TrimSpace(end)
		}
	}

	return info
}

// applyWeekDates stamps each ordinal-bearing week with the projected
// date of its class meeting: the first meeting is the course's weekday
// on or after the semester anchor, and each later week adds seven days.
func applyWeekDates(weeks []lms.Week, info timeInfo) {
	anchorDay := mondayBased(semesterAnchor.Weekday())
	firstClass := semesterAnchor.AddDate(0, 0, (info.day-anchorDay+7)%7)

	for i := range weeks {
		if weeks[i].Ordinal < 1 {
			continue
		}
		date := firstClass.AddDate(0, 0, (weeks[i].Ordinal-1)*7)
		weeks[i].Date = date.Format("2006-01-02")
		weeks[i].DayOfWeek = koreanWeekdays[mondayBased(date.Weekday())]
		weeks[i].StartTime = info.startTime
		weeks[i].EndTime = info.endTime
	}
}

func mondayBased(d time.Weekday) int { return (int(d) + 6) % 7 }
