package etl

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/CodeBBakGoSu/kangnam-Unv-chatbot/internal/chunk"
	"github.com/CodeBBakGoSu/kangnam-Unv-chatbot/internal/lms"
)

// assignmentKeywords marks an activity name as the likely assignment
// title for its week.
var assignmentKeywords = []string{"과제", "제출", "리포트", "보고서", "퀴즈", "시험"}

// Generate produces the retrieval chunks for one normalized course.
// Output order is stable: course info, then per-week info/activity/
// assignment chunks in week order, then notices, videos, and the
// attendance summary. No chunk ever carries empty content.
func Generate(owner uuid.UUID, course lms.Course) []chunk.Chunk {
	var chunks []chunk.Chunk

	add := func(c chunk.Chunk) {
		if strings.TrimSpace(c.Content) == "" {
			return
		}
		c.ID = chunk.NewID(owner, c.Course, c.Week, c.Type, c.Content)
		chunks = append(chunks, c)
	}

	add(courseInfoChunk(course))

	for _, week := range course.Weeks {
		if week.Ordinal > 0 {
			add(weekInfoChunk(course, week))
		}
		if c, ok := activityChunk(course, week); ok {
			add(c)
		}
		if c, ok := assignmentChunk(course, week); ok {
			add(c)
		}
	}

	for _, notice := range course.Notices {
		add(noticeChunk(course, notice))
	}

	seenVideos := make(map[string]struct{})
	for _, video := range course.Videos {
		if _, ok := seenVideos[video.Title]; ok {
			continue
		}
		seenVideos[video.Title] = struct{}{}
		add(videoChunk(course, video))
	}

	for _, att := range course.Attendance {
		add(attendanceChunk(course, att))
	}

	return chunks
}

// GenerateAll produces chunks for every course in one flat slice.
func GenerateAll(owner uuid.UUID, courses []lms.Course) []chunk.Chunk {
	var all []chunk.Chunk
	for _, course := range courses {
		all = append(all, Generate(owner, course)...)
	}
	return all
}

func courseInfoChunk(course lms.Course) chunk.Chunk {
	content := fmt.Sprintf("과목명: %s\n교수: %s", course.Title, course.Professor)
	if course.Description != "" {
		content += fmt.Sprintf("\n설명: %s", course.Description)
	}

	return chunk.Chunk{
		Course:  course.Title,
		Week:    "기본정보",
		Type:    chunk.TypeCourseInfo,
		Content: content,
		Metadata: map[string]string{
			"professor": course.Professor,
			"source":    "KNU LMS",
		},
	}
}

func weekInfoChunk(course lms.Course, week lms.Week) chunk.Chunk {
	return chunk.Chunk{
		Course:  course.Title,
		Week:    week.Title,
		Type:    chunk.TypeWeekInfo,
		Content: fmt.Sprintf("%s %d주차: %s", course.Title, week.Ordinal, week.Title),
		Metadata: weekMetadata(week, map[string]string{
			"week_title": week.Title,
		}),
	}
}

func activityChunk(course lms.Course, week lms.Week) (chunk.Chunk, bool) {
	valid := validActivities(week.Activities)
	if len(valid) == 0 {
		return chunk.Chunk{}, false
	}
	joined := strings.Join(valid, ", ")

	return chunk.Chunk{
		Course:  course.Title,
		Week:    week.Title,
		Type:    chunk.TypeActivity,
		Content: fmt.Sprintf("%s 수업 활동은 %s입니다.", week.Title, joined),
		Value:   fmt.Sprintf("%s 강의의 %s에는 다음과 같은 수업 활동이 있습니다: %s.", course.Title, week.Title, joined),
		Metadata: weekMetadata(week, map[string]string{
			"start_time": week.StartTime,
			"end_time":   week.EndTime,
		}),
	}, true
}

func assignmentChunk(course lms.Course, week lms.Week) (chunk.Chunk, bool) {
	status := week.Assignment
	if status == nil || (status.Submitted == "" && !status.IsError()) {
		return chunk.Chunk{}, false
	}

	deadline := status.Deadline
	if deadline == "" {
		deadline = "정보 없음"
	}
	title := assignmentTitle(week)

	var content, value string
	switch {
	case status.IsError():
		content = fmt.Sprintf("'%s' 과제 정보를 가져오는 중 오류가 발생했습니다: %s", title, status.Message)
		value = fmt.Sprintf("%s 강의의 '%s' 과제 상태를 확인하는 데 문제가 발생했습니다. (%s). 해당 주차의 활동 내용을 참고해주세요.", course.Title, title, status.Message)
	case status.Submitted == "제출 안 함":
		content = fmt.Sprintf("'%s' 과제가 아직 제출되지 않았습니다. 마감일은 %s까지입니다.", title, deadline)
		value = fmt.Sprintf("%s 강의의 '%s' 과제를 아직 제출하지 않으셨습니다. 마감일은 %s이니 잊지 말고 제출해주세요.", course.Title, title, deadline)
	case status.Submitted == "제출 완료":
		content = fmt.Sprintf("'%s' 과제는 '%s' 상태이며, 마감일은 %s였습니다.", title, status.Submitted, deadline)
		value = fmt.Sprintf("%s 강의의 '%s' 과제를 제출하셨군요! 잘 하셨습니다. 마감일은 %s였습니다.", course.Title, title, deadline)
	default:
		content = fmt.Sprintf("'%s' 과제는 '%s' 상태입니다. 마감일은 %s였습니다.", title, status.Submitted, deadline)
		value = fmt.Sprintf("%s 강의의 '%s' 과제는 '%s' 상태이며, 마감일은 %s였습니다.", course.Title, title, status.Submitted, deadline)
	}

	return chunk.Chunk{
		Course:  course.Title,
		Week:    week.Title,
		Type:    chunk.TypeAssignment,
		Content: content,
		Value:   value,
		Metadata: weekMetadata(week, map[string]string{
			"assignment_title":    title,
			"submission_state":    status.Submitted,
			"deadline":            deadline,
			"original_week_title": week.Title,
		}),
	}, true
}

// assignmentTitle picks the assignment name for a week: the first
// activity containing an assignment keyword, else the first non-blank
// activity, else the week title.
func assignmentTitle(week lms.Week) string {
	valid := validActivities(week.Activities)

	for _, act := range valid {
		for _, kw := range assignmentKeywords {
			if strings.Contains(act, kw) {
				return act
			}
		}
	}
	if len(valid) > 0 {
		return valid[0]
	}
	return week.Title
}

func noticeChunk(course lms.Course, notice lms.RawNotice) chunk.Chunk {
	return chunk.Chunk{
		Course:  course.Title,
		Type:    chunk.TypeNotice,
		Content: fmt.Sprintf("공지사항: '%s'.", notice.Title),
		Value:   fmt.Sprintf("%s 강의에 새로운 공지사항이 등록되었습니다: '%s'. 확인이 필요합니다.", course.Title, notice.Title),
		Metadata: map[string]string{
			"title": notice.Title,
			"link":  notice.Link,
		},
	}
}

func videoChunk(course lms.Course, video lms.Video) chunk.Chunk {
	period := video.Period
	if period == "" {
		period = "기간 정보 없음"
	}
	start := orDefault(video.StartDate, "정보 없음")
	end := orDefault(video.EndDate, "정보 없음")
	late := orDefault(video.LateDate, "정보 없음")

	return chunk.Chunk{
		Course:  course.Title,
		Type:    chunk.TypeVideoLecture,
		Content: fmt.Sprintf("온라인 강의 '%s'의 수강 기간은 %s입니다.", video.Title, period),
		Value:   fmt.Sprintf("%s 강의의 온라인 학습 콘텐츠 '%s'를 수강해야 합니다. 수강 인정 기간은 %s부터 %s까지이며, 지각 처리 마감은 %s입니다.", course.Title, video.Title, start, end, late),
		Metadata: map[string]string{
			"period":     period,
			"start_date": start,
			"end_date":   end,
			"late_date":  late,
			"url":        video.URL,
		},
	}
}

func attendanceChunk(course lms.Course, att lms.RawAttendance) chunk.Chunk {
	var value string
	switch att.Status {
	case "결석":
		value = fmt.Sprintf("%s 강의 %d주차에 결석 기록이 있습니다. 확인이 필요합니다.", course.Title, att.Week)
	case "-":
		value = fmt.Sprintf("%s 강의 %d주차 출석 정보는 아직 업데이트되지 않았거나 수업 전입니다.", course.Title, att.Week)
	default:
		value = fmt.Sprintf("%s 강의의 %d주차 출석 상태는 '%s'입니다.", course.Title, att.Week, att.Status)
	}

	return chunk.Chunk{
		Course:  course.Title,
		Week:    fmt.Sprintf("%d주차", att.Week),
		Type:    chunk.TypeAttendanceSummary,
		Content: fmt.Sprintf("%d주차 출석 상태: %s.", att.Week, att.Status),
		Value:   value,
		Metadata: map[string]string{
			"status": att.Status,
		},
	}
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func validActivities(activities []string) []string {
	var valid []string
	for _, act := range activities {
		if strings.TrimSpace(act) != "" {
			valid = append(valid, act)
		}
	}
	return valid
}

func weekMetadata(week lms.Week, extra map[string]string) map[string]string {
	md := map[string]string{
		"date":        week.Date,
		"day_of_week": week.DayOfWeek,
	}
	for k, v := range extra {
		md[k] = v
	}
	return md
}
