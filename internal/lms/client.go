package lms

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/corpix/uarand"

	apperrors "github.com/CodeBBakGoSu/kangnam-Unv-chatbot/internal/errors"
	"github.com/CodeBBakGoSu/kangnam-Unv-chatbot/internal/logger"
)

const (
	defaultBaseURL = "https://ecampus.kangnam.ac.kr"
	loginPath      = "/login/index.php"
)

// Client scrapes the Kangnam e-Campus portal. A client holds one
// authenticated session; call Login before any fetch method.
type Client struct {
	httpClient *http.Client
	baseURL    string
	maxRetries int
	log        *logger.Logger
}

// NewClient creates a scraping client with a fresh cookie session.
func NewClient(timeout time.Duration, maxRetries int, log *logger.Logger) *Client {
	jar, _ := cookiejar.New(nil)

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Jar:     jar,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		baseURL:    defaultBaseURL,
		maxRetries: maxRetries,
		log:        log.WithModule("lms"),
	}
}

// SetBaseURL overrides the portal origin, used by tests to point the
// client at a local fixture server.
func (c *Client) SetBaseURL(u string) { c.baseURL = strings.TrimRight(u, "/") }

// Login authenticates the session. The portal answers a successful
// login with a redirect back to the dashboard; a response that still
// shows the login form means bad credentials.
func (c *Client) Login(ctx context.Context, username, password string) error {
	form := url.Values{
		"username": {username},
		"password": {password},
	}

	doc, err := c.postForm(ctx, c.baseURL+loginPath, form)
	if err != nil {
		return apperrors.NewWrapper("lms", "login").Wrap(err, "로그인에 실패했습니다.")
	}

	// The dashboard page carries the user info block; the login form does not.
	if doc.Find("div.user-info-picture").Length() == 0 && doc.Find("form#login").Length() > 0 {
		return apperrors.NewWrapper("lms", "login").Wrap(apperrors.ErrInvalidInput, "아이디 또는 비밀번호가 올바르지 않습니다.")
	}
	return nil
}

// FetchUserContext scrapes the dashboard for the user profile and the
// enrolled course list with links.
func (c *Client) FetchUserContext(ctx context.Context, username string) (UserContext, map[string]string, error) {
	doc, err := c.get(ctx, c.baseURL+"/")
	if err != nil {
		return UserContext{}, nil, apperrors.NewWrapper("lms", "fetch_dashboard").Wrap(err, "강의 목록을 불러오지 못했습니다.")
	}

	user := UserContext{Username: username}
	if info := doc.Find("div.user-info-picture").First(); info.Length() > 0 {
		user.Name = strings.TrimSpace(info.Find("h4").First().Text())
		user.Department = strings.TrimSpace(info.Find("p.department").First().Text())
	}

	courseURLs := make(map[string]string)
	doc.Find("ul.my-course-lists > li.course_label_re_03").Each(func(_ int, s *goquery.Selection) {
		title := strings.TrimSpace(s.Find(".course-title h3").First().Text())
		prof := strings.TrimSpace(s.Find(".course-title p.prof").First().Text())
		href, ok := s.Find("a.course_link").First().Attr("href")
		if title == "" || !ok {
			return
		}
		user.Courses = append(user.Courses, CourseRef{Title: title, Professor: prof})
		courseURLs[title] = href
	})

	return user, courseURLs, nil
}

// FetchCourse scrapes one course page: week sections with activities
// and assignment status, online video lectures, the attendance
// summary, and the notice board.
func (c *Client) FetchCourse(ctx context.Context, ref CourseRef, courseURL string) (RawCourse, error) {
	doc, err := c.get(ctx, courseURL)
	if err != nil {
		return RawCourse{}, apperrors.NewWrapper("lms", "fetch_course").Wrapf(err, "'%s' 강의 정보를 불러오지 못했습니다.", ref.Title)
	}

	course := RawCourse{
		Title:     ref.Title,
		Professor: ref.Professor,
	}
	course.Weeks.Weeks = c.parseWeeks(ctx, doc)
	course.Weeks.VideoAttendance = parseVideos(doc)
	course.Weeks.AttendanceSummary = parseAttendanceSummary(doc)
	course.Notices = parseNotices(doc)

	return course, nil
}

// ScrapeAll logs in and scrapes every enrolled course. Per-course
// failures are logged and skipped so one broken page does not lose the
// rest of the snapshot.
func (c *Client) ScrapeAll(ctx context.Context, username, password string) (UserContext, []RawCourse, error) {
	if err := c.Login(ctx, username, password); err != nil {
		return UserContext{}, nil, err
	}

	user, courseURLs, err := c.FetchUserContext(ctx, username)
	if err != nil {
		return UserContext{}, nil, err
	}

	courses := make([]RawCourse, 0, len(user.Courses))
	for _, ref := range user.Courses {
		courseURL, ok := courseURLs[ref.Title]
		if !ok {
			continue
		}
		course, err := c.FetchCourse(ctx, ref, courseURL)
		if err != nil {
			c.log.WithError(err).WithField("course", ref.Title).Error("course scrape failed, skipping")
			continue
		}
		courses = append(courses, course)
	}

	return user, courses, nil
}

func (c *Client) parseWeeks(ctx context.Context, doc *goquery.Document) []RawWeek {
	var weeks []RawWeek

	doc.Find("ul.weeks li.section.main.clearfix").Each(func(_ int, s *goquery.Selection) {
		title, _ := s.Attr("aria-label")
		week := RawWeek{Title: strings.TrimSpace(title)}

		s.Find("li.activity .instancename").Each(func(_ int, a *goquery.Selection) {
			week.Activities = append(week.Activities, strings.TrimSpace(a.Text()))
		})

		// Only the first assignment link per week is followed; Kangnam
		// course pages list at most one graded assignment per section.
		if href, ok := s.Find("li.activity.assign a").First().Attr("href"); ok {
			week.Assignment = c.fetchAssignmentStatus(ctx, href)
		}

		weeks = append(weeks, week)
	})

	return weeks
}

func (c *Client) fetchAssignmentStatus(ctx context.Context, assignURL string) *AssignmentStatus {
	doc, err := c.get(ctx, assignURL)
	if err != nil {
		return &AssignmentStatus{Err: "과제 페이지를 불러오지 못했습니다."}
	}

	table := doc.Find(".submissionstatustable table").First()
	if table.Length() == 0 {
		return &AssignmentStatus{Err: "과제 제출 정보 테이블을 찾을 수 없습니다."}
	}

	status := &AssignmentStatus{}
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() != 2 {
			return
		}
		key := strings.TrimSpace(cells.Eq(0).Text())
		val := strings.TrimSpace(cells.Eq(1).Text())
		switch key {
		case "제출 여부":
			status.Submitted = val
		case "종료 일시":
			status.Deadline = val
		}
	})
	return status
}

func parseVideos(doc *goquery.Document) []RawVideo {
	var videos []RawVideo

	doc.Find("li.activity.vod .activityinstance").Each(func(_ int, s *goquery.Selection) {
		title := strings.TrimSpace(s.Find("span.instancename").First().Text())
		period := strings.TrimSpace(s.Find("span.text-ubstrap").First().Text())
		href, _ := s.Find("a").First().Attr("href")

		if title == "" {
			title = "(제목 없음)"
		}
		videos = append(videos, RawVideo{Title: title, Period: period, URL: href})
	})

	return videos
}

func parseAttendanceSummary(doc *goquery.Document) []RawAttendance {
	var summary []RawAttendance

	doc.Find("ul.attendance li.attendance_section").Each(func(_ int, s *goquery.Selection) {
		weekLabel := strings.TrimSpace(s.Find("p.sname").First().Text())
		status := strings.TrimSpace(strings.Replace(s.Text(), weekLabel, "", 1))
		if status == "" {
			status = "-"
		}

		week, err := strconv.Atoi(strings.TrimSuffix(weekLabel, "주차"))
		if err != nil {
			return
		}
		summary = append(summary, RawAttendance{Week: week, Status: status})
	})

	return summary
}

func parseNotices(doc *goquery.Document) []RawNotice {
	var notices []RawNotice

	doc.Find("div.upcommings ul li > a").Each(func(_ int, s *goquery.Selection) {
		title, _ := s.Find("h5").First().Attr("title")
		title = strings.TrimSpace(title)
		href, _ := s.Attr("href")
		if title == "" {
			return
		}
		notices = append(notices, RawNotice{Title: title, Link: href})
	})

	return notices
}

func (c *Client) get(ctx context.Context, rawURL string) (*goquery.Document, error) {
	return c.do(ctx, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	})
}

func (c *Client) postForm(ctx context.Context, rawURL string, form url.Values) (*goquery.Document, error) {
	return c.do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	})
}

func (c *Client) do(ctx context.Context, newReq func() (*http.Request, error)) (*goquery.Document, error) {
	var doc *goquery.Document

	err := RetryWithBackoff(ctx, c.maxRetries, 2*time.Second, func() error {
		req, err := newReq()
		if err != nil {
			return &permanentError{err: fmt.Errorf("create request: %w", err)}
		}
		req.Header.Set("User-Agent", uarand.GetRandom())
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		req.Header.Set("Accept-Language", "ko-KR,ko;q=0.9,en-US;q=0.8,en;q=0.7")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			scrapeErr := apperrors.NewScrapeError(req.URL.String(), resp.StatusCode, nil)
			switch resp.StatusCode {
			case http.StatusTooManyRequests,
				http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
				return scrapeErr
			default:
				return &permanentError{err: scrapeErr}
			}
		}

		doc, err = goquery.NewDocumentFromReader(resp.Body)
		if err != nil {
			return fmt.Errorf("parse html: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}
