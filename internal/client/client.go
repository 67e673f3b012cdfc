// Package client talks to the classroom backend: it fetches classroom state
// and exports it as a downloadable JSON file.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"ClassroomBoard/internal/logger"
	"ClassroomBoard/internal/notify"
	"ClassroomBoard/internal/state"
	"ClassroomBoard/internal/validate"
)

const (
	classroomDataPath = "/get_classroom_data"
	exportDataPath    = "/export_data"
	addStudentPath    = "/add_student"
	submitAnswerPath  = "/submit_student_answer"

	classIDHeader = "X-Class-ID"
)

// User-facing messages.
const (
	MsgFetchFailed  = "Failed to load classroom data"
	MsgExporting    = "Exporting data..."
	MsgExportDone   = "Data exported successfully"
	MsgExportFailed = "Failed to export data"
	MsgStudentAdded = "Student added"
	MsgAddFailed    = "Failed to add student"
	MsgAnswerSent   = "Answer submitted"
	MsgAnswerFailed = "Failed to submit answer"
)

var (
	now = time.Now // mockable

	ErrNotConfigured = errors.New("backend url is not configured")
	ErrInvalidInput  = errors.New("invalid input")
)

// StatusError is returned when the backend answers with a non-2xx status or
// reports success=false.
type StatusError struct {
	Path    string
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %d %s", e.Path, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %d %s", e.Path, e.Code, http.StatusText(e.Code))
}

type Notifier interface {
	Notify(message string, severity notify.Severity)
}

// Saver stores a downloaded file under name and returns where it went.
type Saver interface {
	Save(name string, data []byte) (string, error)
}

type Options struct {
	BaseURL    string
	ClassID    string
	Timeout    time.Duration // zero: no timeout
	HTTPClient *http.Client
}

type Deps struct {
	Store     *state.ClassroomStore
	Notifier  Notifier
	Validator *validate.Validator
	Saver     Saver
	Log       logger.Logger
}

type Client struct {
	base    *url.URL
	classID string
	http    *http.Client
	Deps
}

func New(opts Options, deps Deps) (*Client, error) {
	if strings.TrimSpace(opts.BaseURL) == "" {
		return nil, ErrNotConfigured
	}
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "parse backend url")
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	if deps.Store == nil {
		deps.Store = state.NewClassroomStore()
	}
	if deps.Log == nil {
		deps.Log = logger.Discard()
	}
	return &Client{base: base, classID: opts.ClassID, http: hc, Deps: deps}, nil
}

func (c *Client) notify(message string, severity notify.Severity) {
	if c.Notifier != nil {
		c.Notifier.Notify(message, severity)
	}
}

func (c *Client) endpoint(path string) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	return u.String()
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "encode request")
		}
		rd = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), rd)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.classID != "" {
		req.Header.Set(classIDHeader, c.classID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Path: path, Code: resp.StatusCode, Message: backendMessage(data)}
	}
	return data, nil
}

// backendMessage extracts "message" or "error" from a JSON error body.
func backendMessage(data []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(data, &body) != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}

// FetchClassroomData loads classroom state into the store and returns it. A
// failure is shown as a danger notification and returned; callers in the UI
// layer may ignore it.
func (c *Client) FetchClassroomData(ctx context.Context) (*state.Classroom, error) {
	classroom, err := c.fetchClassroomData(ctx)
	if err != nil {
		c.Log.Error("[CLIENT] Failed to get classroom data", err)
		c.notify(MsgFetchFailed, notify.Danger)
		return nil, err
	}
	c.Store.Set(classroom)
	c.Log.Info(fmt.Sprintf("[CLIENT] Loaded classroom data: %d students", len(classroom.Students)))
	return classroom, nil
}

func (c *Client) fetchClassroomData(ctx context.Context) (*state.Classroom, error) {
	data, err := c.do(ctx, http.MethodGet, classroomDataPath, nil)
	if err != nil {
		return nil, err
	}
	var classroom state.Classroom
	if err := json.Unmarshal(data, &classroom); err != nil {
		return nil, errors.Wrap(err, "decode classroom data")
	}
	if classroom.Success != nil && !*classroom.Success {
		return nil, &StatusError{Path: classroomDataPath, Code: http.StatusOK, Message: classroom.Message}
	}
	if classroom.Students == nil {
		classroom.Students = make(map[string]state.Student)
	}
	classroom.Raw = json.RawMessage(data)
	return &classroom, nil
}

// ExportName is the download file name for an export made at t.
func ExportName(t time.Time) string {
	return fmt.Sprintf("classroom_data_%s.json", t.UTC().Format("2006-01-02"))
}

// ExportData fetches exportable state and saves it as indented JSON. It
// returns where the file was saved. There is no retry.
func (c *Client) ExportData(ctx context.Context) (string, error) {
	c.notify(MsgExporting, notify.Info)

	location, err := c.exportData(ctx)
	if err != nil {
		c.Log.Error("[CLIENT] Failed to export data", err)
		c.notify(MsgExportFailed, notify.Danger)
		return "", err
	}
	c.Log.Info("[CLIENT] Exported data to " + location)
	c.notify(MsgExportDone, notify.Success)
	return location, nil
}

func (c *Client) exportData(ctx context.Context) (string, error) {
	if c.Saver == nil {
		return "", errors.New("no saver configured")
	}
	data, err := c.do(ctx, http.MethodGet, exportDataPath, nil)
	if err != nil {
		return "", err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, data, "", "  "); err != nil {
		return "", errors.Wrap(err, "decode export data")
	}
	return c.Saver.Save(ExportName(now()), out.Bytes())
}

// AddStudent validates name, registers it with the backend and refreshes the
// classroom state. Surrounding whitespace is not part of the name.
func (c *Client) AddStudent(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if c.Validator != nil && !c.Validator.StudentName(name) {
		return errors.Wrapf(ErrInvalidInput, "student name %q", name)
	}
	if _, err := c.do(ctx, http.MethodPost, addStudentPath, map[string]string{"name": name}); err != nil {
		c.Log.Error("[CLIENT] Failed to add student", err)
		c.notify(MsgAddFailed, notify.Danger)
		return err
	}
	c.notify(MsgStudentAdded, notify.Success)
	_, err := c.FetchClassroomData(ctx)
	return err
}

// SubmitAnswer validates answer and posts it for student. answerTime is the
// number of seconds the student took.
func (c *Client) SubmitAnswer(ctx context.Context, student, answer string, answerTime float64) error {
	if c.Validator != nil && !c.Validator.Answer(answer) {
		return errors.Wrap(ErrInvalidInput, "answer")
	}
	body := map[string]interface{}{
		"student_name": strings.TrimSpace(student),
		"answer":       strings.TrimSpace(answer),
		"answer_time":  answerTime,
	}
	if _, err := c.do(ctx, http.MethodPost, submitAnswerPath, body); err != nil {
		c.Log.Error("[CLIENT] Failed to submit answer", err)
		c.notify(MsgAnswerFailed, notify.Danger)
		return err
	}
	c.notify(MsgAnswerSent, notify.Success)
	return nil
}
