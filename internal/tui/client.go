package tui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultClientTimeout is the default timeout for API requests.
const DefaultClientTimeout = 10 * time.Second

// Client wraps HTTP calls to the FocusBreaker API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new API client with timeout
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: DefaultClientTimeout,
		},
	}
}

// ListTasks fetches tasks from the API
func (c *Client) ListTasks() ([]TaskItem, error) {
	resp, err := c.httpClient.Get(c.baseURL + "/tasks")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API error: %s", string(body))
	}

	var tasks []struct {
		ID               string `json:"id"`
		Name             string `json:"name"`
		AllocatedMinutes int    `json:"allocated_minutes"`
		Mode             string `json:"mode"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tasks); err != nil {
		return nil, err
	}

	items := make([]TaskItem, len(tasks))
	for i, t := range tasks {
		items[i] = TaskItem{
			ID:               t.ID,
			Name:             t.Name,
			AllocatedMinutes: t.AllocatedMinutes,
			Mode:             t.Mode,
		}
	}
	return items, nil
}

// CreateTask creates a new task
func (c *Client) CreateTask(name string, minutes int, mode string) (string, error) {
	body := map[string]interface{}{
		"name":              name,
		"allocated_minutes": minutes,
		"mode":              mode,
	}
	resp, err := c.post("/tasks", body)
	if err != nil {
		return "", err
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		return "", err
	}
	return result.ID, nil
}

// StartSession starts a work session for a task
func (c *Client) StartSession(taskID string) (string, error) {
	body := map[string]string{"task_id": taskID}
	resp, err := c.post("/sessions", body)
	if err != nil {
		return "", err
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		return "", err
	}
	return result.ID, nil
}

// ActiveSession fetches the live session snapshot
func (c *Client) ActiveSession() (*SessionView, error) {
	resp, err := c.httpClient.Get(c.baseURL + "/sessions/active")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API error: %s", string(body))
	}

	var status struct {
		Session *struct {
			ID                    string `json:"id"`
			TaskID                string `json:"task_id"`
			Mode                  string `json:"mode"`
			Status                string `json:"status"`
			BreaksTaken           int    `json:"breaks_taken"`
			BreaksSkipped         int    `json:"breaks_skipped"`
			SnoozePassesRemaining int    `json:"snooze_passes_remaining"`
		} `json:"session"`
		TimerState               string     `json:"timer_state"`
		ElapsedSeconds           int        `json:"elapsed_seconds"`
		RemainingSeconds         int        `json:"remaining_seconds"`
		ProgressPercent          float64    `json:"progress_percent"`
		Clock                    string     `json:"clock"`
		OnBreak                  bool       `json:"on_break"`
		BreakRemainingSeconds    int        `json:"break_remaining_seconds"`
		CoolingDown              bool       `json:"cooling_down"`
		CooldownRemainingSeconds int        `json:"cooldown_remaining_seconds"`
		NextBreakTime            *time.Time `json:"next_break_time"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, err
	}

	view := &SessionView{
		TimerState:               status.TimerState,
		ElapsedSeconds:           status.ElapsedSeconds,
		RemainingSeconds:         status.RemainingSeconds,
		ProgressPercent:          status.ProgressPercent,
		Clock:                    status.Clock,
		OnBreak:                  status.OnBreak,
		BreakRemainingSeconds:    status.BreakRemainingSeconds,
		CoolingDown:              status.CoolingDown,
		CooldownRemainingSeconds: status.CooldownRemainingSeconds,
		NextBreakTime:            status.NextBreakTime,
	}
	if status.Session != nil {
		view.SessionID = status.Session.ID
		view.TaskID = status.Session.TaskID
		view.Mode = status.Session.Mode
		view.Status = status.Session.Status
		view.BreaksTaken = status.Session.BreaksTaken
		view.BreaksSkipped = status.Session.BreaksSkipped
		view.SnoozePassesRemaining = status.Session.SnoozePassesRemaining
	}
	return view, nil
}

// SnoozeBreak postpones the owed break. ok is false when the snooze
// allowance is spent.
func (c *Client) SnoozeBreak(sessionID string) (bool, string, error) {
	return c.breakAction(sessionID, "snooze")
}

// SkipBreak discards the owed break. ok is false when nothing is owed.
func (c *Client) SkipBreak(sessionID string) (bool, string, error) {
	return c.breakAction(sessionID, "skip")
}

// TakeBreak starts the next owed break immediately. ok is false when a
// break is already underway or nothing is owed.
func (c *Client) TakeBreak(sessionID string) (bool, string, error) {
	return c.breakAction(sessionID, "take")
}

func (c *Client) breakAction(sessionID, action string) (bool, string, error) {
	resp, err := c.post("/sessions/"+sessionID+"/"+action, nil)
	if err != nil {
		return false, "", err
	}

	var result struct {
		OK     bool   `json:"ok"`
		Reason string `json:"reason"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		return false, "", err
	}
	return result.OK, result.Reason, nil
}

// ExtendSession lengthens the running session
func (c *Client) ExtendSession(sessionID string, extraMinutes int) error {
	body := map[string]int{"extra_minutes": extraMinutes}
	_, err := c.post("/sessions/"+sessionID+"/extend", body)
	return err
}

// CompleteSession finishes the running session
func (c *Client) CompleteSession(sessionID string) error {
	_, err := c.post("/sessions/"+sessionID+"/complete", nil)
	return err
}

// AbandonSession gives up on the running session
func (c *Client) AbandonSession(sessionID string) error {
	_, err := c.post("/sessions/"+sessionID+"/abandon", nil)
	return err
}

// EmergencyExit abandons a strict or focused session
func (c *Client) EmergencyExit(sessionID string) error {
	_, err := c.post("/sessions/"+sessionID+"/exit", nil)
	return err
}

// ListStreaks fetches the streak counters
func (c *Client) ListStreaks() ([]StreakView, error) {
	resp, err := c.httpClient.Get(c.baseURL + "/streaks")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var streaks []struct {
		Type         string `json:"type"`
		CurrentCount int    `json:"current_count"`
		BestCount    int    `json:"best_count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&streaks); err != nil {
		return nil, err
	}

	views := make([]StreakView, len(streaks))
	for i, s := range streaks {
		views[i] = StreakView{Type: s.Type, Current: s.CurrentCount, Best: s.BestCount}
	}
	return views, nil
}

func (c *Client) post(path string, data interface{}) ([]byte, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Post(c.baseURL+path, "application/json", bytes.NewReader(jsonData))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("API error: %s", string(body))
	}

	return body, nil
}

// CheckHealth checks if the daemon is healthy
func (c *Client) CheckHealth() (bool, error) {
	resp, err := c.httpClient.Get(c.baseURL + "/health")
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, nil
	}

	var health struct {
		OK bool `json:"ok"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return false, err
	}

	return health.OK, nil
}
