package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"atelier/pkg/models"
)

type eventData struct {
	Event models.Event `json:"event"`
}

type taskData struct {
	Task models.Task `json:"task"`
}

// MonthEvents lists the events of one month; month is 1-based on the wire
func (c *Client) MonthEvents(ctx context.Context, year int, month time.Month) ([]models.Event, error) {
	q := url.Values{}
	q.Set("year", strconv.Itoa(year))
	q.Set("month", strconv.Itoa(int(month)))

	var data struct {
		Events []models.Event `json:"events"`
	}
	if err := c.do(ctx, call{method: http.MethodGet, path: "/agenda/calendar", query: q}, &data); err != nil {
		return nil, err
	}
	return data.Events, nil
}

func (c *Client) CreateEvent(ctx context.Context, e models.Event) (models.Event, error) {
	var data eventData
	err := c.do(ctx, call{method: http.MethodPost, path: "/agenda/events", body: e}, &data)
	return data.Event, err
}

func (c *Client) UpdateEvent(ctx context.Context, id string, e models.Event) (models.Event, error) {
	var data eventData
	err := c.do(ctx, call{method: http.MethodPut, path: pathID("/agenda/events", id), body: e}, &data)
	return data.Event, err
}

func (c *Client) DeleteEvent(ctx context.Context, id string) error {
	return c.do(ctx, call{method: http.MethodDelete, path: pathID("/agenda/events", id)}, nil)
}

func (c *Client) SetEventStatus(ctx context.Context, id string, status models.EventStatus) (models.Event, error) {
	var data eventData
	body := map[string]models.EventStatus{"status": status}
	err := c.do(ctx, call{method: http.MethodPut, path: pathID("/agenda/events", id, "status"), body: body}, &data)
	return data.Event, err
}

// Tasks lists tasks; FilterAll sends no status parameter
func (c *Client) Tasks(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	q := url.Values{}
	if s := filter.Status(); s != "" {
		q.Set("status", string(s))
	}

	var data struct {
		Tasks []models.Task `json:"tasks"`
	}
	if err := c.do(ctx, call{method: http.MethodGet, path: "/agenda/tasks", query: q}, &data); err != nil {
		return nil, err
	}
	return data.Tasks, nil
}

func (c *Client) TaskStats(ctx context.Context) (models.TaskStats, error) {
	var data struct {
		Stats models.TaskStats `json:"stats"`
	}
	err := c.do(ctx, call{method: http.MethodGet, path: "/agenda/tasks/stats"}, &data)
	return data.Stats, err
}

func (c *Client) CreateTask(ctx context.Context, t models.Task) (models.Task, error) {
	var data taskData
	err := c.do(ctx, call{method: http.MethodPost, path: "/agenda/tasks", body: t}, &data)
	return data.Task, err
}

func (c *Client) UpdateTask(ctx context.Context, id string, t models.Task) (models.Task, error) {
	var data taskData
	err := c.do(ctx, call{method: http.MethodPut, path: pathID("/agenda/tasks", id), body: t}, &data)
	return data.Task, err
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, call{method: http.MethodDelete, path: pathID("/agenda/tasks", id)}, nil)
}

func (c *Client) SetTaskStatus(ctx context.Context, id string, status models.TaskStatus) (models.Task, error) {
	var data taskData
	body := map[string]models.TaskStatus{"status": status}
	err := c.do(ctx, call{method: http.MethodPut, path: pathID("/agenda/tasks", id, "status"), body: body}, &data)
	return data.Task, err
}

// ToggleChecklistItem flips one checklist item server-side and returns the whole task
func (c *Client) ToggleChecklistItem(ctx context.Context, id string, index int) (models.Task, error) {
	var data taskData
	path := pathID("/agenda/tasks", id, "checklist", strconv.Itoa(index))
	err := c.do(ctx, call{method: http.MethodPut, path: path}, &data)
	return data.Task, err
}
