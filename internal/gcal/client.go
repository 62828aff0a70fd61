package gcal

import (
	"context"
	"fmt"
	"time"

	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// Event тело события в терминах сервиса, без привязки к конкретному API
type Event struct {
	ID          string
	Summary     string
	Location    string
	Description string
	Start       time.Time
	End         time.Time
	Timezone    string
}

// API контракт внешнего календаря. Пагинация отдана наружу:
// вызывающий обязан выбрать все страницы, прежде чем что-то удалять.
type API interface {
	List(ctx context.Context, timeMin, timeMax time.Time, pageToken string) ([]Event, string, error)
	Insert(ctx context.Context, ev Event) (string, error)
	Update(ctx context.Context, eventID string, ev Event) (string, error)
	Delete(ctx context.Context, eventID string) error
}

// Client реализация API поверх Google Calendar v3 с сервисным аккаунтом
type Client struct {
	svc        *calendar.Service
	calendarID string
}

func NewClient(ctx context.Context, credentialsFile, calendarID string) (*Client, error) {
	svc, err := calendar.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(calendar.CalendarScope),
	)
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}

	return &Client{svc: svc, calendarID: calendarID}, nil
}

func (c *Client) List(ctx context.Context, timeMin, timeMax time.Time, pageToken string) ([]Event, string, error) {
	call := c.svc.Events.List(c.calendarID).
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime")
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	res, err := call.Context(ctx).Do()
	if err != nil {
		return nil, "", fmt.Errorf("list events: %w", err)
	}

	events := make([]Event, 0, len(res.Items))
	for _, item := range res.Items {
		events = append(events, fromGoogleEvent(item))
	}
	return events, res.NextPageToken, nil
}

func (c *Client) Insert(ctx context.Context, ev Event) (string, error) {
	created, err := c.svc.Events.Insert(c.calendarID, toGoogleEvent(ev)).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("insert event: %w", err)
	}
	return created.Id, nil
}

func (c *Client) Update(ctx context.Context, eventID string, ev Event) (string, error) {
	updated, err := c.svc.Events.Update(c.calendarID, eventID, toGoogleEvent(ev)).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("update event %s: %w", eventID, err)
	}
	return updated.Id, nil
}

func (c *Client) Delete(ctx context.Context, eventID string) error {
	if err := c.svc.Events.Delete(c.calendarID, eventID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete event %s: %w", eventID, err)
	}
	return nil
}

func toGoogleEvent(ev Event) *calendar.Event {
	return &calendar.Event{
		Summary:     ev.Summary,
		Location:    ev.Location,
		Description: ev.Description,
		Start: &calendar.EventDateTime{
			DateTime: ev.Start.Format(time.RFC3339),
			TimeZone: ev.Timezone,
		},
		End: &calendar.EventDateTime{
			DateTime: ev.End.Format(time.RFC3339),
			TimeZone: ev.Timezone,
		},
	}
}

func fromGoogleEvent(item *calendar.Event) Event {
	ev := Event{
		ID:          item.Id,
		Summary:     item.Summary,
		Location:    item.Location,
		Description: item.Description,
	}
	if item.Start != nil {
		ev.Timezone = item.Start.TimeZone
		if t, err := time.Parse(time.RFC3339, item.Start.DateTime); err == nil {
			ev.Start = t
		}
	}
	if item.End != nil {
		if t, err := time.Parse(time.RFC3339, item.End.DateTime); err == nil {
			ev.End = t
		}
	}
	return ev
}
