package server

import (
	"time"

	"github.com/baiirun/tracker/internal/model"
)

// itemRequest is the POST body for every kind. Without an id it creates an
// item; with an id it updates one. Durations are whole minutes.
type itemRequest struct {
	ID              int64      `json:"id"`
	Name            *string    `json:"name"`
	Description     *string    `json:"description"`
	Status          *string    `json:"status"`
	StartTime       *time.Time `json:"start_time"`
	DurationMinutes *int64     `json:"duration_minutes"`
	EpicID          int64      `json:"epic_id"`
}

func (r itemRequest) draft() (model.Draft, error) {
	var d model.Draft
	if r.Name != nil {
		d.Name = *r.Name
	}
	if r.Description != nil {
		d.Description = *r.Description
	}
	if r.StartTime != nil {
		d.StartTime = *r.StartTime
	}
	if r.DurationMinutes != nil {
		dur, err := model.Minutes(*r.DurationMinutes)
		if err != nil {
			return d, err
		}
		d.Duration = dur
	}
	d.EpicID = r.EpicID
	return d, nil
}

func (r itemRequest) patch() (model.Patch, error) {
	p := model.Patch{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		StartTime:   r.StartTime,
	}
	if r.Status != nil {
		st, err := model.ParseStatus(*r.Status)
		if err != nil {
			return p, err
		}
		p.Status = &st
	}
	if r.DurationMinutes != nil {
		d, err := model.Minutes(*r.DurationMinutes)
		if err != nil {
			return p, err
		}
		p.Duration = &d
	}
	return p, nil
}

type itemResponse struct {
	ID              int64      `json:"id"`
	Kind            model.Kind `json:"kind"`
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	Status          string     `json:"status"`
	StartTime       *time.Time `json:"start_time,omitempty"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	DurationMinutes int64      `json:"duration_minutes"`
	TimeDefined     bool       `json:"time_defined,omitempty"`
	EpicID          int64      `json:"epic_id,omitempty"`
}

func toResponse(item model.Item) itemResponse {
	resp := itemResponse{
		ID:              item.ID,
		Kind:            item.Kind,
		Name:            item.Name,
		Description:     item.Description,
		Status:          string(item.Status),
		DurationMinutes: int64(item.Duration / time.Minute),
		TimeDefined:     item.TimeDefined,
		EpicID:          item.EpicID,
	}
	if item.HasTime() {
		start, end := item.StartTime, item.EndTime()
		resp.StartTime, resp.EndTime = &start, &end
	}
	return resp
}

func toResponses(items []model.Item) []itemResponse {
	out := make([]itemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toResponse(item))
	}
	return out
}
