package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/baiirun/tracker/internal/model"
	"github.com/baiirun/tracker/internal/render"
)

// ItemJSON is the --json form of an item. Durations are whole minutes.
type ItemJSON struct {
	ID          int64      `json:"id"`
	Kind        string     `json:"kind"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	Start       *time.Time `json:"start,omitempty"`
	End         *time.Time `json:"end,omitempty"`
	Minutes     int64      `json:"minutes,omitempty"`
	Epic        int64      `json:"epic,omitempty"`
}

func toItemJSON(item model.Item) ItemJSON {
	j := ItemJSON{
		ID:          item.ID,
		Kind:        string(item.Kind),
		Name:        item.Name,
		Description: item.Description,
		Status:      string(item.Status),
		Minutes:     int64(item.Duration / time.Minute),
		Epic:        item.EpicID,
	}
	if item.HasTime() {
		start, end := item.StartTime, item.EndTime()
		j.Start, j.End = &start, &end
	}
	return j
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) printItems(cmd *cobra.Command, items []model.Item) error {
	out := cmd.OutOrStdout()
	if a.asJSON {
		list := make([]ItemJSON, 0, len(items))
		for _, item := range items {
			list = append(list, toItemJSON(item))
		}
		return writeJSON(out, list)
	}
	_, err := fmt.Fprintln(out, render.List(items))
	return err
}

func (a *app) printItem(cmd *cobra.Command, item model.Item) error {
	out := cmd.OutOrStdout()
	if a.asJSON {
		return writeJSON(out, toItemJSON(item))
	}
	_, err := fmt.Fprintln(out, render.Detail(item))
	return err
}

// parseTime accepts RFC3339 or "2006-01-02 15:04" in local time.
func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(render.TimeLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q (use RFC3339 or %q)", s, render.TimeLayout)
	}
	return t, nil
}
