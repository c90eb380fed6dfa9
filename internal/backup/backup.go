// Package backup reads and writes the read history as comma-separated
// records, one row per tracked item, most recent first.
//
// Format:
//
//	id,type,name,status,description,epic
//	3,SUBTASK,Write tests,IN_PROGRESS,unit and e2e,2
//	1,TASK,Release notes,NEW,,-
//
// The epic column holds the parent epic id for SUBTASK rows and NoEpic
// otherwise. A file is loaded completely or not at all.
package backup

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"

	"github.com/baiirun/tracker/internal/model"
)

// NoEpic fills the epic column of rows that are not subtasks.
const NoEpic = "-"

var Header = []string{"id", "type", "name", "status", "description", "epic"}

var (
	ErrBadHeader = errors.New("backup: header mismatch")
	ErrBadRecord = errors.New("backup: malformed record")
)

// Write emits the header followed by one row per item, in the given order.
func Write(w io.Writer, items []model.Item) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("backup: write header: %w", err)
	}
	for _, item := range items {
		epic := NoEpic
		if item.Kind == model.KindSubtask {
			epic = strconv.FormatInt(item.EpicID, 10)
		}
		row := []string{
			strconv.FormatInt(item.ID, 10),
			string(item.Kind),
			item.Name,
			string(item.Status),
			item.Description,
			epic,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("backup: write item %d: %w", item.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read parses records written by Write. name identifies the source in
// error messages.
func Read(r io.Reader, name string) ([]model.Item, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w in %s: file is empty", ErrBadHeader, name)
	}
	if err != nil {
		return nil, fmt.Errorf("backup: read %s: %w", name, err)
	}
	if !slices.Equal(header, Header) {
		return nil, fmt.Errorf("%w in %s: got %q", ErrBadHeader, name, header)
	}

	var items []model.Item
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("backup: read %s: %w", name, err)
		}
		item, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("%w in %s line %d: %v", ErrBadRecord, name, line, err)
		}
		items = append(items, item)
	}
	return items, nil
}

func parseRow(row []string) (model.Item, error) {
	if len(row) < len(Header) {
		return model.Item{}, fmt.Errorf("want %d fields, got %d", len(Header), len(row))
	}

	id, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil || id < 1 {
		return model.Item{}, fmt.Errorf("invalid id %q", row[0])
	}
	kind := model.Kind(row[1])
	if !kind.IsValid() {
		return model.Item{}, fmt.Errorf("invalid type %q", row[1])
	}
	status := model.Status(row[3])
	if !status.IsValid() {
		return model.Item{}, fmt.Errorf("invalid status %q", row[3])
	}

	item := model.Item{
		ID:          id,
		Kind:        kind,
		Name:        row[2],
		Status:      status,
		Description: row[4],
	}
	switch {
	case kind == model.KindSubtask:
		epicID, err := strconv.ParseInt(row[5], 10, 64)
		if err != nil || epicID < 1 {
			return model.Item{}, fmt.Errorf("invalid epic %q", row[5])
		}
		item.EpicID = epicID
	case row[5] != NoEpic:
		return model.Item{}, fmt.Errorf("epic %q on a %s row", row[5], kind)
	}
	return item, nil
}

func WriteFile(path string, items []model.Item) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("backup: create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("backup: close %s: %w", path, cerr)
		}
	}()
	return Write(f, items)
}

func ReadFile(path string) ([]model.Item, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("backup: open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return Read(f, path)
}
