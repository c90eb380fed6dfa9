package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/baiirun/tracker/internal/model"
	"github.com/baiirun/tracker/internal/render"
)

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

// windowFlags are the --start and --minutes flags shared by add and update.
type windowFlags struct {
	start   string
	minutes int64
}

func (w *windowFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&w.start, "start", "", "start time (RFC3339 or \""+render.TimeLayout+"\")")
	cmd.Flags().Int64Var(&w.minutes, "minutes", 0, "duration in minutes")
}

func (w *windowFlags) apply(d *model.Draft) error {
	if w.start != "" {
		t, err := parseTime(w.start)
		if err != nil {
			return err
		}
		d.StartTime = t
	}
	dur, err := model.Minutes(w.minutes)
	if err != nil {
		return fmt.Errorf("--minutes: %w", err)
	}
	d.Duration = dur
	return nil
}

func newAddCmd(a *app) *cobra.Command {
	var desc string
	var window windowFlags

	add := &cobra.Command{
		Use:   "add",
		Short: "Create a task, epic or subtask",
	}

	task := &cobra.Command{
		Use:   "task <name>",
		Short: "Create a standalone task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := model.Draft{Name: args[0], Description: desc}
			if err := window.apply(&d); err != nil {
				return err
			}
			item, err := a.mgr.AddTask(d)
			if err != nil {
				return err
			}
			return a.printItem(cmd, item)
		},
	}
	window.register(task)

	epic := &cobra.Command{
		Use:   "epic <name>",
		Short: "Create an epic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := a.mgr.AddEpic(model.Draft{Name: args[0], Description: desc})
			if err != nil {
				return err
			}
			return a.printItem(cmd, item)
		},
	}

	sub := &cobra.Command{
		Use:     "sub <epic-id> <name>",
		Aliases: []string{"subtask"},
		Short:   "Create a subtask under an epic",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			epicID, err := parseID(args[0])
			if err != nil {
				return err
			}
			d := model.Draft{Name: args[1], Description: desc, EpicID: epicID}
			if err := window.apply(&d); err != nil {
				return err
			}
			item, err := a.mgr.AddSubtask(d)
			if err != nil {
				return err
			}
			return a.printItem(cmd, item)
		},
	}
	window.register(sub)

	add.PersistentFlags().StringVarP(&desc, "desc", "d", "", "description")
	add.AddCommand(task, epic, sub)
	return add
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show item details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			item, err := a.mgr.Get(id)
			if err != nil {
				return err
			}
			return a.printItem(cmd, item)
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List items in id order",
		RunE: func(cmd *cobra.Command, args []string) error {
			if kind == "" {
				return a.printItems(cmd, a.mgr.GetAll())
			}
			k, err := model.ParseKind(kind)
			if err != nil {
				return err
			}
			return a.printItems(cmd, a.mgr.ListKind(k))
		},
	}
	cmd.Flags().StringVarP(&kind, "kind", "k", "", "only list this kind (task, epic, sub)")
	return cmd
}

func newSubtasksCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "subtasks <epic-id>",
		Short: "List the subtasks of an epic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.printItems(cmd, a.mgr.SubtasksOf(id))
		},
	}
}

func newUpdateCmd(a *app) *cobra.Command {
	var (
		name, desc, status, start string
		minutes                   int64
		clearTime                 bool
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change an item's fields",
		Long: `Change an item's fields. Only flags that are given are applied.
Status and time flags are ignored for epics, whose status and window
follow their subtasks.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			p := model.Patch{ID: id}
			flags := cmd.Flags()
			if flags.Changed("name") {
				p.Name = &name
			}
			if flags.Changed("desc") {
				p.Description = &desc
			}
			if flags.Changed("status") {
				st, err := model.ParseStatus(status)
				if err != nil {
					return err
				}
				p.Status = &st
			}
			if flags.Changed("start") {
				t, err := parseTime(start)
				if err != nil {
					return err
				}
				p.StartTime = &t
			}
			if clearTime {
				zero := time.Time{}
				p.StartTime = &zero
			}
			if flags.Changed("minutes") {
				d, err := model.Minutes(minutes)
				if err != nil {
					return fmt.Errorf("--minutes: %w", err)
				}
				p.Duration = &d
			}

			item, err := a.mgr.Update(p)
			if err != nil {
				return err
			}
			return a.printItem(cmd, item)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVarP(&desc, "desc", "d", "", "new description")
	cmd.Flags().StringVarP(&status, "status", "s", "", "new status (new, in_progress, done)")
	cmd.Flags().StringVar(&start, "start", "", "new start time")
	cmd.Flags().Int64Var(&minutes, "minutes", 0, "new duration in minutes")
	cmd.Flags().BoolVar(&clearTime, "clear-time", false, "remove the start time")
	cmd.MarkFlagsMutuallyExclusive("start", "clear-time")
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an item; deleting an epic deletes its subtasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			item, err := a.mgr.Delete(id)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s %d: %s\n", item.Kind, item.ID, item.Name)
			return err
		},
	}
}

func newClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear <kind>",
		Short: "Delete every item of one kind (task, epic, sub)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := model.ParseKind(args[0])
			if err != nil {
				return err
			}
			if err := a.mgr.Clear(kind); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Cleared all %s items\n", kind)
			return err
		},
	}
}

func newPrioritizedCmd(a *app) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "prioritized",
		Short: "List timed tasks and subtasks by start time",
		RunE: func(cmd *cobra.Command, args []string) error {
			if from == "" && to == "" {
				return a.printItems(cmd, a.mgr.Prioritized())
			}
			lo, hi := time.Time{}, time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
			var err error
			if from != "" {
				if lo, err = parseTime(from); err != nil {
					return err
				}
			}
			if to != "" {
				if hi, err = parseTime(to); err != nil {
					return err
				}
			}
			return a.printItems(cmd, a.mgr.PrioritizedBetween(lo, hi))
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "only items starting at or after this time")
	cmd.Flags().StringVar(&to, "to", "", "only items starting before this time")
	return cmd
}
