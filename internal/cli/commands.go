package cli

import (
	"context"
	"flag"
	"fmt"
	"strconv"

	"github.com/tasklite/tasklite/domain"
	"github.com/tasklite/tasklite/repository"
	taskUC "github.com/tasklite/tasklite/usecase/task"
)

func (a *app) runList(ctx context.Context, uc *taskUC.UseCase, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	completed := fs.String("completed", "all", "Filter by completion status: all, yes or no")
	dueBefore := fs.String("due-before", "", "Only tasks due on or before this date (YYYY-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	var filter repository.TaskFilter
	switch *completed {
	case "all":
	case "yes":
		v := true
		filter.Completed = &v
	case "no":
		v := false
		filter.Completed = &v
	default:
		return fmt.Errorf("--completed must be all, yes or no, got %q", *completed)
	}
	if *dueBefore != "" {
		date, err := parseDateArg(*dueBefore)
		if err != nil {
			return err
		}
		filter.DueBefore = &date
	}

	tasks, err := uc.ListTasks(ctx, filter)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		fmt.Fprintln(a.stdout, "No tasks.")
		return nil
	}
	for _, task := range tasks {
		fmt.Fprintln(a.stdout, formatTask(task))
	}
	return nil
}

func (a *app) runAdd(ctx context.Context, uc *taskUC.UseCase, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.stderr, "Usage: tasklite add <title> [--description text] [--due YYYY-MM-DD]")
		return errUsage
	}
	title := args[0]

	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	description := fs.String("description", "", "Optional longer description")
	due := fs.String("due", "", "Due date (YYYY-MM-DD)")
	if err := fs.Parse(args[1:]); err != nil {
		return errUsage
	}

	var dueDate *domain.Date
	if *due != "" {
		date, err := parseDateArg(*due)
		if err != nil {
			return err
		}
		dueDate = &date
	}

	task, err := uc.CreateTask(ctx, title, *description, dueDate)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Created task #%d: %s\n", task.ID, task.Title)
	return nil
}

func (a *app) runShow(ctx context.Context, uc *taskUC.UseCase, args []string) error {
	id, rest, err := a.taskIDArg("show", args)
	if err != nil {
		return err
	}
	if len(rest) != 0 {
		fmt.Fprintln(a.stderr, "Usage: tasklite show <id>")
		return errUsage
	}

	task, err := uc.GetTask(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, formatTask(*task))
	fmt.Fprintf(a.stdout, "    created: %s\n", task.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(a.stdout, "    updated: %s\n", task.UpdatedAt.Format("2006-01-02 15:04:05 MST"))
	return nil
}

func (a *app) runUpdate(ctx context.Context, uc *taskUC.UseCase, args []string) error {
	id, rest, err := a.taskIDArg("update", args)
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("update", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	title := fs.String("title", "", "New title")
	description := fs.String("description", "", "New description")
	clearDescription := fs.Bool("clear-description", false, "Clear the description")
	due := fs.String("due", "", "New due date (YYYY-MM-DD)")
	clearDue := fs.Bool("clear-due", false, "Remove the due date")
	if err := fs.Parse(rest); err != nil {
		return errUsage
	}

	// flag.Visit only reports flags the user actually supplied, which is
	// what lets --description "" clear a field while omitting the flag
	// leaves it untouched.
	supplied := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { supplied[f.Name] = true })

	var patch repository.TaskPatch
	if supplied["title"] {
		patch.Title = title
	}
	if *clearDescription {
		empty := ""
		patch.Description = &empty
	} else if supplied["description"] {
		patch.Description = description
	}
	if *clearDue {
		patch.DueDate = repository.ClearDate()
	} else if supplied["due"] {
		date, err := parseDateArg(*due)
		if err != nil {
			return err
		}
		patch.DueDate = repository.SetDate(date)
	}

	if patch.Empty() {
		fmt.Fprintln(a.stdout, "Nothing to update.")
		return nil
	}

	task, err := uc.UpdateTask(ctx, id, patch)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Updated task #%d.\n", task.ID)
	return nil
}

func (a *app) runComplete(ctx context.Context, uc *taskUC.UseCase, args []string) error {
	id, rest, err := a.taskIDArg("complete", args)
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("complete", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	undo := fs.Bool("undo", false, "Mark the task as not completed")
	if err := fs.Parse(rest); err != nil {
		return errUsage
	}

	completed := !*undo
	task, err := uc.UpdateTask(ctx, id, repository.TaskPatch{Completed: &completed})
	if err != nil {
		return err
	}
	if task.Completed {
		fmt.Fprintf(a.stdout, "Task #%d marked as done.\n", task.ID)
	} else {
		fmt.Fprintf(a.stdout, "Task #%d reopened.\n", task.ID)
	}
	return nil
}

func (a *app) runDelete(ctx context.Context, uc *taskUC.UseCase, args []string) error {
	id, rest, err := a.taskIDArg("delete", args)
	if err != nil {
		return err
	}
	if len(rest) != 0 {
		fmt.Fprintln(a.stderr, "Usage: tasklite delete <id>")
		return errUsage
	}

	if err := uc.DeleteTask(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Deleted task #%d.\n", id)
	return nil
}

func (a *app) runClear(ctx context.Context, uc *taskUC.UseCase, args []string) error {
	if len(args) != 0 {
		fmt.Fprintln(a.stderr, "Usage: tasklite clear")
		return errUsage
	}
	if err := uc.ClearTasks(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, "All tasks removed.")
	return nil
}

func (a *app) taskIDArg(command string, args []string) (int, []string, error) {
	if len(args) == 0 {
		fmt.Fprintf(a.stderr, "Usage: tasklite %s <id> [options]\n", command)
		return 0, nil, errUsage
	}
	id, err := strconv.Atoi(args[0])
	if err != nil || id <= 0 {
		return 0, nil, fmt.Errorf("task id must be a positive integer, got %q", args[0])
	}
	return id, args[1:], nil
}

func parseDateArg(value string) (domain.Date, error) {
	date, err := domain.ParseDate(value)
	if err != nil {
		return domain.Date{}, fmt.Errorf("invalid date %q, use the ISO format YYYY-MM-DD", value)
	}
	return date, nil
}

// formatTask renders one task as a single list line.
func formatTask(task domain.Task) string {
	due := "-"
	if task.DueDate != nil {
		due = task.DueDate.String()
	}
	status := " "
	if task.Completed {
		status = "x"
	}
	line := fmt.Sprintf("[%s] #%d %s (due: %s)", status, task.ID, task.Title, due)
	if task.Description != "" {
		line += ": " + task.Description
	}
	return line
}
