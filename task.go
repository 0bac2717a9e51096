package cpapi

import (
	"context"
	"time"

	retrygo "github.com/avast/retry-go/v4"
	"github.com/cockroachdb/errors"
	"github.com/tidwall/gjson"

	"github.com/lexfrei/go-cpapi/observability"
)

// TaskStatus is the state of a server-side task.
type TaskStatus string

const (
	TaskStatusInProgress         TaskStatus = "in progress"
	TaskStatusSucceeded          TaskStatus = "succeeded"
	TaskStatusFailed             TaskStatus = "failed"
	TaskStatusPartiallySucceeded TaskStatus = "partially succeeded"

	// TaskStatusTimedOut is never sent by the server. WaitForTask reports it
	// when its poll budget runs out while the task is still running.
	TaskStatusTimedOut TaskStatus = "timed-out"
)

// InProgress reports whether the status is non-terminal. The hyphenated
// spelling is accepted as well.
func (s TaskStatus) InProgress() bool {
	return s == TaskStatusInProgress || s == "in-progress"
}

const (
	// DefaultPollInterval is the pause between show-task calls.
	DefaultPollInterval = 5 * time.Second

	// DefaultMaxWait bounds how long WaitForTask polls.
	DefaultMaxWait = 300 * time.Second
)

// Task is a snapshot of a server-side task.
type Task struct {
	ID      string       `json:"task-id"`
	Name    string       `json:"task-name,omitempty"`
	Status  TaskStatus   `json:"status"`
	Percent int          `json:"progress-percentage"`
	Details []TaskDetail `json:"task-details,omitempty"`
}

// Done reports whether the task has stopped running, for any reason.
func (t Task) Done() bool {
	return !t.Status.InProgress() || t.Percent >= 100
}

// TaskDetail is the per-target outcome of a task.
type TaskDetail struct {
	Title         string   `json:"title"`
	Notifications []string `json:"notifications,omitempty"`
	Warnings      []string `json:"warnings,omitempty"`
	Errors        []string `json:"errors,omitempty"`
}

// WaitOptions tunes WaitForTask. The zero value uses the defaults.
type WaitOptions struct {
	PollInterval time.Duration
	MaxWait      time.Duration

	// OnProgress is called whenever the progress percentage differs from the
	// previous poll, including the first one.
	OnProgress func(Task)
}

func (o *WaitOptions) withDefaults() WaitOptions {
	var out WaitOptions
	if o != nil {
		out = *o
	}
	if out.PollInterval <= 0 {
		out.PollInterval = DefaultPollInterval
	}
	if out.MaxWait <= 0 {
		out.MaxWait = DefaultMaxWait
	}

	return out
}

// polls is the number of show-task calls allowed: MaxWait/PollInterval,
// rounded down.
func (o WaitOptions) polls() int {
	return int(o.MaxWait / o.PollInterval)
}

var errTaskRunning = errors.New("task still running")

// ShowTask returns the current state of a task. An empty id, or a reply that
// does not mention the task, yields a zero Task and no error.
func (c *Client) ShowTask(ctx context.Context, taskID string) (Task, error) {
	if taskID == "" {
		return Task{}, nil
	}

	resp, err := c.Call(ctx, MethodShowTask, Payload{"task-id": taskID})
	if err != nil {
		return Task{}, err
	}

	var task Task
	resp.Get("tasks").ForEach(func(_, value gjson.Result) bool {
		if value.Get("task-id").String() != taskID {
			return true
		}
		task = parseTask(value)
		return false
	})

	return task, nil
}

// WaitForTask polls a task until it finishes or the poll budget is spent.
//
// Running out of polls is not an error: the returned task has status
// TaskStatusTimedOut and no details. Errors from show-task and context
// cancellation end the wait and are returned. An empty taskID yields a zero
// Task without polling or progress events.
func (c *Client) WaitForTask(ctx context.Context, taskID string, opts *WaitOptions) (Task, error) {
	if taskID == "" {
		return Task{}, nil
	}

	o := opts.withDefaults()

	last := Task{ID: taskID}
	polls := o.polls()
	if polls == 0 {
		return timedOut(last), nil
	}

	lastPercent := -1
	err := retrygo.Do(
		func() error {
			task, err := c.ShowTask(ctx, taskID)
			if err != nil {
				return err
			}
			last = task

			if task.Percent != lastPercent {
				lastPercent = task.Percent
				c.logger.Debug("task progress",
					observability.Field{Key: "task_id", Value: taskID},
					observability.Field{Key: "status", Value: string(task.Status)},
					observability.Field{Key: "percent", Value: task.Percent},
				)
				if o.OnProgress != nil {
					o.OnProgress(task)
				}
			}

			if !task.Done() {
				return errTaskRunning
			}

			return nil
		},
		retrygo.Context(ctx),
		retrygo.Attempts(uint(polls)),
		retrygo.Delay(o.PollInterval),
		retrygo.DelayType(retrygo.FixedDelay),
		retrygo.RetryIf(func(err error) bool { return errors.Is(err, errTaskRunning) }),
		retrygo.LastErrorOnly(true),
	)

	switch {
	case err == nil:
		return last, nil
	case errors.Is(err, errTaskRunning):
		c.logger.Warn("timed out waiting for task",
			observability.Field{Key: "task_id", Value: taskID},
			observability.Field{Key: "percent", Value: last.Percent},
		)
		return timedOut(last), nil
	default:
		return Task{}, errors.Wrapf(err, "waiting for task %s", taskID)
	}
}

func timedOut(task Task) Task {
	task.Status = TaskStatusTimedOut
	task.Details = nil

	return task
}

func parseTask(value gjson.Result) Task {
	task := Task{
		ID:      value.Get("task-id").String(),
		Name:    value.Get("task-name").String(),
		Status:  TaskStatus(value.Get("status").String()),
		Percent: int(value.Get("progress-percentage").Int()),
	}

	value.Get("task-details").ForEach(func(_, detail gjson.Result) bool {
		task.Details = append(task.Details, TaskDetail{
			Title:         detail.Get("title").String(),
			Notifications: stringList(detail.Get("notifications")),
			Warnings:      stringList(detail.Get("warnings")),
			Errors:        stringList(detail.Get("errors")),
		})
		return true
	})

	return task
}

func stringList(value gjson.Result) []string {
	var out []string
	value.ForEach(func(_, item gjson.Result) bool {
		out = append(out, item.String())
		return true
	})

	return out
}
