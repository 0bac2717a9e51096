package cpapi

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/lexfrei/go-cpapi/observability"
)

// PendingChanges returns the number of unpublished changes in the session.
func (c *Client) PendingChanges(ctx context.Context) (int, error) {
	resp, err := c.Call(ctx, MethodShowSession, nil)
	if err != nil {
		return 0, errors.Wrap(err, "failed to read session")
	}

	return int(resp.Get("changes").Int()), nil
}

// Publish commits the session's pending changes and waits for the publish
// task to finish. Progress is reported through opts.OnProgress as it happens.
//
// With no pending changes Publish returns ErrNothingToPublish without calling
// publish.
func (c *Client) Publish(ctx context.Context, opts *WaitOptions) (Task, error) {
	changes, err := c.PendingChanges(ctx)
	if err != nil {
		return Task{}, err
	}
	if changes == 0 {
		return Task{}, errors.WithStack(ErrNothingToPublish)
	}

	resp, err := c.Call(ctx, MethodPublish, nil)
	if err != nil {
		return Task{}, errors.Wrap(err, "publish failed")
	}

	taskID, err := taskIDOf(resp, MethodPublish)
	if err != nil {
		return Task{}, err
	}

	c.logger.Info("publish started",
		observability.Field{Key: "task_id", Value: taskID},
		observability.Field{Key: "changes", Value: changes},
	)

	return c.WaitForTask(ctx, taskID, opts)
}

// Discard drops the session's unpublished changes.
func (c *Client) Discard(ctx context.Context) error {
	if _, err := c.Call(ctx, MethodDiscard, nil); err != nil {
		return errors.Wrap(err, "discard failed")
	}

	return nil
}

func taskIDOf(resp *Response, method string) (string, error) {
	taskID := resp.Get("task-id").String()
	if taskID == "" {
		return "", errors.Wrapf(ErrMissingTaskID, "%s", method)
	}

	return taskID, nil
}
