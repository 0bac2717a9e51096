package cpapi

import "context"

// ManagementAPIClient defines the interface for management API operations.
// This interface enables consumers to create mock implementations for testing.
//
// Example usage with testify/mock:
//
//	type MockClient struct {
//	    mock.Mock
//	}
//
//	func (m *MockClient) PendingChanges(ctx context.Context) (int, error) {
//	    args := m.Called(ctx)
//	    return args.Int(0), args.Error(1)
//	}
//
//nolint:interfacebloat // This interface mirrors the full client
type ManagementAPIClient interface {
	// Session operations

	// Login opens a new session with the given description.
	Login(ctx context.Context, description string) error

	// Logout ends the current session.
	Logout(ctx context.Context) error

	// Shutdown discards pending changes, logs out and releases the transport.
	Shutdown(ctx context.Context)

	// Raw calls

	// Call invokes an API method, logging in or renewing the session as needed.
	Call(ctx context.Context, method string, payload Payload) (*Response, error)

	// Tasks

	// ShowTask returns the current state of a task.
	ShowTask(ctx context.Context, taskID string) (Task, error)

	// WaitForTask polls a task until it finishes or the poll budget is spent.
	WaitForTask(ctx context.Context, taskID string, opts *WaitOptions) (Task, error)

	// Changes

	// PendingChanges returns the number of unpublished changes.
	PendingChanges(ctx context.Context) (int, error)

	// Publish commits pending changes and waits for the publish task.
	Publish(ctx context.Context, opts *WaitOptions) (Task, error)

	// Discard drops pending changes.
	Discard(ctx context.Context) error

	// Policy

	// ShowPackages lists policy packages.
	ShowPackages(ctx context.Context) ([]PolicyPackage, error)

	// ShowPackage returns a policy package by UID.
	ShowPackage(ctx context.Context, uid string) (PolicyPackage, error)

	// VerifyPolicy starts a policy verification task.
	VerifyPolicy(ctx context.Context, pkg string) (string, error)

	// InstallPolicy starts a policy installation task.
	InstallPolicy(ctx context.Context, pkg string, targets []string) (string, error)

	// Objects

	// UnusedObjects lists objects nothing refers to.
	UnusedObjects(ctx context.Context) ([]Object, error)

	// DeleteObject deletes an object by type and UID.
	DeleteObject(ctx context.Context, obj Object) (string, error)
}

// Ensure Client implements ManagementAPIClient.
var _ ManagementAPIClient = (*Client)(nil)
