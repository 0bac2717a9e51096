// Package cpapi provides a Go client for session-based firewall management
// APIs in the style of the Check Point Management API.
//
// Every call is an HTTPS POST of a JSON object to
//
//	https://<server>/web_api/<method>
//
// and the reply is a JSON object. The client keeps one authenticated session,
// logs in on first use, and recovers from an expired or unknown session by
// logging in again and re-sending the request once.
//
// # Basic Usage
//
//	client, err := cpapi.New("mgmt.example.net", "api-user", password)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close() // discards unpublished changes and logs out
//
//	resp, err := client.Call(ctx, "show-hosts", cpapi.Payload{"limit": 50})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, host := range resp.Get("objects").Array() {
//	    fmt.Println(host.Get("name").String())
//	}
//
// Replies are kept as raw JSON; Response.Get takes a gjson path.
//
// # Sessions
//
// Call logs in on its own when no session is held. Use Login to set the
// session description shown in the server's session list:
//
//	if err := client.Login(ctx, "nightly cleanup"); err != nil {
//	    log.Fatal(err)
//	}
//
// Check Point appliances read the token from X-chkp-sid:
//
//	client, err := cpapi.NewWithConfig(&cpapi.ClientConfig{
//	    Server:        "mgmt.example.net",
//	    User:          "api-user",
//	    Password:      password,
//	    SessionHeader: cpapi.CheckPointSessionHeader,
//	})
//
// # Tasks and Publishing
//
// Long-running operations return a task id. WaitForTask polls it every
// PollInterval, at most MaxWait/PollInterval times:
//
//	task, err := client.Publish(ctx, &cpapi.WaitOptions{
//	    OnProgress: func(t cpapi.Task) { fmt.Printf("%d%% ", t.Percent) },
//	})
//	switch {
//	case errors.Is(err, cpapi.ErrNothingToPublish):
//	    fmt.Println("No changes to publish")
//	case err != nil:
//	    log.Fatal(err)
//	case task.Status == cpapi.TaskStatusTimedOut:
//	    fmt.Println("timed out waiting for task")
//	}
//
// # Error Handling
//
// Errors are built with github.com/cockroachdb/errors. Server-side failures
// are *APIError with the server's code and message; failures below HTTP are
// *TransportError:
//
//	var apiErr *cpapi.APIError
//	if errors.As(err, &apiErr) {
//	    log.Printf("server said %s: %s", apiErr.Code, apiErr.Message)
//	}
//
// # Rate Limiting
//
// Requests are throttled locally to 600 per minute by default
// (ClientConfig.RateLimitPerMinute; negative disables).
//
// # Related Packages
//
//   - github.com/lexfrei/go-cpapi/observability - Logging and metrics hooks
//   - github.com/lexfrei/go-cpapi/cmd/cpctl - Command line client
package cpapi
