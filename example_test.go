package cpapi_test

import (
	"time"

	"github.com/lexfrei/go-cpapi"
)

func ExampleNew() {
	client, _ := cpapi.New("mgmt.example.net", "api-user", "password")

	_ = client // use client for API calls
	// Output:
}

func ExampleNewWithConfig() {
	// Check Point appliance with a trusted certificate and a read-only session
	client, _ := cpapi.NewWithConfig(&cpapi.ClientConfig{
		Server:         "mgmt.example.net",
		User:           "api-user",
		Password:       "password",
		ReadOnly:       true,
		SessionTimeout: 5 * time.Minute,
		SessionHeader:  cpapi.CheckPointSessionHeader,
	})

	_ = client // use client with custom config
	// Output:
}

func ExampleClient_Call() {
	client, _ := cpapi.New("mgmt.example.net", "api-user", "password")

	payload := cpapi.Payload{"limit": 50, "details-level": "standard"}

	_ = client
	_ = payload
	// resp, err := client.Call(context.Background(), "show-hosts", payload)
	// for _, host := range resp.Get("objects").Array() { ... }
	// Output:
}

func ExampleClient_Publish() {
	client, _ := cpapi.New("mgmt.example.net", "api-user", "password")

	opts := &cpapi.WaitOptions{
		PollInterval: 2 * time.Second,
		MaxWait:      10 * time.Minute,
	}

	_ = client
	_ = opts
	// task, err := client.Publish(context.Background(), opts)
	// Output:
}
