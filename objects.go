package cpapi

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/tidwall/gjson"
)

// Object is a management object as listed by show-* commands.
type Object struct {
	UID  string
	Name string
	Type string
}

var deletableTypes = map[string]struct{}{
	"host":          {},
	"network":       {},
	"service-group": {},
	"service-udp":   {},
	"service-tcp":   {},
	"address-range": {},
	"group":         {},
	"time":          {},
}

// Deletable reports whether DeleteObject supports the object's type.
func (o Object) Deletable() bool {
	_, ok := deletableTypes[o.Type]
	return ok
}

// UnusedObjects lists objects that no rule or group refers to.
// Only the first page of listLimit objects is read.
func (c *Client) UnusedObjects(ctx context.Context) ([]Object, error) {
	resp, err := c.Call(ctx, MethodShowUnusedObjects, Payload{
		"limit":         listLimit,
		"offset":        0,
		"details-level": "standard",
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list unused objects")
	}

	var objects []Object
	resp.Get("objects").ForEach(func(_, value gjson.Result) bool {
		objects = append(objects, Object{
			UID:  value.Get("uid").String(),
			Name: value.Get("name").String(),
			Type: value.Get("type").String(),
		})
		return true
	})

	return objects, nil
}

// DeleteObject deletes obj with the delete command for its type and returns
// the server's message. The change stays pending until published.
func (c *Client) DeleteObject(ctx context.Context, obj Object) (string, error) {
	if !obj.Deletable() {
		return "", errors.Wrapf(ErrUnsupportedObjectType, "object %s has type %q", obj.Name, obj.Type)
	}

	resp, err := c.Call(ctx, "delete-"+obj.Type, Payload{"uid": obj.UID})
	if err != nil {
		return "", errors.Wrapf(err, "failed to delete %s %s", obj.Type, obj.Name)
	}

	return resp.Message(), nil
}
