package cpapi

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/tidwall/gjson"
)

// PolicyTypePackage is the type reported for regular policy packages.
const PolicyTypePackage = "package"

// listLimit is the page size used for listing calls.
const listLimit = 500

// PolicyPackage is a policy package and the gateways it installs on.
type PolicyPackage struct {
	UID                 string
	Name                string
	Type                string
	InstallationTargets []InstallationTarget
}

// InstallationTarget is a gateway a policy package is installed on.
type InstallationTarget struct {
	UID  string
	Name string
}

// TargetUIDs returns the UIDs of the package's installation targets.
func (p PolicyPackage) TargetUIDs() []string {
	uids := make([]string, 0, len(p.InstallationTargets))
	for _, target := range p.InstallationTargets {
		uids = append(uids, target.UID)
	}

	return uids
}

// ShowPackages lists policy packages with their installation targets.
// Only the first page of listLimit packages is read.
func (c *Client) ShowPackages(ctx context.Context) ([]PolicyPackage, error) {
	resp, err := c.Call(ctx, MethodShowPackages, Payload{"limit": listLimit, "offset": 0})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list policy packages")
	}

	var packages []PolicyPackage
	resp.Get("packages").ForEach(func(_, value gjson.Result) bool {
		packages = append(packages, parsePackage(value))
		return true
	})

	return packages, nil
}

// ShowPackage returns a single policy package by UID.
func (c *Client) ShowPackage(ctx context.Context, uid string) (PolicyPackage, error) {
	resp, err := c.Call(ctx, MethodShowPackage, Payload{"uid": uid})
	if err != nil {
		return PolicyPackage{}, errors.Wrapf(err, "failed to show policy package %s", uid)
	}

	return parsePackage(gjson.ParseBytes(resp.Raw())), nil
}

// VerifyPolicy starts verification of a policy package, given by UID or
// name, and returns the task id.
func (c *Client) VerifyPolicy(ctx context.Context, pkg string) (string, error) {
	resp, err := c.Call(ctx, MethodVerifyPolicy, Payload{"policy-package": pkg})
	if err != nil {
		return "", errors.Wrapf(err, "failed to verify policy %s", pkg)
	}

	return taskIDOf(resp, MethodVerifyPolicy)
}

// InstallPolicy starts installation of a policy package on the given target
// gateways (UIDs or names) and returns the task id.
func (c *Client) InstallPolicy(ctx context.Context, pkg string, targets []string) (string, error) {
	resp, err := c.Call(ctx, MethodInstallPolicy, Payload{"policy-package": pkg, "targets": targets})
	if err != nil {
		return "", errors.Wrapf(err, "failed to install policy %s", pkg)
	}

	return taskIDOf(resp, MethodInstallPolicy)
}

// parsePackage reads a package object. Installation targets arrive either as
// the string "all" or as a list of gateway objects; the "all" form yields nil.
func parsePackage(value gjson.Result) PolicyPackage {
	pkg := PolicyPackage{
		UID:  value.Get("uid").String(),
		Name: value.Get("name").String(),
		Type: value.Get("type").String(),
	}

	targets := value.Get("installation-targets")
	if targets.IsArray() {
		targets.ForEach(func(_, target gjson.Result) bool {
			pkg.InstallationTargets = append(pkg.InstallationTargets, InstallationTarget{
				UID:  target.Get("uid").String(),
				Name: target.Get("name").String(),
			})
			return true
		})
	}

	return pkg
}
