package woocommerce

import (
	"context"
	"fmt"

	"golang.org/x/mod/semver"
)

// VersionInfo describes the store software found by the startup probe.
type VersionInfo struct {
	WooCommerce string
	WordPress   string
	Currency    string
	Supported   bool
}

// CheckVersion reads GET /system_status and compares the WooCommerce version
// against minVersion. An empty minVersion accepts any version. The probe
// needs a read key with system status access; callers treat its failure as
// a warning.
func (c *Client) CheckVersion(ctx context.Context, minVersion string) (*VersionInfo, error) {
	var status WooSystemStatus
	if err := c.get(ctx, "system_status", "/system_status", nil, &status); err != nil {
		return nil, err
	}

	info := &VersionInfo{
		WooCommerce: status.Environment.Version,
		WordPress:   status.Environment.WPVersion,
		Currency:    status.Settings.Currency,
	}
	supported, err := versionAtLeast(info.WooCommerce, minVersion)
	if err != nil {
		return info, err
	}
	info.Supported = supported
	return info, nil
}

// versionAtLeast reports whether version >= minimum under semver ordering.
func versionAtLeast(version, minimum string) (bool, error) {
	if minimum == "" {
		return true, nil
	}
	v, m := normalizeVersion(version), normalizeVersion(minimum)
	if !semver.IsValid(m) {
		return false, fmt.Errorf("invalid minimum version %q", minimum)
	}
	if !semver.IsValid(v) {
		return false, fmt.Errorf("store reported unparseable version %q", version)
	}
	return semver.Compare(v, m) >= 0, nil
}

// normalizeVersion adds "v" prefix if needed for semver parsing.
func normalizeVersion(v string) string {
	if v == "" {
		return "v0.0.0"
	}
	if v[0] != 'v' {
		return "v" + v
	}
	return v
}
