// Copyright (c) 2026 BGE Corp. All rights reserved.
// Author: platform-team@bgecorp.com

/*
Package navigation computes the menu surface a signed-in member sees.

The menu is derived, never stored: each request filters the full item
catalog through the member's effective capability set, so a permission
change lands on the very next fetch.
*/
package navigation

import (
	"github.com/bgecorp/portal/internal/iam/capability"
)

// Item is one entry of the portal navigation menu.
type Item struct {
	Key   capability.Key `json:"key"`
	Label string         `json:"label"`
	Path  string         `json:"path"`
	Icon  string         `json:"icon"`
}

// catalog is the full menu in display order. The order doubles as the
// priority order used when redirecting an already signed-in member away
// from a public page.
var catalog = []Item{
	{Key: capability.KeyDashboard, Label: "Dashboard", Path: "/dashboard", Icon: "home"},
	{Key: capability.KeyHR, Label: "HR", Path: "/hr", Icon: "users"},
	{Key: capability.KeyInventory, Label: "Inventory", Path: "/inventory", Icon: "box"},
	{Key: capability.KeyProjects, Label: "Projects", Path: "/projects", Icon: "briefcase"},
	{Key: capability.KeyFinance, Label: "Finance", Path: "/finance", Icon: "credit-card"},
	{Key: capability.KeyDirectory, Label: "Directory", Path: "/directory", Icon: "book"},
	{Key: capability.KeyAdmin, Label: "Admin", Path: "/admin", Icon: "shield"},
	{Key: capability.KeySettings, Label: "Settings", Path: "/settings", Icon: "settings"},
	{Key: capability.KeyHelp, Label: "Help", Path: "/help", Icon: "help-circle"},
}

// Catalog returns a copy of the full menu in display order.
func Catalog() []Item {
	out := make([]Item, len(catalog))
	copy(out, catalog)
	return out
}

// Filter returns the menu entries the access snapshot grants, preserving
// display order. A superadmin sees everything.
func Filter(access capability.Access) []Item {
	if access.State != capability.StateActive {
		return []Item{}
	}

	visible := make([]Item, 0, len(catalog))
	for _, item := range catalog {
		if access.Superadmin || access.Effective.Has(item.Key) {
			visible = append(visible, item)
		}
	}
	return visible
}

// Landing returns the path of the first granted menu entry, used to send an
// already signed-in member away from public pages. Falls back to the waiting
// page when nothing is granted.
func Landing(access capability.Access) string {
	verdict := capability.DecidePublic(access)
	if verdict.Redirect != "" {
		return verdict.Redirect
	}
	return capability.RouteWaiting
}
