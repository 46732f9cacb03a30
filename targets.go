package main

import (
	"sort"
	"strings"
)

type TargetDef struct {
	Name     string
	Category string
}

// defaultTargets are directory names that hold downloaded packages or
// regenerable build output.
var defaultTargets = []TargetDef{
	{Name: "node_modules", Category: "node"},
	{Name: "bower_components", Category: "node"},
	{Name: ".pnpm-store", Category: "node"},
	{Name: ".yarn-cache", Category: "node"},
	{Name: ".next", Category: "node"},
	{Name: ".nuxt", Category: "node"},
	{Name: ".turbo", Category: "node"},
	{Name: ".parcel-cache", Category: "node"},
	{Name: ".svelte-kit", Category: "node"},
	{Name: ".angular", Category: "node"},

	{Name: "target", Category: "rust"},

	{Name: ".venv", Category: "python"},
	{Name: "__pycache__", Category: "python"},
	{Name: ".pytest_cache", Category: "python"},
	{Name: ".mypy_cache", Category: "python"},
	{Name: ".ruff_cache", Category: "python"},
	{Name: ".tox", Category: "python"},

	{Name: ".gradle", Category: "java"},

	{Name: ".dart_tool", Category: "dart"},

	{Name: ".bundle", Category: "ruby"},

	{Name: "Pods", Category: "ios"},
	{Name: "DerivedData", Category: "ios"},
}

// buildTargets starts from the defaults, adds includes as "custom" and then
// removes excludes, so an exclude always wins.
func buildTargets(includes, excludes []string) map[string]TargetDef {
	targets := map[string]TargetDef{}
	for _, def := range defaultTargets {
		targets[def.Name] = def
	}

	for _, name := range includes {
		if name == "" {
			continue
		}
		if _, known := targets[name]; known {
			continue
		}
		targets[name] = TargetDef{Name: name, Category: "custom"}
	}

	for _, name := range excludes {
		delete(targets, name)
	}

	return targets
}

// parseTargetList splits comma separated names, trimming blanks. Entries that
// already are separate list items are split too.
func parseTargetList(raw ...string) []string {
	var items []string
	for _, chunk := range raw {
		for _, part := range strings.Split(chunk, ",") {
			item := strings.TrimSpace(part)
			if item != "" {
				items = append(items, item)
			}
		}
	}
	return items
}

func sortedTargetNames(targets map[string]TargetDef) []string {
	names := make([]string, 0, len(targets))
	for name := range targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
