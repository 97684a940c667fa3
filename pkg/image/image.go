// Package image defines the scraped image entries and the limits
// the planner accepts for their resources.
package image

import (
	"fmt"
	"regexp"
	"strings"
)

// Type is the category an Entry was sourced from.
type Type string

const (
	// VM entries come from the vm/ directory of the upstream repository.
	VM Type = "VM"
	// LXC entries come from the ct/ directory of the upstream repository.
	LXC Type = "LXC"
)

// Dir returns the upstream directory holding scripts of this type.
func (t Type) Dir() string {
	switch t {
	case VM:
		return "vm"
	case LXC:
		return "ct"
	}
	return ""
}

// ParseType maps a directory name ("vm", "ct") or type label ("VM", "LXC") to a Type.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(s) {
	case "vm":
		return VM, nil
	case "ct", "lxc":
		return LXC, nil
	}
	return "", fmt.Errorf("unknown image type: %q (valid: vm, ct)", s)
}

// Entry describes the resource profile of a single installer script.
// Field order matches the serialized JSON order.
type Entry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type Type   `json:"type"`
	CPU  int    `json:"cpu"`
	RAM  int    `json:"ram"`  // megabytes
	Disk int    `json:"disk"` // megabytes
}

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// NormalizeID turns a free-text name into a canonical identifier.
func NormalizeID(raw string) string {
	return strings.ToLower(strings.Trim(nonAlphanumeric.ReplaceAllString(raw, ""), "_"))
}

var validID = regexp.MustCompile(`^[a-z0-9]+(?:_+[a-z0-9]+)*$`)

// ValidID reports whether id is a well-formed identifier.
func ValidID(id string) bool {
	return validID.MatchString(id)
}

// Allocation limits the planner UI is built around.
const (
	MaxCPU        = 4
	RAMIncrement  = 256
	DiskIncrement = 512
)

// CheckAllocation returns one message per problem found with the entry.
func (e Entry) CheckAllocation() []string {
	var problems []string
	if !ValidID(e.ID) {
		problems = append(problems, fmt.Sprintf("invalid id %q", e.ID))
	}
	if e.CPU > MaxCPU {
		problems = append(problems, fmt.Sprintf("cpu %d exceeds %d", e.CPU, MaxCPU))
	}
	if e.RAM%RAMIncrement != 0 {
		problems = append(problems, fmt.Sprintf("ram %d is not a multiple of %d", e.RAM, RAMIncrement))
	}
	if e.Disk%DiskIncrement != 0 {
		problems = append(problems, fmt.Sprintf("disk %d is not a multiple of %d", e.Disk, DiskIncrement))
	}
	return problems
}
