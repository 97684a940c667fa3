// Package extract pulls resource metadata out of community installer scripts.
package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pve-planner/pvescrape/pkg/image"
)

// DefaultVMDisk is used when a VM script does not declare DISK_SIZE.
const DefaultVMDisk = 512

// Fields are the raw values read from a single script.
type Fields struct {
	IDSource string
	Name     string
	CPU      int
	RAM      int
	Disk     int // megabytes
}

// ExtractionError is returned when a required marker is missing or unparsable.
type ExtractionError struct {
	Type  image.Type
	Field string
	Value string // empty when the marker was not found
}

func (e *ExtractionError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s script: no match for %s", e.Type, e.Field)
	}
	return fmt.Sprintf("%s script: invalid %s value %q", e.Type, e.Field, e.Value)
}

var (
	vmIDPattern   = regexp.MustCompile(`var_os="([^"]+)`)
	vmNamePattern = regexp.MustCompile(`--title "([^"]+)`)
	vmCPUPattern  = regexp.MustCompile(`CORE_COUNT="([^"]+)`)
	vmRAMPattern  = regexp.MustCompile(`RAM_SIZE="([^"]+)`)
	vmDiskPattern = regexp.MustCompile(`DISK_SIZE="([^"]+)`)

	lxcNamePattern = regexp.MustCompile(`APP="([^"]+)`)
	lxcCPUPattern  = regexp.MustCompile(`var_cpu="\$\{var_cpu:-(\d+)`)
	lxcRAMPattern  = regexp.MustCompile(`var_ram="\$\{var_ram:-(\d+)`)
	lxcDiskPattern = regexp.MustCompile(`var_disk="\$\{var_disk:-(\d+)`)
)

// Extract reads the fields for a script of the given type.
func Extract(typ image.Type, text string) (Fields, error) {
	switch typ {
	case image.VM:
		return extractVM(text)
	case image.LXC:
		return extractLXC(text)
	}
	return Fields{}, fmt.Errorf("unsupported image type: %q", typ)
}

func extractVM(text string) (Fields, error) {
	var f Fields
	var err error

	if f.IDSource, err = find(image.VM, "var_os", vmIDPattern, text); err != nil {
		return Fields{}, err
	}
	title, err := find(image.VM, "title", vmNamePattern, text)
	if err != nil {
		return Fields{}, err
	}
	f.Name = TrimVMSuffix(title)
	if f.CPU, err = findInt(image.VM, "CORE_COUNT", vmCPUPattern, text); err != nil {
		return Fields{}, err
	}
	if f.RAM, err = findInt(image.VM, "RAM_SIZE", vmRAMPattern, text); err != nil {
		return Fields{}, err
	}

	f.Disk = DefaultVMDisk
	if m := vmDiskPattern.FindStringSubmatch(text); m != nil {
		if f.Disk, err = ParseVMDisk(m[1]); err != nil {
			return Fields{}, &ExtractionError{Type: image.VM, Field: "DISK_SIZE", Value: m[1]}
		}
	}
	return f, nil
}

func extractLXC(text string) (Fields, error) {
	var f Fields
	var err error

	if f.Name, err = find(image.LXC, "APP", lxcNamePattern, text); err != nil {
		return Fields{}, err
	}
	f.IDSource = f.Name
	if f.CPU, err = findInt(image.LXC, "var_cpu", lxcCPUPattern, text); err != nil {
		return Fields{}, err
	}
	if f.RAM, err = findInt(image.LXC, "var_ram", lxcRAMPattern, text); err != nil {
		return Fields{}, err
	}
	disk, err := findInt(image.LXC, "var_disk", lxcDiskPattern, text)
	if err != nil {
		return Fields{}, err
	}
	f.Disk = disk * 1024
	return f, nil
}

// TrimVMSuffix cuts a VM title at the first " VM", e.g. "Home Assistant VM" -> "Home Assistant".
func TrimVMSuffix(title string) string {
	name, _, _ := strings.Cut(title, " VM")
	return name
}

// ParseVMDisk converts a DISK_SIZE value to megabytes. A "G" marks gigabytes.
func ParseVMDisk(value string) (int, error) {
	if gb, _, ok := strings.Cut(value, "G"); ok {
		n, err := strconv.Atoi(gb)
		if err != nil {
			return 0, err
		}
		return n * 1024, nil
	}
	return strconv.Atoi(value)
}

func find(typ image.Type, field string, re *regexp.Regexp, text string) (string, error) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return "", &ExtractionError{Type: typ, Field: field}
	}
	return m[1], nil
}

func findInt(typ image.Type, field string, re *regexp.Regexp, text string) (int, error) {
	s, err := find(typ, field, re, text)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, &ExtractionError{Type: typ, Field: field, Value: s}
	}
	return n, nil
}
