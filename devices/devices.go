// Package devices lists the calculator models an application can be installed
// on, and how many pages of flash each one has free for applications.
package devices

import (
	_ "embed"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	vidgen "github.com/Crazy-Fox-2/TI-Calc-Video-Generator"
	"github.com/gocarina/gocsv"
)

type Device struct {
	Name string `csv:"name"`
	Slug string `csv:"slug"`
	// FreePages is the number of 16 KiB flash pages available to applications on
	// a calculator with nothing else installed.
	FreePages int    `csv:"free_pages"`
	Notes     string `csv:"notes"`
}

// Fits returns true if an application of `pages` pages can be installed.
func (d Device) Fits(pages int) bool {
	return pages <= d.FreePages
}

//go:embed devices.csv
var devicesRawCSV string
var predefinedDevices []Device

// Load reads a pipe-separated device table.
func Load(input io.Reader) ([]Device, error) {
	csvReader := csv.NewReader(input)
	csvReader.Comma = '|'

	devices := []Device{}
	err := gocsv.UnmarshalCSV(csvReader, &devices)
	if err != nil {
		return nil, vidgen.ErrMalformedInput.Wrap(err)
	}

	seen := map[string]bool{}
	for i, device := range devices {
		if seen[device.Slug] {
			return nil, vidgen.ErrMalformedInput.WithMessage(
				fmt.Sprintf("duplicate definition for device %q found on row %d", device.Slug, i+1))
		}
		if device.FreePages < 0 {
			return nil, vidgen.ErrMalformedInput.WithMessage(
				fmt.Sprintf("device %q has a negative number of pages", device.Slug))
		}
		seen[device.Slug] = true
	}
	return devices, nil
}

// LoadFile reads a device table from a file, in the same format as the built-in
// one.
func LoadFile(path string) ([]Device, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, vidgen.ErrIOFailed.Wrap(err)
	}
	defer file.Close()
	return Load(file)
}

// Predefined returns the built-in device table.
func Predefined() []Device {
	return append([]Device{}, predefinedDevices...)
}

func Get(slug string) (Device, error) {
	for _, device := range predefinedDevices {
		if device.Slug == slug {
			return device, nil
		}
	}
	return Device{}, vidgen.ErrInvalidArgument.WithMessage(
		fmt.Sprintf("no predefined device exists with slug %q", slug))
}

// Compatible returns the devices from `devices` that can hold `pages` pages.
func Compatible(devices []Device, pages int) []Device {
	compatible := []Device{}
	for _, device := range devices {
		if device.Fits(pages) {
			compatible = append(compatible, device)
		}
	}
	return compatible
}

func init() {
	devices, err := Load(strings.NewReader(devicesRawCSV))
	if err != nil {
		panic(fmt.Errorf("failed to load the built-in device table: %w", err))
	}
	predefinedDevices = devices
}
