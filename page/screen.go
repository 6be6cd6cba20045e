// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package page

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidScreen = errors.New("screen must be formatted as WIDTHxHEIGHTxDEPTH")

// Screen is the display reported by a client.
type Screen struct {
	Width      int
	Height     int
	ColorDepth int
}

func (s Screen) String() string {
	return fmt.Sprintf("%dx%dx%d", s.Width, s.Height, s.ColorDepth)
}

// ParseScreen parses the WIDTHxHEIGHTxDEPTH form produced by String.
func ParseScreen(v string) (Screen, error) {
	parts := strings.Split(strings.TrimSpace(v), "x")
	if len(parts) != 3 {
		return Screen{}, fmt.Errorf("%w: %q", ErrInvalidScreen, v)
	}
	var dims [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Screen{}, fmt.Errorf("%w: %q", ErrInvalidScreen, v)
		}
		dims[i] = n
	}
	return Screen{Width: dims[0], Height: dims[1], ColorDepth: dims[2]}, nil
}
