package domain

import (
	"encoding/json"
	"fmt"
)

// Size is a width/height pair in pixels.
// It serializes as a two-element array, e.g. [400, 400].
type Size struct {
	Width  int
	Height int
}

// IsZero reports whether both dimensions are unset.
func (s Size) IsZero() bool { return s.Width == 0 && s.Height == 0 }

func (s Size) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{s.Width, s.Height})
}

func (s *Size) UnmarshalJSON(data []byte) error {
	var pair []int
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("size must have 2 elements, got %d", len(pair))
	}
	s.Width, s.Height = pair[0], pair[1]
	return nil
}

func (s Size) String() string { return fmt.Sprintf("%dx%d", s.Width, s.Height) }

// Rect is an axis-aligned rectangle in canvas pixel coordinates.
type Rect struct {
	X, Y float64
	W, H float64
}
