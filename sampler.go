// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package daclut

import "fmt"

// SlotState is the smoothing state of one raw curve point.
type SlotState int

const (
	// SlotUninitialized indicates the slot holds no measurement.
	SlotUninitialized SlotState = iota

	// SlotSeeded indicates the slot holds a single measurement.
	SlotSeeded

	// SlotSmoothing indicates the slot holds a blend of measurements.
	SlotSmoothing
)

func (s SlotState) String() string {
	switch s {
	case SlotUninitialized:
		return "uninitialized"
	case SlotSeeded:
		return "seeded"
	case SlotSmoothing:
		return "smoothing"
	default:
		return fmt.Sprintf("SlotState(%d)", int(s))
	}
}

// Smooth folds a new mean measurement into a slot.
//
// An uninitialized slot is seeded directly with the mean. Otherwise the mean
// is blended into the old value as alpha*old + (1-alpha)*mean.
func Smooth(state SlotState, old, mean, alpha float64) (SlotState, float64) {
	if state == SlotUninitialized {
		return SlotSeeded, mean
	}
	return SlotSmoothing, alpha*old + (1-alpha)*mean
}

// Measure drives the DAC through its full code range cycles times, smoothing
// the averaged ADC response for each code into the raw curve.
//
// The raw curve is reset at the start of each call. A collaborator fault
// aborts the measurement and is returned as a MeasureError.
func (s *Session) Measure(cycles int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.measure(cycles)
}

func (s *Session) measure(cycles int) error {
	if cycles < 1 {
		return ErrInvalidCycles
	}
	for i := range s.slots {
		s.slots[i] = SlotUninitialized
	}
	s.built = false
	for c := 0; c < cycles; c++ {
		for code := range s.raw {
			mean, err := s.sample(code)
			if err != nil {
				return MeasureError{Cycle: c, Code: code, Err: err}
			}
			s.slots[code], s.raw[code] = Smooth(s.slots[code], s.raw[code], mean, s.alpha)
		}
		s.logger.Debug("cycle complete", "module", "sampler", "cycle", c+1, "cycles", cycles)
	}
	s.logger.Info("measurement complete", "module", "sampler", "cycles", cycles)
	return nil
}

// sample sets the DAC code and returns the mean of the averaged ADC samples.
func (s *Session) sample(code int) (float64, error) {
	if err := s.dac.SetCode(code); err != nil {
		return 0, err
	}
	s.delayer.Delay(s.settle)
	sum := 0.0
	for k := 0; k < s.averaging; k++ {
		v, err := s.adc.Sample()
		if err != nil {
			return 0, err
		}
		sum += float64(v)
		s.delayer.Delay(s.spacing)
	}
	return sum / float64(s.averaging), nil
}
