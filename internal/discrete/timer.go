package discrete

// TimerStateFromProps decodes a timer's props.timerState bag as it
// arrives over the wire: {running, startAt, outputClosed, remainingMs},
// all optional. Clients round-trip the solved timerStates back into the
// next request's props to carry state across solves.
func TimerStateFromProps(m map[string]any) TimerState {
	ts := TimerState{}
	if m == nil {
		return ts
	}
	if b, ok := m["running"].(bool); ok {
		ts.Running = b
	}
	if b, ok := m["outputClosed"].(bool); ok {
		ts.OutputClosed = b
	}
	if f, ok := m["startAt"].(float64); ok {
		ts.StartAtMs = int64(f)
		ts.HasStartAt = true
	}
	if f, ok := m["remainingMs"].(float64); ok {
		ts.RemainingMs = int64(f)
	}
	return ts
}

// StepTimer advances a `timer` component's state machine one tick.
// `energized` is the coil-energized test (same rule as
// ContactorEnergized, reused with the timer's own pull-in voltage).
// prev is the props-seeded state, not the previous fixed-point
// iteration's output, so stepping is idempotent within one request: a
// loop-mode timer toggles once per solve rather than once per iteration.
func StepTimer(prev TimerState, energized bool, delayMs int64, loop bool, initialClosed bool, nowMs int64) TimerState {
	if !energized {
		return TimerState{
			Running:      false,
			OutputClosed: initialClosed,
			RemainingMs:  delayMs,
		}
	}

	if !prev.Running || !prev.HasStartAt {
		prev.Running = true
		prev.StartAtMs = nowMs
		prev.HasStartAt = true
	}

	elapsed := nowMs - prev.StartAtMs
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed >= delayMs {
		if loop {
			return TimerState{
				Running:      true,
				StartAtMs:    nowMs,
				HasStartAt:   true,
				OutputClosed: !prev.OutputClosed,
				RemainingMs:  delayMs,
			}
		}
		return TimerState{
			Running:      false,
			OutputClosed: true,
			RemainingMs:  0,
		}
	}

	return TimerState{
		Running:      true,
		StartAtMs:    prev.StartAtMs,
		HasStartAt:   true,
		OutputClosed: prev.OutputClosed,
		RemainingMs:  delayMs - elapsed,
	}
}
