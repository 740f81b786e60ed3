package surface

// Knob handlers run only while their bank is active; see New.

func (s *Surface) mixerKnob(in knobInput) error {
	if in.delta == 0 {
		return nil
	}
	strip := Strip(in.knob)
	if in.knob == NumKnobs-1 {
		strip = Master
	}
	ev, ok := s.mixer.Nudge(strip, in.delta)
	if !ok {
		appLog.Debug("Ignoring knob for missing chain", "strip", strip)
		return nil
	}
	s.emit(ev)
	return nil
}

func (s *Surface) navigationKnob(in knobInput) error {
	if in.delta == 0 {
		return nil
	}
	switch in.knob {
	case 0, 1, 2, 3:
		s.emit(ZynpotTick{Pot: in.knob, Delta: in.delta})
	case 4:
		s.repeat(in.delta, ArrowPressed{Left}, ArrowPressed{Right})
	case 5:
		s.repeat(in.delta, ArrowPressed{Up}, ArrowPressed{Down})
	case 6:
		s.repeat(in.delta, PresetNav{PresetPrevious}, PresetNav{PresetNext})
	case 7:
		now := s.now()
		if !s.lastSelectBack.IsZero() && now.Sub(s.lastSelectBack) < s.cfg.SelectDebounce {
			return nil
		}
		s.lastSelectBack = now
		if in.delta > 0 {
			s.emit(Select)
		} else {
			s.emit(Back)
		}
	}
	return nil
}

// repeat emits neg for counter-clockwise turns and pos for clockwise ones, once per message or once
// per step with proportional navigation.
func (s *Surface) repeat(delta int, neg, pos Event) {
	ev, n := pos, delta
	if delta < 0 {
		ev, n = neg, -delta
	}
	if !s.cfg.ProportionalNavigation {
		n = 1
	}
	for i := 0; i < n; i++ {
		s.emit(ev)
	}
}

func (s *Surface) passthroughKnob(in knobInput) error {
	s.emit(RawCC{Channel: in.channel, Controller: PassthroughCCBase + uint8(in.knob), Value: in.raw})
	return nil
}

// pressPad toggles the strip under p. LEDs are re-rendered only if the mixer changed.
func (s *Surface) pressPad(p Pad) {
	changed := false
	switch {
	case p.Row == RowTop && p.Column == masterColumn:
		for _, ev := range s.mixer.ClearSolo() {
			s.emit(ev)
			changed = true
		}
	case p.Row == RowTop:
		if ev, ok := s.mixer.ToggleSolo(Strip(p.Column)); ok {
			s.emit(ev)
			changed = true
		}
	case p.Column == masterColumn:
		if ev, ok := s.mixer.ToggleMute(Master); ok {
			s.emit(ev)
			changed = true
		}
	default:
		if ev, ok := s.mixer.ToggleMute(Strip(p.Column)); ok {
			s.emit(ev)
			changed = true
		}
	}
	if !changed {
		appLog.Debug("Ignoring pad for missing chain or empty solo set", "pad", p)
		return
	}
	s.render()
}
