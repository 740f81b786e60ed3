package surface

// Controller numbers and notes sent by the Launchkey Mini MK4 in DAW mode.
const (
	CCKnobFirst uint8 = 85
	CCKnobLast  uint8 = 92

	NotePadTopFirst    uint8 = 96
	NotePadTopLast     uint8 = 103
	NotePadBottomFirst uint8 = 112
	NotePadBottomLast  uint8 = 119

	CCBankDown uint8 = 51
	CCBankUp   uint8 = 52
	CCShift    uint8 = 0x3F

	CCSelect      uint8 = 104 // ">"
	CCMenu        uint8 = 105 // Func
	CCBack        uint8 = 106 // pad up
	CCPreset      uint8 = 107 // pad down
	CCArrowRight  uint8 = 0x66
	CCArrowLeft   uint8 = 0x67
	CCPlay        uint8 = 0x73
	CCRecord      uint8 = 0x75
	CCSwitchFirst uint8 = 74
	CCSwitchLast  uint8 = 77
	CCMetronome   uint8 = 76

	// PassthroughCCBase is the first CC number knobs send in the passthrough bank.
	PassthroughCCBase uint8 = 24

	NumKnobs = 8
	NumPads  = 8
)

// Host switch index for each gesture-classified button.
var switchIndex = map[uint8]int{
	74: 0,
	75: 1,
	76: 3,
	77: 2,
}

// Buttons that fire a fixed navigation action on press.
var navButtons = map[uint8]Event{
	CCSelect:     Select,
	CCMenu:       Menu,
	CCBack:       Back,
	CCPreset:     Preset,
	CCArrowRight: ArrowPressed{Right},
	CCArrowLeft:  ArrowPressed{Left},
}

// navButtonOrder fixes the order of LED refreshes.
var navButtonOrder = []uint8{CCSelect, CCMenu, CCArrowRight, CCArrowLeft, CCBack, CCPreset}

func isKnob(cc uint8) bool {
	return cc >= CCKnobFirst && cc <= CCKnobLast
}
