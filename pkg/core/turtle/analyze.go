package turtle

// Report counts the commands in a symbol string and flags bracket problems
// that Interpret silently tolerates.
type Report struct {
	Symbols        int `json:"symbols"`
	Draws          int `json:"draws"`
	Rotations      int `json:"rotations"`
	Pushes         int `json:"pushes"`
	Pops           int `json:"pops"`
	UnmatchedPops  int `json:"unmatched_pops"`  // ']' with nothing saved
	UnclosedPushes int `json:"unclosed_pushes"` // '[' never popped
	Ignored        int `json:"ignored"`         // symbols without turtle meaning
	MaxNesting     int `json:"max_nesting"`
}

// Balanced reports whether every push has a matching pop and vice versa.
func (r Report) Balanced() bool { return r.UnmatchedPops == 0 && r.UnclosedPushes == 0 }

// Analyze scans symbols without building a tree.
func Analyze(symbols string) Report {
	var r Report
	open := 0
	for _, c := range symbols {
		r.Symbols++
		switch c {
		case SymForward:
			r.Draws++
		case SymTurnLeft, SymTurnRight, SymPitchDown, SymPitchUp,
			SymRollLeft, SymRollRight, SymTurnAround:
			r.Rotations++
		case SymPush:
			r.Pushes++
			open++
			r.MaxNesting = max(r.MaxNesting, open)
		case SymPop:
			if open == 0 {
				r.UnmatchedPops++
				continue
			}
			r.Pops++
			open--
		default:
			r.Ignored++
		}
	}
	r.UnclosedPushes = open
	return r
}
