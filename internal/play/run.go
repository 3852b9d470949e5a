package play

import "strconv"

// RunEditor edits the revenue stops of one owned train. Digits typed by the
// user collect in Input until committed to the stop under the cursor.
type RunEditor struct {
	TrainIndex int    `json:"train_index"`
	TrainName  string `json:"train_name"`
	Values     []int  `json:"values"`
	Cursor     int    `json:"cursor"`
	Input      string `json:"input"`
}

// NewRunEditor seeds the editor with the train's stops, or a single empty
// stop.
func NewRunEditor(trainIndex int, trainName string, stops []int) RunEditor {
	values := append([]int(nil), stops...)
	if len(values) == 0 {
		values = []int{0}
	}

	return RunEditor{TrainIndex: trainIndex, TrainName: trainName, Values: values}
}

func (that *RunEditor) CurrentValue() int {
	if that.Cursor < 0 || that.Cursor >= len(that.Values) {
		return 0
	}

	return that.Values[that.Cursor]
}

func (that *RunEditor) setCurrentValue(value int) {
	if that.Cursor >= 0 && that.Cursor < len(that.Values) {
		that.Values[that.Cursor] = value
	}
}

// AppendDigit adds an ASCII digit to the pending input. Other runes are
// ignored.
func (that *RunEditor) AppendDigit(r rune) {
	if r >= '0' && r <= '9' {
		that.Input += string(r)
	}
}

func (that *RunEditor) Backspace() {
	if that.Input != "" {
		that.Input = that.Input[:len(that.Input)-1]
	}
}

// CommitInput writes the pending input into the current stop. Input that
// does not parse leaves the stop unchanged.
func (that *RunEditor) CommitInput() {
	if that.Input == "" {
		return
	}

	if value, err := strconv.Atoi(that.Input); err == nil {
		that.setCurrentValue(value)
	}

	that.Input = ""
}

// MoveCursor commits pending input and moves to another stop.
func (that *RunEditor) MoveCursor(delta int) {
	that.CommitInput()

	if len(that.Values) == 0 {
		that.Cursor = 0
		return
	}

	that.Cursor = clamp(that.Cursor+delta, 0, len(that.Values)-1)
}

func (that *RunEditor) AddStop() {
	that.CommitInput()
	that.Values = append(that.Values, 0)
	that.Cursor = len(that.Values) - 1
}

// RemoveStop deletes the current stop. The last remaining stop is zeroed
// instead.
func (that *RunEditor) RemoveStop() {
	that.CommitInput()

	if len(that.Values) > 1 {
		that.Values = append(that.Values[:that.Cursor], that.Values[that.Cursor+1:]...)
		if that.Cursor >= len(that.Values) {
			that.Cursor = len(that.Values) - 1
		}

		return
	}

	if len(that.Values) == 1 {
		that.Values[0] = 0
	}
}

func (that *RunEditor) ClearCurrent() {
	that.Input = ""
	that.setCurrentValue(0)
}

func (that *RunEditor) Total() int {
	total := 0
	for _, value := range that.Values {
		total += value
	}

	return total
}
