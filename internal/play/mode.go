package play

import (
	"fmt"

	"github.com/ruthgard/18TUI/internal/apperror"
)

type Kind string

const (
	KindIdle        Kind = "idle"
	KindParSelect   Kind = "par_select"
	KindPriceSelect Kind = "price_select"
	KindTrainManage Kind = "train_manage"
	KindTrainRun    Kind = "train_run"
)

// Mode is the active interaction mode. Each variant carries only the data
// that exists while it is active.
type Mode interface {
	Kind() Kind
}

type Idle struct{}

type ParSelect struct{}

type PriceSelect struct{}

type TrainFocus string

const (
	FocusOwned TrainFocus = "owned"
	FocusPool  TrainFocus = "pool"
)

// PurchaseModal is the open train purchase dialog. Cursor indexes the
// available trains list, not the catalog.
type PurchaseModal struct {
	Cursor int `json:"cursor"`
	Offset int `json:"offset"`
}

// TrainManage is the train panel of the focused corporation.
type TrainManage struct {
	Focus       TrainFocus     `json:"focus"`
	OwnedCursor int            `json:"owned_cursor"`
	PoolCursor  int            `json:"pool_cursor"`
	Purchase    *PurchaseModal `json:"purchase,omitempty"`
}

// TrainRun edits the run of one owned train. Manage is the panel state it
// returns to.
type TrainRun struct {
	Manage TrainManage `json:"manage"`
	Run    RunEditor   `json:"run"`
}

func (*Idle) Kind() Kind        { return KindIdle }
func (*ParSelect) Kind() Kind   { return KindParSelect }
func (*PriceSelect) Kind() Kind { return KindPriceSelect }
func (*TrainManage) Kind() Kind { return KindTrainManage }
func (*TrainRun) Kind() Kind    { return KindTrainRun }

type modeEnvelope struct {
	Kind   Kind         `json:"kind"`
	Manage *TrainManage `json:"manage,omitempty"`
	Run    *TrainRun    `json:"run,omitempty"`
}

func encodeMode(mode Mode) modeEnvelope {
	switch current := mode.(type) {
	case *TrainManage:
		return modeEnvelope{Kind: KindTrainManage, Manage: current}
	case *TrainRun:
		return modeEnvelope{Kind: KindTrainRun, Run: current}
	case nil:
		return modeEnvelope{Kind: KindIdle}
	default:
		return modeEnvelope{Kind: mode.Kind()}
	}
}

func (that modeEnvelope) decode() (Mode, error) {
	switch that.Kind {
	case KindIdle, "":
		return &Idle{}, nil
	case KindParSelect:
		return &ParSelect{}, nil
	case KindPriceSelect:
		return &PriceSelect{}, nil
	case KindTrainManage:
		if that.Manage == nil {
			return nil, fmt.Errorf("train manage mode without panel state: %w", apperror.ErrSerialization)
		}

		return that.Manage, nil
	case KindTrainRun:
		if that.Run == nil {
			return nil, fmt.Errorf("train run mode without editor state: %w", apperror.ErrSerialization)
		}

		return that.Run, nil
	default:
		return nil, fmt.Errorf("unknown mode %q: %w", that.Kind, apperror.ErrSerialization)
	}
}
