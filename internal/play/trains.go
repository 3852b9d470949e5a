package play

import "github.com/ruthgard/18TUI/internal/entity"

// AvailableTrain is a catalog entry that still has supply in the pool.
type AvailableTrain struct {
	Index     int
	Type      entity.TrainType
	Remaining int
}

// AvailableTrains lists the train types with remaining supply in catalog
// order.
func (that *State) AvailableTrains() []AvailableTrain {
	var available []AvailableTrain
	for i, trainType := range that.session.TrainTypes {
		if i >= len(that.session.TrainPool) {
			break
		}

		if remaining := that.session.TrainPool[i].Remaining; remaining > 0 {
			available = append(available, AvailableTrain{Index: i, Type: trainType, Remaining: remaining})
		}
	}

	return available
}

func (that *State) corporationHasTrains() bool {
	corp, err := that.CurrentCorporation()

	return err == nil && corp.HasTrains()
}

// TrainManage returns the train panel when it is open, including while a
// run is being edited.
func (that *State) TrainManage() (*TrainManage, bool) {
	switch current := that.mode.(type) {
	case *TrainManage:
		return current, true
	case *TrainRun:
		return &current.Manage, true
	default:
		return nil, false
	}
}

// EnterTrainManage opens the train panel. Focus starts on the owned trains
// when the corporation has any, otherwise on the pool.
func (that *State) EnterTrainManage() error {
	if _, err := that.CurrentCorporation(); err != nil {
		return err
	}

	if !that.inMarketOrIdle() {
		return ErrWrongMode
	}

	hasOwned := that.corporationHasTrains()
	if !hasOwned && len(that.AvailableTrains()) == 0 {
		return ErrNoTrains
	}

	manage := &TrainManage{Focus: FocusPool}
	if hasOwned {
		manage.Focus = FocusOwned
	}

	that.mode = manage
	that.syncPoolCursor(manage)

	return nil
}

// ExitTrainManage closes the panel and drops any run in progress.
func (that *State) ExitTrainManage() {
	if _, ok := that.TrainManage(); ok {
		that.mode = &Idle{}
	}
}

// ToggleTrainFocus switches between owned trains and the pool when the
// other side has anything to select.
func (that *State) ToggleTrainFocus() {
	manage, ok := that.mode.(*TrainManage)
	if !ok {
		return
	}

	if manage.Focus == FocusOwned {
		if !that.focusPool(manage) {
			that.focusOwned(manage)
		}

		return
	}

	if !that.focusOwned(manage) {
		that.focusPool(manage)
	}
}

// FocusOwned focuses the owned trains, or the pool when there are none.
func (that *State) FocusOwned() {
	if manage, ok := that.mode.(*TrainManage); ok && !that.focusOwned(manage) {
		that.focusPool(manage)
	}
}

// FocusPool focuses the pool, or the owned trains when the pool is empty.
func (that *State) FocusPool() {
	if manage, ok := that.mode.(*TrainManage); ok && !that.focusPool(manage) {
		that.focusOwned(manage)
	}
}

func (that *State) focusOwned(manage *TrainManage) bool {
	corp, err := that.CurrentCorporation()
	if err != nil || !corp.HasTrains() {
		return false
	}

	manage.Focus = FocusOwned
	manage.OwnedCursor = clamp(manage.OwnedCursor, 0, len(corp.Trains)-1)

	return true
}

func (that *State) focusPool(manage *TrainManage) bool {
	if len(that.AvailableTrains()) == 0 {
		return false
	}

	manage.Focus = FocusPool
	that.syncPoolCursor(manage)

	return true
}

func (that *State) syncPoolCursor(manage *TrainManage) {
	available := len(that.AvailableTrains())
	if available == 0 {
		manage.PoolCursor = 0
		return
	}

	manage.PoolCursor = clamp(manage.PoolCursor, 0, available-1)
}

// MoveTrainSelection moves the cursor of the focused list.
func (that *State) MoveTrainSelection(delta int) {
	manage, ok := that.mode.(*TrainManage)
	if !ok {
		return
	}

	if manage.Focus == FocusOwned {
		count := 0
		if corp, err := that.CurrentCorporation(); err == nil {
			count = len(corp.Trains)
		}

		if count == 0 {
			manage.OwnedCursor = 0
			return
		}

		manage.OwnedCursor = clamp(manage.OwnedCursor+delta, 0, count-1)

		return
	}

	available := len(that.AvailableTrains())
	if available == 0 {
		manage.PoolCursor = 0
		return
	}

	manage.PoolCursor = clamp(manage.PoolCursor+delta, 0, available-1)
}

// CurrentOwnedTrain returns the owned train under the cursor.
func (that *State) CurrentOwnedTrain() (entity.CorporationTrain, error) {
	manage, ok := that.TrainManage()
	if !ok {
		return entity.CorporationTrain{}, ErrWrongMode
	}

	corp, err := that.CurrentCorporation()
	if err != nil {
		return entity.CorporationTrain{}, err
	}

	if manage.OwnedCursor < 0 || manage.OwnedCursor >= len(corp.Trains) {
		return entity.CorporationTrain{}, ErrNoOwnedTrain
	}

	return corp.Trains[manage.OwnedCursor], nil
}

// OpenPurchaseModal opens the purchase dialog on the pool cursor.
func (that *State) OpenPurchaseModal() error {
	manage, ok := that.mode.(*TrainManage)
	if !ok {
		return ErrWrongMode
	}

	available := len(that.AvailableTrains())
	if available == 0 {
		manage.Purchase = nil
		return ErrNoTrainForSale
	}

	cursor := 0
	if manage.PoolCursor < available {
		cursor = manage.PoolCursor
	}

	manage.Purchase = &PurchaseModal{Cursor: cursor}

	return nil
}

func (that *State) ClosePurchaseModal() {
	if manage, ok := that.mode.(*TrainManage); ok {
		manage.Purchase = nil
	}
}

func (that *State) PurchaseModal() (*PurchaseModal, bool) {
	manage, ok := that.mode.(*TrainManage)
	if !ok || manage.Purchase == nil {
		return nil, false
	}

	return manage.Purchase, true
}

func (that *State) MovePurchaseCursor(delta int) {
	modal, ok := that.PurchaseModal()
	if !ok {
		return
	}

	available := len(that.AvailableTrains())
	if available == 0 {
		modal.Cursor, modal.Offset = 0, 0
		return
	}

	modal.Cursor = clamp(modal.Cursor+delta, 0, available-1)
	if modal.Cursor < modal.Offset {
		modal.Offset = modal.Cursor
	}
}

// Purchase takes one train of the selected available type out of the pool
// and returns it as a new owned train with no run. Nothing changes when the
// selection is invalid or the supply is exhausted.
func (that *State) Purchase(selection int) (entity.CorporationTrain, error) {
	available := that.AvailableTrains()
	if selection < 0 || selection >= len(available) {
		return entity.CorporationTrain{}, ErrNoTrainForSale
	}

	index := available[selection].Index
	entry := &that.session.TrainPool[index]
	if entry.Remaining <= 0 {
		return entity.CorporationTrain{}, ErrNoTrainForSale
	}

	entry.Remaining--

	return that.session.TrainTypes[index].NewTrain(), nil
}

// BuyTrain purchases the selected train for the focused corporation. When
// the corporation cannot take it the pool is restored.
func (that *State) BuyTrain(selection int) (entity.CorporationTrain, error) {
	manage, ok := that.mode.(*TrainManage)
	if !ok {
		return entity.CorporationTrain{}, ErrWrongMode
	}

	manage.Purchase = nil

	available := that.AvailableTrains()
	if selection < 0 || selection >= len(available) {
		that.syncPoolCursor(manage)
		return entity.CorporationTrain{}, ErrNoTrainForSale
	}

	poolIndex := available[selection].Index

	train, err := that.Purchase(selection)
	if err != nil {
		that.syncPoolCursor(manage)
		return entity.CorporationTrain{}, err
	}

	corp, err := that.CurrentCorporation()
	if err != nil {
		that.session.TrainPool[poolIndex].Remaining++
		return entity.CorporationTrain{}, err
	}

	corp.Trains = append(corp.Trains, train)
	corp.RecalculateRevenue()

	that.focusOwned(manage)
	manage.OwnedCursor = len(corp.Trains) - 1
	that.syncPoolCursor(manage)

	return train, nil
}

// RetireSelectedTrain rusts the owned train under the cursor. Rusted trains
// leave the game; they are not returned to the pool.
func (that *State) RetireSelectedTrain() (entity.CorporationTrain, error) {
	manage, ok := that.mode.(*TrainManage)
	if !ok {
		return entity.CorporationTrain{}, ErrWrongMode
	}

	if manage.Focus != FocusOwned {
		return entity.CorporationTrain{}, ErrNoOwnedTrain
	}

	corp, err := that.CurrentCorporation()
	if err != nil {
		return entity.CorporationTrain{}, err
	}

	if !corp.HasTrains() {
		return entity.CorporationTrain{}, ErrNoOwnedTrain
	}

	index := clamp(manage.OwnedCursor, 0, len(corp.Trains)-1)
	removed := corp.Trains[index]
	corp.Trains = append(corp.Trains[:index], corp.Trains[index+1:]...)
	corp.RecalculateRevenue()

	if len(corp.Trains) == 0 {
		manage.OwnedCursor = 0
		that.focusPool(manage)
	} else if manage.OwnedCursor >= len(corp.Trains) {
		manage.OwnedCursor = len(corp.Trains) - 1
	}

	return removed, nil
}

// StartTrainRun opens the run editor on the selected owned train.
func (that *State) StartTrainRun() error {
	manage, ok := that.mode.(*TrainManage)
	if !ok {
		return ErrWrongMode
	}

	corp, err := that.CurrentCorporation()
	if err != nil {
		return err
	}

	if !corp.HasTrains() {
		return ErrNoOwnedTrain
	}

	index := clamp(manage.OwnedCursor, 0, len(corp.Trains)-1)
	train := corp.Trains[index]

	panel := *manage
	panel.Focus = FocusOwned
	panel.Purchase = nil

	that.mode = &TrainRun{
		Manage: panel,
		Run:    NewRunEditor(index, train.Name, train.RevenueStops),
	}

	return nil
}

// RunEditor returns the editor while a run is being edited.
func (that *State) RunEditor() (*RunEditor, bool) {
	run, ok := that.mode.(*TrainRun)
	if !ok {
		return nil, false
	}

	return &run.Run, true
}

// AddRunStop appends a stop unless the train's distance caps the run.
func (that *State) AddRunStop() error {
	editor, ok := that.RunEditor()
	if !ok {
		return ErrWrongMode
	}

	if trainType, found := that.session.TrainType(editor.TrainName); found {
		if limit, limited := trainType.StopLimit(); limited && len(editor.Values) >= limit {
			return ErrStopLimit
		}
	}

	editor.AddStop()

	return nil
}

// CancelTrainRun discards the edited run and returns to the train panel.
func (that *State) CancelTrainRun() {
	run, ok := that.mode.(*TrainRun)
	if !ok {
		return
	}

	manage := run.Manage
	that.mode = &manage
	that.focusOwned(&manage)
}

// RunResult summarizes a committed train run.
type RunResult struct {
	CorporationSym string
	TrainName      string
	Total          int
}

// ApplyTrainRun writes the edited stops back to the train, recomputes the
// corporation revenue and records it in the current operating round.
func (that *State) ApplyTrainRun() (RunResult, error) {
	run, ok := that.mode.(*TrainRun)
	if !ok {
		return RunResult{}, ErrWrongMode
	}

	editor := run.Run
	editor.CommitInput()

	manage := run.Manage
	that.mode = &manage

	corp, err := that.CurrentCorporation()
	if err != nil {
		return RunResult{}, err
	}

	if editor.TrainIndex < 0 || editor.TrainIndex >= len(corp.Trains) {
		return RunResult{}, ErrNoOwnedTrain
	}

	corp.Trains[editor.TrainIndex].SetStops(editor.Values)
	corp.RecalculateRevenue()

	manage.OwnedCursor = clamp(editor.TrainIndex, 0, len(corp.Trains)-1)
	that.focusOwned(&manage)

	that.SetRevenueValue(that.corporationIndex, that.revenue.OR, corp.LastRevenue)
	that.revenue.Corp = that.corporationIndex
	that.ensureRevenueCursorVisible()

	return RunResult{
		CorporationSym: corp.Sym,
		TrainName:      editor.TrainName,
		Total:          editor.Total(),
	}, nil
}
