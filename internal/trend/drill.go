package trend

// DrillState tracks the navigation position of a drill-down chart.
// Values are immutable; Down and ZoomOut return the next state.
type DrillState struct {
	Mode          ViewMode
	SelectedYear  string
	SelectedMonth string
}

// NewDrillState starts at the yearly overview.
func NewDrillState() DrillState {
	return DrillState{Mode: ModeYearly}
}

// Down descends one level. From yearly, key is the clicked year
// ("YYYY"); from monthly, key is the clicked month ("YYYY-MM"). At the
// daily level there is nothing below and the state is returned as is.
func (s DrillState) Down(key string) DrillState {
	switch s.Mode {
	case ModeYearly:
		s.Mode = ModeMonthly
		s.SelectedYear = key
	case ModeMonthly:
		s.Mode = ModeDaily
		s.SelectedMonth = key
	}
	return s
}

// ZoomOut reverses exactly one level, clearing the selection that the
// matching Down set. At the yearly level it is a no-op.
func (s DrillState) ZoomOut() DrillState {
	switch s.Mode {
	case ModeDaily:
		s.Mode = ModeMonthly
		s.SelectedMonth = ""
	case ModeMonthly:
		s.Mode = ModeYearly
		s.SelectedYear = ""
	}
	return s
}

// Options maps the state to the rollup options for its current view.
func (s DrillState) Options(locale string) RollupOptions {
	return RollupOptions{
		SelectedYear:  s.SelectedYear,
		SelectedMonth: s.SelectedMonth,
		Locale:        locale,
	}
}
