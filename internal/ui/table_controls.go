package ui

import "cellar/internal/model"

// listNavigator moves the cursor of a list screen.
type listNavigator interface {
	MoveDown()
	MoveUp()
	JumpToTop()
	JumpToBottom()
	HalfPageDown(pageSize int)
	HalfPageUp(pageSize int)
}

// tableController is the column-level control surface shared by the cellar,
// drink-now and history tables.
type tableController interface {
	listNavigator
	NextColumn()
	PrevColumn()
	JumpToColumn(number int) bool
	SortActiveColumn(desc bool)
	HideActiveColumn() bool
	ShowAllColumns()
	FilterBySelectedValue() bool
	ClearFilter() bool
	TableMeta() string
}

var (
	_ tableController = (*tableModel[model.CellarEntry])(nil)
	_ tableController = (*tableModel[model.HistoryEntry])(nil)
)
