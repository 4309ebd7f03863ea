package ui

type tableController interface {
	NextColumn()
	PrevColumn()
	JumpToColumn(number int) bool
	SortActiveColumn() string
	ClearSort() bool
	HideActiveColumn() bool
	ShowAllColumns()
	FilterBySelectedValue() string
	CycleFieldFilter() string
	NextFilterField() string
	ClearFilter() bool
	TableMeta() string
}

var _ tableController = (*TableModel)(nil)
