package diagfmt

// PrettyOpts configures pretty-printing of diagnostics and fact dumps.
type PrettyOpts struct {
	Color      bool
	ShowSource bool  // печатать строку исходника с подчёркиванием
	ShowNotes  bool
	Width      uint8 // максимальная ширина строки, 0 - не ограничено
}

// JSONOpts configures JSON output.
type JSONOpts struct {
	IncludePositions bool // добавить line/col
	Max              int  // обрезка вывода, не Bag
	IncludeNotes     bool
	IncludeTrails    bool // пошаговые объяснения фактов
}
