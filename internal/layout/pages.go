package layout

// widthTolerance absorbs float error when a line exactly fills a page.
const widthTolerance = 1e-9

// Page is a group of lines placed side by side on one sheet.
type Page struct {
	Index  int     `json:"index"`
	Lines  []Line  `json:"lines"`
	UsedMM float64 `json:"used_mm"`

	// LeftoverMM is the unused print width, for centering.
	LeftoverMM float64 `json:"leftover_mm"`

	// Overflow is set when a single line is wider than the page.
	Overflow bool `json:"overflow,omitempty"`
}

func (r *run) packPages() error {
	budget := r.s.Properties.Page.PrintWidthMM()
	if !positive(budget) {
		return newError(PassPages, ErrCodeInvalidProperties, "page print width must be positive, got %g", budget)
	}
	r.pages = Pack(r.lines, budget)
	return nil
}

// Pack places lines onto pages greedily in order. A line that does not fit
// the remaining width starts a new page; a line wider than the whole budget
// still gets a page of its own.
func Pack(lines []Line, budgetMM float64) []Page {
	pages := make([]Page, 0)
	var cur *Page
	for _, l := range lines {
		if cur == nil || (len(cur.Lines) > 0 && cur.UsedMM+l.WidthMM > budgetMM+widthTolerance) {
			pages = append(pages, Page{Index: len(pages), Lines: make([]Line, 0, 1)})
			cur = &pages[len(pages)-1]
		}
		cur.Lines = append(cur.Lines, l)
		cur.UsedMM += l.WidthMM
	}

	for i := range pages {
		p := &pages[i]
		p.LeftoverMM = max(budgetMM-p.UsedMM, 0)
		p.Overflow = p.UsedMM > budgetMM+widthTolerance
	}
	return pages
}
