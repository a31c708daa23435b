package scorefile

import "github.com/roach88/engraver/internal/score"

func applyDefaults(s *score.Score) {
	def := score.DefaultProperties()
	p := &s.Properties
	if p.QuarterTick == 0 {
		p.QuarterTick = def.QuarterTick
	}
	if p.DrawScale == 0 {
		p.DrawScale = def.DrawScale
	}
	if p.Page == (score.Page{}) {
		p.Page = def.Page
	} else if p.Page.WidthMM == 0 {
		p.Page.WidthMM = def.Page.WidthMM
	}
	if p.Page.HeightMM == 0 {
		p.Page.HeightMM = def.Page.HeightMM
	}

	if len(s.LineBreaks) == 0 {
		s.LineBreaks = []score.LineBreak{{Time: 0}}
	}

	for i := range s.Staves {
		st := &s.Staves[i]
		if st.Scale == 0 {
			st.Scale = 1
		}
		for j := range st.Notes {
			st.Notes[j].Hand = normalizeHand(st.Notes[j].Hand)
		}
		for j := range st.GraceNotes {
			st.GraceNotes[j].Hand = normalizeHand(st.GraceNotes[j].Hand)
		}
		for j := range st.Beams {
			st.Beams[j].Hand = normalizeHand(st.Beams[j].Hand)
		}
		for j := range st.Texts {
			if st.Texts[j].Side == "" {
				st.Texts[j].Side = score.SideRight
			}
		}
	}
}

func normalizeHand(h score.Hand) score.Hand {
	switch h {
	case "left":
		return score.HandLeft
	case "right":
		return score.HandRight
	}
	return h
}

// assignIDs gives every entity written without an id a fresh one above
// the largest id in the file, in file order.
func assignIDs(s *score.Score) {
	var max int64
	visit(s, func(id *int64) {
		if *id > max {
			max = *id
		}
	})
	visit(s, func(id *int64) {
		if *id == 0 {
			max++
			*id = max
		}
	})
}

func visit(s *score.Score, fn func(*int64)) {
	for i := range s.LineBreaks {
		// The implicit break at 0 keeps id 0.
		if s.LineBreaks[i].Time != 0 {
			fn(&s.LineBreaks[i].ID)
		}
	}
	for i := range s.Staves {
		st := &s.Staves[i]
		for j := range st.Notes {
			fn(&st.Notes[j].ID)
		}
		for j := range st.GraceNotes {
			fn(&st.GraceNotes[j].ID)
		}
		for j := range st.Beams {
			fn(&st.Beams[j].ID)
		}
		for j := range st.Slurs {
			fn(&st.Slurs[j].ID)
		}
		for j := range st.Texts {
			fn(&st.Texts[j].ID)
		}
		for j := range st.Tempos {
			fn(&st.Tempos[j].ID)
		}
		for j := range st.CountLines {
			fn(&st.CountLines[j].ID)
		}
		for j := range st.Sections {
			fn(&st.Sections[j].ID)
		}
		for j := range st.Repeats {
			fn(&st.Repeats[j].ID)
		}
	}
}
