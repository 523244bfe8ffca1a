package transform

import "github.com/james-see/mtxt/pkg/mtxt"

// Transpose shifts every note by the given number of semitones: literal
// notes in note-family and cc targets, and the notes inside alias
// definitions. Resolved alias references are rewritten to the transposed
// clone of their definition by pointer identity, so shared chords stay
// shared.
func Transpose(records []mtxt.Line, semitones int) []mtxt.Line {
	if semitones == 0 {
		return append([]mtxt.Line(nil), records...)
	}

	aliasMap := make(map[*mtxt.AliasDefinition]*mtxt.AliasDefinition)
	out := make([]mtxt.Line, 0, len(records))

	for _, line := range records {
		c := line.Clone()
		switch r := c.Record.(type) {
		case *mtxt.AliasDef:
			newNotes := make([]mtxt.Note, len(r.Def.Notes))
			for i, n := range r.Def.Notes {
				newNotes[i] = n.Transpose(semitones)
			}
			newDef := &mtxt.AliasDefinition{Name: r.Def.Name, Notes: newNotes}
			aliasMap[r.Def] = newDef
			r.Def = newDef
		case *mtxt.NoteEvent:
			r.Target = transposeTarget(r.Target, semitones, aliasMap)
		case *mtxt.NoteOn:
			r.Target = transposeTarget(r.Target, semitones, aliasMap)
		case *mtxt.NoteOff:
			r.Target = transposeTarget(r.Target, semitones, aliasMap)
		case *mtxt.ControlChange:
			if r.Target != nil {
				t := transposeTarget(*r.Target, semitones, aliasMap)
				r.Target = &t
			}
		}
		out = append(out, c)
	}
	return out
}

func transposeTarget(target mtxt.NoteTarget, semitones int, aliasMap map[*mtxt.AliasDefinition]*mtxt.AliasDefinition) mtxt.NoteTarget {
	switch {
	case target.Note != nil:
		return mtxt.NoteTargetOf(target.Note.Transpose(semitones))
	case target.Alias != nil:
		if newDef, ok := aliasMap[target.Alias]; ok {
			return mtxt.NoteTarget{Alias: newDef}
		}
		// Definition not seen in this list; leave the reference alone.
		return target
	default:
		return target
	}
}
