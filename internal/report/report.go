// Package report renders a bracket index as JSON.
package report

import (
	"fmt"

	"github.com/tidwall/sjson"

	"github.com/dshills/brackets/internal/bracket"
)

// JSON describes the index of text as a JSON document:
//
//	{"kind":"[]","length":9,"pairs":[{"start":1,"end":7}],"unmatched":[0]}
//
// length counts runes. pairs are ordered by start offset; unmatched lists
// the offsets of bracket characters that have no partner.
func JSON(idx *bracket.Index, text string) ([]byte, error) {
	doc := []byte(`{}`)
	var err error

	set := func(path string, value any) {
		if err != nil {
			return
		}
		doc, err = sjson.SetBytes(doc, path, value)
	}

	set("kind", idx.Kind().String())
	set("length", idx.TextLength())
	set("pairs", []any{})
	for i, p := range idx.Pairs() {
		set(fmt.Sprintf("pairs.%d.start", i), p.Start)
		set(fmt.Sprintf("pairs.%d.end", i), p.End)
	}
	unmatched := idx.Unmatched(text)
	if unmatched == nil {
		unmatched = []int{}
	}
	set("unmatched", unmatched)

	if err != nil {
		return nil, fmt.Errorf("report: %w", err)
	}
	return doc, nil
}
