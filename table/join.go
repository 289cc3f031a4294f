package table

// JoinStats summarizes an inner join. Unmatched keys are listed once each, in
// first-seen order.
type JoinStats struct {
	LeftRows       int
	RightRows      int
	JoinedRows     int
	UnmatchedLeft  []string
	UnmatchedRight []string
}

// InnerJoin joins left and right where left[leftKey] == right[rightKey]. Rows
// whose key is absent on the other side are dropped. Output rows follow the
// left table's order; a left row matching several right rows is repeated once
// per match. All left columns come first, then the right columns. When both
// keys share a name the right key column is omitted. Any other column name
// present on both sides is suffixed with _x (left) and _y (right).
func InnerJoin(left, right *Table, leftKey, rightKey string) (*Table, JoinStats, error) {
	stats := JoinStats{
		LeftRows:  left.Len(),
		RightRows: right.Len(),
	}

	li, err := left.mustIndex(leftKey)
	if err != nil {
		return nil, stats, err
	}
	ri, err := right.mustIndex(rightKey)
	if err != nil {
		return nil, stats, err
	}

	sharedKey := leftKey == rightKey

	// Right-side columns carried into the output.
	rightIdx := make([]int, 0, len(right.Columns))
	for i := range right.Columns {
		if sharedKey && i == ri {
			continue
		}
		rightIdx = append(rightIdx, i)
	}

	leftNames := make(map[string]struct{}, len(left.Columns))
	for _, c := range left.Columns {
		leftNames[c] = struct{}{}
	}
	collide := make(map[string]struct{})
	for _, i := range rightIdx {
		if _, exists := leftNames[right.Columns[i]]; exists {
			collide[right.Columns[i]] = struct{}{}
		}
	}

	columns := make([]string, 0, len(left.Columns)+len(rightIdx))
	for _, c := range left.Columns {
		if _, exists := collide[c]; exists {
			c += "_x"
		}
		columns = append(columns, c)
	}
	for _, i := range rightIdx {
		c := right.Columns[i]
		if _, exists := collide[c]; exists {
			c += "_y"
		}
		columns = append(columns, c)
	}

	byKey := make(map[string][]int, right.Len())
	for r, row := range right.Rows {
		byKey[row[ri]] = append(byKey[row[ri]], r)
	}

	out := &Table{Columns: columns, Rows: make([][]string, 0)}
	matchedRight := make(map[string]struct{})
	unmatchedLeft := make(map[string]struct{})
	for _, lrow := range left.Rows {
		key := lrow[li]
		matches, exists := byKey[key]
		if !exists {
			if _, seen := unmatchedLeft[key]; !seen {
				unmatchedLeft[key] = struct{}{}
				stats.UnmatchedLeft = append(stats.UnmatchedLeft, key)
			}
			continue
		}
		matchedRight[key] = struct{}{}

		for _, r := range matches {
			row := make([]string, 0, len(columns))
			row = append(row, lrow...)
			for _, i := range rightIdx {
				row = append(row, right.Rows[r][i])
			}
			out.Rows = append(out.Rows, row)
		}
	}

	unmatchedRight := make(map[string]struct{})
	for _, row := range right.Rows {
		key := row[ri]
		if _, matched := matchedRight[key]; matched {
			continue
		}
		if _, seen := unmatchedRight[key]; seen {
			continue
		}
		unmatchedRight[key] = struct{}{}
		stats.UnmatchedRight = append(stats.UnmatchedRight, key)
	}

	stats.JoinedRows = out.Len()

	return out, stats, nil
}
