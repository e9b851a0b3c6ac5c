package seat

import "sort"

// MaxSeatsPerSelection は1回のロックで選択できる座席数の上限
const MaxSeatsPerSelection = 10

// ValidateSelection は座席選択の形状を検証し、番号順に並べた座席を返す
// 副作用はなく、ロック取得前に呼び出す
//
// 検証順:
//  1. 座席数が上限以下であること
//  2. 全座席がホールに存在すること
//  3. 複数座席の場合は同じ列であること
//  4. 番号が隙間なく連続していること（複数番号を占有する座席を考慮）
//  5. 全座席が active であること
func ValidateSelection(hallSeats []*Seat, seatIDs []string, maxSeats int) ([]*Seat, error) {
	if maxSeats <= 0 {
		maxSeats = MaxSeatsPerSelection
	}

	ids := dedupe(seatIDs)
	if len(ids) == 0 {
		return nil, ErrNoSeatsSelected
	}
	if len(ids) > maxSeats {
		return nil, ErrTooManySeats
	}

	byID := make(map[string]*Seat, len(hallSeats))
	for _, s := range hallSeats {
		byID[s.ID] = s
	}

	selected := make([]*Seat, 0, len(ids))
	var missing []string
	for _, id := range ids {
		s, ok := byID[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		selected = append(selected, s)
	}
	if len(missing) > 0 {
		return nil, newSelectionError(ErrSeatNotFound, missing)
	}

	if len(selected) > 1 {
		row := selected[0].Row
		var offRow []string
		for _, s := range selected[1:] {
			if s.Row != row {
				offRow = append(offRow, s.ID)
			}
		}
		if len(offRow) > 0 {
			return nil, newSelectionError(ErrRowMismatch, offRow)
		}
	}

	sort.Slice(selected, func(i, j int) bool {
		return selected[i].Number < selected[j].Number
	})

	for i := 1; i < len(selected); i++ {
		prev, cur := selected[i-1], selected[i]
		if cur.Number != prev.NextNumber() {
			return nil, newSelectionError(ErrNonContiguousSeats, []string{prev.ID, cur.ID})
		}
	}

	var unavailable []string
	for _, s := range selected {
		if !s.IsOperational() {
			unavailable = append(unavailable, s.ID)
		}
	}
	if len(unavailable) > 0 {
		return nil, newSelectionError(ErrSeatUnavailable, unavailable)
	}

	return selected, nil
}

// dedupe は入力順を保ったまま重複と空文字を取り除く
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
