package router

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// 票价档位：距离不超过MaxKm时票价为Amount，MaxKm为+Inf表示不设上限
type FareSlab struct {
	MaxKm  float64
	Amount int
}

type fareSlabJSON struct {
	MaxKm  *float64 `json:"max_km"` // null表示不设上限
	Amount int      `json:"amount"`
}

func (s FareSlab) MarshalJSON() ([]byte, error) {
	out := fareSlabJSON{Amount: s.Amount}
	if !math.IsInf(s.MaxKm, 1) {
		out.MaxKm = &s.MaxKm
	}
	return json.Marshal(out)
}

func (s *FareSlab) UnmarshalJSON(data []byte) error {
	var in fareSlabJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	s.Amount = in.Amount
	if in.MaxKm == nil {
		s.MaxKm = math.Inf(1)
	} else {
		s.MaxKm = *in.MaxKm
	}
	return nil
}

type FareTable struct {
	slabs []FareSlab
}

func DefaultFareTable() *FareTable {
	t, err := NewFareTable([]FareSlab{
		{MaxKm: 2, Amount: 11},
		{MaxKm: 5, Amount: 20},
		{MaxKm: 12, Amount: 30},
		{MaxKm: 21, Amount: 43},
		{MaxKm: 32, Amount: 54},
		{MaxKm: math.Inf(1), Amount: 64},
	})
	if err != nil {
		log.Panicf("invalid default fare table: %v", err)
	}
	return t
}

// 档位必须按MaxKm严格递增，票价不能为负
// 最后一档不是无上限时表仍然有效，但超出范围的距离会返回ErrDistanceOutOfRange
func NewFareTable(slabs []FareSlab) (*FareTable, error) {
	if len(slabs) == 0 {
		return nil, fmt.Errorf("%w: empty fare table", ErrDistanceOutOfRange)
	}
	for i, s := range slabs {
		if math.IsNaN(s.MaxKm) || s.MaxKm <= 0 {
			return nil, fmt.Errorf("fare slab %d: invalid max km %v", i, s.MaxKm)
		}
		if s.Amount < 0 {
			return nil, fmt.Errorf("fare slab %d: negative amount %d", i, s.Amount)
		}
		if i > 0 && s.MaxKm <= slabs[i-1].MaxKm {
			return nil, fmt.Errorf("fare slab %d: max km %v is not greater than %v", i, s.MaxKm, slabs[i-1].MaxKm)
		}
		if i > 0 && s.Amount < slabs[i-1].Amount {
			return nil, fmt.Errorf("fare slab %d: amount %d is lower than %d", i, s.Amount, slabs[i-1].Amount)
		}
	}
	return &FareTable{slabs: append([]FareSlab(nil), slabs...)}, nil
}

func (t *FareTable) Slabs() []FareSlab {
	return append([]FareSlab(nil), t.slabs...)
}

// 最后一档是否无上限
func (t *FareTable) Unbounded() bool {
	return math.IsInf(t.slabs[len(t.slabs)-1].MaxKm, 1)
}

func (t *FareTable) Fare(km float64) (int, error) {
	if math.IsNaN(km) || km < 0 {
		return 0, fmt.Errorf("%w: %v km", ErrDistanceOutOfRange, km)
	}
	// 起终点相同
	if km == 0 {
		return 0, nil
	}
	i := sort.Search(len(t.slabs), func(i int) bool {
		return t.slabs[i].MaxKm >= km
	})
	if i == len(t.slabs) {
		return 0, fmt.Errorf("%w: %.2f km exceeds the last fare slab (%v km)",
			ErrDistanceOutOfRange, km, t.slabs[len(t.slabs)-1].MaxKm)
	}
	return t.slabs[i].Amount, nil
}
