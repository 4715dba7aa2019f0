package availability

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ErrSlotIndexOutOfRange is returned by SetRange for indices outside BuildSlots.
var ErrSlotIndexOutOfRange = errors.New("slot index out of range")

// SlotKey identifies a cell of the grid.
type SlotKey struct {
	Day  int
	Hour int
}

// String encodes the key as "day-hour".
func (k SlotKey) String() string {
	return strconv.Itoa(k.Day) + "-" + strconv.Itoa(k.Hour)
}

// ParseSlotKey decodes a "day-hour" key. Only the canonical spelling produced
// by SlotKey.String is accepted, so "00-10" or "+0-10" never alias "0-10".
func ParseSlotKey(raw string) (SlotKey, error) {
	dayPart, hourPart, ok := strings.Cut(raw, "-")
	if !ok {
		return SlotKey{}, fmt.Errorf("slot key %q: missing separator", raw)
	}
	day, err := strconv.Atoi(dayPart)
	if err != nil || day < 0 {
		return SlotKey{}, fmt.Errorf("slot key %q: invalid day", raw)
	}
	hour, err := strconv.Atoi(hourPart)
	if err != nil || hour < 0 {
		return SlotKey{}, fmt.Errorf("slot key %q: invalid hour", raw)
	}
	key := SlotKey{Day: day, Hour: hour}
	if key.String() != raw {
		return SlotKey{}, fmt.Errorf("slot key %q: not canonical", raw)
	}
	return key, nil
}

// ErrNotObject is returned by DecodeSerialized when the payload is valid JSON
// but not an object.
var ErrNotObject = errors.New("serialized state must be a JSON object")

// DecodeSerialized parses a JSON object of slot keys to participant lists.
// Empty input and null yield an empty state. Values that are not arrays are
// dropped, as are members that are not non-negative integers.
func DecodeSerialized(data []byte) (Serialized, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Serialized{}, nil
	}
	var body interface{}
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, fmt.Errorf("decode serialized state: %w", err)
	}
	if body == nil {
		return Serialized{}, nil
	}
	obj, ok := body.(map[string]interface{})
	if !ok {
		return nil, ErrNotObject
	}
	state := make(Serialized, len(obj))
	for key, value := range obj {
		items, ok := value.([]interface{})
		if !ok {
			continue
		}
		members := make([]int, 0, len(items))
		for _, item := range items {
			n, ok := item.(float64)
			if !ok || n < 0 || n != math.Trunc(n) || n > math.MaxInt32 {
				continue
			}
			members = append(members, int(n))
		}
		state[key] = members
	}
	return state, nil
}

// Serialized is the JSON form of a Selection: slot key to participant indices.
type Serialized map[string][]int

type participantSet map[int]struct{}

func (p participantSet) sorted() []int {
	out := make([]int, 0, len(p))
	for idx := range p {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}

// Selection maps slots to the participants who marked them. The zero value is
// an empty selection. A Selection is never modified after construction; every
// edit returns a new value, so snapshots can be shared freely.
type Selection struct {
	cells map[SlotKey]participantSet
}

// NewSelection returns an empty selection.
func NewSelection() Selection {
	return Selection{}
}

// Count returns how many participants selected (day, hour).
func (s Selection) Count(day, hour int) int {
	return len(s.cells[SlotKey{Day: day, Hour: hour}])
}

// IsSelected reports whether participant selected (day, hour).
func (s Selection) IsSelected(day, hour, participant int) bool {
	_, ok := s.cells[SlotKey{Day: day, Hour: hour}][participant]
	return ok
}

// Participants lists who selected (day, hour), ascending.
func (s Selection) Participants(day, hour int) []int {
	set, ok := s.cells[SlotKey{Day: day, Hour: hour}]
	if !ok {
		return nil
	}
	return set.sorted()
}

// Len returns the number of slots with at least one participant.
func (s Selection) Len() int {
	return len(s.cells)
}

// Keys returns the occupied slot keys ordered by day then hour.
func (s Selection) Keys() []SlotKey {
	keys := make([]SlotKey, 0, len(s.cells))
	for key := range s.cells {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Day != keys[j].Day {
			return keys[i].Day < keys[j].Day
		}
		return keys[i].Hour < keys[j].Hour
	})
	return keys
}

// Equal reports whether both selections hold the same participants per slot.
func (s Selection) Equal(other Selection) bool {
	if len(s.cells) != len(other.cells) {
		return false
	}
	for key, set := range s.cells {
		otherSet, ok := other.cells[key]
		if !ok || len(otherSet) != len(set) {
			return false
		}
		for idx := range set {
			if _, ok := otherSet[idx]; !ok {
				return false
			}
		}
	}
	return true
}

// Toggle flips participant's membership at (day, hour).
func (s Selection) Toggle(day, hour, participant int) Selection {
	key := SlotKey{Day: day, Hour: hour}
	next := s.clone()
	next.set(key, participant, !s.IsSelected(day, hour, participant))
	return next
}

// SetRange adds (selected) or removes participant across the slots between the
// two indices of BuildSlots, inclusive and in either order.
func (s Selection) SetRange(participant, from, to int, selected bool) (Selection, error) {
	slots := BuildSlots()
	low, high := from, to
	if low > high {
		low, high = high, low
	}
	if low < 0 || high >= len(slots) {
		return s, fmt.Errorf("%w: [%d, %d] outside [0, %d)", ErrSlotIndexOutOfRange, low, high, len(slots))
	}
	next := s.clone()
	for _, slot := range slots[low : high+1] {
		next.set(slot.Key(), participant, selected)
	}
	return next, nil
}

// Serialize converts the selection into its JSON-safe form.
func (s Selection) Serialize() Serialized {
	out := make(Serialized, len(s.cells))
	for key, set := range s.cells {
		out[key.String()] = set.sorted()
	}
	return out
}

// Deserialize builds a selection from its serialized form. Duplicate indices
// collapse, empty lists and malformed keys are dropped; nil yields an empty selection.
func Deserialize(raw Serialized) Selection {
	sel := Selection{}
	for rawKey, members := range raw {
		key, err := ParseSlotKey(rawKey)
		if err != nil || len(members) == 0 {
			continue
		}
		if sel.cells == nil {
			sel.cells = make(map[SlotKey]participantSet, len(raw))
		}
		set := make(participantSet, len(members))
		for _, idx := range members {
			set[idx] = struct{}{}
		}
		sel.cells[key] = set
	}
	return sel
}

// MarshalJSON encodes the serialized form.
func (s Selection) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Serialize())
}

// UnmarshalJSON decodes the serialized form; JSON null yields an empty selection.
func (s *Selection) UnmarshalJSON(data []byte) error {
	var raw Serialized
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = Deserialize(raw)
	return nil
}

// clone copies the key map. Participant sets are shared until set replaces them.
func (s Selection) clone() Selection {
	cells := make(map[SlotKey]participantSet, len(s.cells)+1)
	for key, set := range s.cells {
		cells[key] = set
	}
	return Selection{cells: cells}
}

// set must only be called on a fresh clone.
func (s Selection) set(key SlotKey, participant int, selected bool) {
	current := s.cells[key]
	if _, has := current[participant]; has == selected {
		return
	}
	next := make(participantSet, len(current)+1)
	for idx := range current {
		next[idx] = struct{}{}
	}
	if selected {
		next[participant] = struct{}{}
	} else {
		delete(next, participant)
	}
	if len(next) == 0 {
		delete(s.cells, key)
		return
	}
	s.cells[key] = next
}
