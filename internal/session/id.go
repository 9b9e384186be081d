package session

import (
	"strconv"
	"strings"
)

// numerals is the fixed identifier alphabet. A session id is two of these
// tokens joined by a colon: the round and the host's ordinal within it.
var numerals = []string{"I", "II", "III", "IV", "V", "VI", "VII", "VIII", "IX", "X", "XI", "XII"}

// idSeparator joins the round and ordinal tokens of a rendered id.
const idSeparator = ":"

// RoundOrdinal is a decoded session identifier. A zero component means the
// corresponding token was missing or outside the alphabet.
type RoundOrdinal struct {
	Round   int
	Ordinal int
}

// Valid reports whether both components decoded to a known numeral.
func (ro RoundOrdinal) Valid() bool {
	return ro.Round > 0 && ro.Ordinal > 0
}

// String renders the id in its canonical two-token form.
func (ro RoundOrdinal) String() string {
	return EncodeNumeral(ro.Round) + idSeparator + EncodeNumeral(ro.Ordinal)
}

// DecodeNumeral maps a numeral token to its 1-based alphabet position,
// or 0 when the token is not part of the alphabet.
func DecodeNumeral(token string) int {
	for i, n := range numerals {
		if n == token {
			return i + 1
		}
	}
	return 0
}

// EncodeNumeral is the inverse of DecodeNumeral. Values outside the alphabet
// render as their decimal string: non-canonical, but stable.
func EncodeNumeral(n int) string {
	if n >= 1 && n <= len(numerals) {
		return numerals[n-1]
	}
	return strconv.Itoa(n)
}

// DecodeID splits a rendered id and decodes both tokens. Anything that is
// not exactly two tokens decodes to the invalid zero value.
func DecodeID(id string) RoundOrdinal {
	parts := strings.Split(id, idSeparator)
	if len(parts) != 2 {
		return RoundOrdinal{}
	}
	return RoundOrdinal{
		Round:   DecodeNumeral(parts[0]),
		Ordinal: DecodeNumeral(parts[1]),
	}
}

// NextID allocates the identifier following the last record whose id decodes
// to two non-zero components. Records with unparseable ids are skipped; when
// no record has a fully valid id the very first slot (round 1, ordinal 1) is
// returned. Once the ordinal reaches roundSize a new round begins.
//
// Callers must keep records sorted ascending by id so that "last" means
// "maximum"; NextID does not sort.
func NextID(records []Record, roundSize int) RoundOrdinal {
	last := RoundOrdinal{}
	for _, rec := range records {
		if ro := DecodeID(rec.ID); ro.Valid() {
			last = ro
		}
	}
	if !last.Valid() {
		return RoundOrdinal{Round: 1, Ordinal: 1}
	}
	if last.Ordinal >= roundSize {
		return RoundOrdinal{Round: last.Round + 1, Ordinal: 1}
	}
	return RoundOrdinal{Round: last.Round, Ordinal: last.Ordinal + 1}
}

// invalidSortKey sorts records without a decodable id after every valid one.
const invalidSortKey = 1 << 20

// SortKey returns the (round, ordinal) sort position for a rendered id.
// Invalid and missing ids share the trailing sentinel position.
func SortKey(id string) (int, int) {
	ro := DecodeID(id)
	if !ro.Valid() {
		return invalidSortKey, invalidSortKey
	}
	return ro.Round, ro.Ordinal
}
