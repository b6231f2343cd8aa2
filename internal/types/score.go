package types

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Score is a numeric assessment. Models occasionally quote numbers or append
// a percent sign, so decoding accepts 85, "85" and "85%".
type Score float64

func (s *Score) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		str = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(str), "%"))
		// Non-numeric text ("N/A") scores zero rather than failing the whole record.
		f, err := strconv.ParseFloat(str, 64)
		if err != nil {
			*s = 0
			return nil
		}
		*s = Score(f)
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*s = Score(f)
	return nil
}

// Float returns the score as a float64.
func (s Score) Float() float64 {
	return float64(s)
}
